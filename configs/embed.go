// Package configs provides files compiled into the referer-parser binary.
//
// Files:
//   - referers.yml: the default referer dataset used when no data path is
//     configured (see internal/dataset).
//   - config.example.yaml: the template written by `referer-parser config init`.
//
// Edit the files in this directory and rebuild to change the embedded copies.
package configs

import _ "embed"

// Referers is the default referer dataset in YAML form.
//
//go:embed referers.yml
var Referers []byte

// ConfigTemplate is the template for user and project configuration files.
//
//go:embed config.example.yaml
var ConfigTemplate string
