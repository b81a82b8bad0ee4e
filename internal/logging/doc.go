// Package logging configures log/slog for referer-parser.
//
// Without --debug, warnings and errors go to stderr as text. With --debug,
// JSON logs at debug level are also written to a size-rotated file under
// ~/.referer-parser/logs/, where `referer-parser logs` can tail them.
package logging
