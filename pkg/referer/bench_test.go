package referer_test

import (
	"testing"

	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

var benchInputs = []struct{ host, path, query string }{
	{"www.google.com", "/search", "q=gateway+oracle+cards+denise+linn&hl=en"},
	{"t.co", "/chrgFZDb", ""},
	{"images.google.com", "/imgres", "q=cats"},
	{"xxx.yyy.zzz.www.behance.net", "/gallery/x", ""},
	{"mail.yahoo.net", "/neo/launch", ""},
}

func BenchmarkMatcher_Classify(b *testing.B) {
	m := defaultMatcher(b)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		in := benchInputs[i%len(benchInputs)]
		_ = m.Classify(in.host, in.path, in.query)
	}
}

func BenchmarkMatcher_ClassifyParallel(b *testing.B) {
	m := defaultMatcher(b)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			in := benchInputs[i%len(benchInputs)]
			_ = m.Classify(in.host, in.path, in.query)
			i++
		}
	})
}

func BenchmarkCachedClassifier_Classify(b *testing.B) {
	c := referer.NewCachedClassifier(defaultMatcher(b), referer.DefaultCacheSize)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		in := benchInputs[i%len(benchInputs)]
		_ = c.Classify(in.host, in.path, in.query)
	}
}

func BenchmarkClassifyURL(b *testing.B) {
	m := defaultMatcher(b)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, _ = referer.ClassifyURL(m, "http://www.google.com/search?q=gateway+oracle+cards+denise+linn&hl=en")
	}
}
