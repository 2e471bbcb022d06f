package observability

import "testing"

func TestFieldConstructors(t *testing.T) {
	cases := []struct {
		f    Field
		key  string
		want interface{}
	}{
		{String("mode", "fallback"), "mode", "fallback"},
		{Int("nodes", 7), "nodes", 7},
		{Int64("size", 42), "size", int64(42)},
	}
	for _, c := range cases {
		if c.f.Key() != c.key {
			t.Fatalf("key = %q, want %q", c.f.Key(), c.key)
		}
		if c.f.Value() != c.want {
			t.Fatalf("value = %v, want %v", c.f.Value(), c.want)
		}
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("component", "explore"))
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e", Error("err", nil))
}
