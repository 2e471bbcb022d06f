package digest

import "testing"

func TestSHA1HexKnownVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"%PDF-1.4\n", "95607b02d48a786cb786897d727114fc79814b1e"},
	}
	for _, c := range cases {
		if got := SHA1Hex([]byte(c.in)); got != c.want {
			t.Fatalf("SHA1Hex(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestSHA1HexDeterministic(t *testing.T) {
	b := []byte("1 0 obj\nendobj\n")
	if SHA1Hex(b) != SHA1Hex(b) {
		t.Fatal("digest not deterministic")
	}
	if len(SHA1Hex(b)) != 40 {
		t.Fatalf("digest length = %d, want 40", len(SHA1Hex(b)))
	}
}
