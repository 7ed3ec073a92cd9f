package fingerprint

import "testing"

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("logo bytes"))
	b := Sum([]byte("logo bytes"))
	if a != b {
		t.Errorf("same content fingerprinted differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestSumDistinguishesContent(t *testing.T) {
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different content produced identical fingerprints")
	}
}

func TestSumEmpty(t *testing.T) {
	// The well-known SHA-256 of the empty string.
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s, want %s", got, want)
	}
}
