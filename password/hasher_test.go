package password

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestDemoHashIsDeterministic(t *testing.T) {
	h := NewDemo("", "")
	for _, p := range []string{"", "Secret1!", "pässwörd", "a very long passphrase with spaces"} {
		a, err := h.Hash(p)
		if err != nil {
			t.Fatalf("Hash(%q) error: %v", p, err)
		}
		b, _ := h.Hash(p)
		if a != b {
			t.Fatalf("Hash(%q) not deterministic: %s vs %s", p, a, b)
		}
		ok, err := h.Verify(p, a)
		if err != nil || !ok {
			t.Fatalf("Verify(%q, Hash(%q)) = %v, %v", p, p, ok, err)
		}
		ok, _ = h.Verify(p+"x", a)
		if ok {
			t.Fatalf("Verify accepted a different password for %q", p)
		}
	}
}

func TestDemoHashMatchesFixedScheme(t *testing.T) {
	sum := sha256.Sum256([]byte("Secret1!" + DefaultDemoSalt + DefaultDemoSecret))
	want := hex.EncodeToString(sum[:])

	got, _ := NewDemo("", "").Hash("Secret1!")
	if got != want {
		t.Fatalf("Hash = %s, want %s", got, want)
	}
}

func TestDemoCustomSaltChangesDigest(t *testing.T) {
	a, _ := NewDemo("", "").Hash("Secret1!")
	b, _ := NewDemo("other-salt", "").Hash("Secret1!")
	if a == b {
		t.Fatal("expected salt to affect digest")
	}
}

func TestStrength(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		failed int
	}{
		{"", 0, 5},
		{"abcdefgh", 40, 3},
		{"Secret1!", 100, 0},
		{"SECRET12", 60, 2},
	}
	for _, tc := range cases {
		got := Strength(tc.in)
		if got.Value != tc.want || len(got.Failed) != tc.failed {
			t.Fatalf("Strength(%q) = %+v, want value %d with %d failures", tc.in, got, tc.want, tc.failed)
		}
	}
}
