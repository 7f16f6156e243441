package actions

import (
	"bytes"
	"testing"
)

func TestHashKeyStable(t *testing.T) {
	a := HashKey("cache.memory")
	b := HashKey("cache.memory")
	if a != b {
		t.Error("HashKey should be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if HashKey("cache.memory") == HashKey("cache.redis") {
		t.Error("distinct inputs should not collide")
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("cache.memory", "1.2.0", "chassis/adapters/memcache")
	if len(fp) != 12 {
		t.Errorf("expected 12 chars, got %d", len(fp))
	}
	if fp == Fingerprint("cache.memory", "1.2.1", "chassis/adapters/memcache") {
		t.Error("changed field should change the fingerprint")
	}
	// Field boundaries matter: ("ab","c") != ("a","bc")
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("field boundaries should affect the digest")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, in := range [][]byte{nil, {0}, []byte("hello"), {0xff, 0x00, 0xab}} {
		out, err := Decode(Encode(in))
		if err != nil {
			t.Fatalf("Decode failed for %v: %v", in, err)
		}
		if !bytes.Equal(in, out) {
			t.Errorf("round trip %v -> %v", in, out)
		}
	}

	if _, err := Decode("not!base64!"); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"records", "records"},
		{"Cache.Memory", "cache.memory"},
		{"my table name", "my_table_name"},
		{"a//b::c", "a_b_c"},
		{"  trimmed  ", "trimmed"},
		{"UPPER-case_ok.v2", "upper-case_ok.v2"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
