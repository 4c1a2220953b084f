package utils

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSHA256Hex_Deterministic(t *testing.T) {
	if SHA256Hex("sk-abc123") != SHA256Hex("sk-abc123") {
		t.Error("expected identical digests for identical input")
	}
	if SHA256Hex("sk-abc123") == SHA256Hex("sk-abc124") {
		t.Error("expected different digests for different input")
	}
}

func TestHashString(t *testing.T) {
	first := HashString("log entry", "signing-key")
	second := HashString("log entry", "signing-key")

	if first != second {
		t.Error("expected identical signatures for identical input and key")
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}
	if HashString("log entry", "other-key") == first {
		t.Error("expected different signatures under different keys")
	}
}
