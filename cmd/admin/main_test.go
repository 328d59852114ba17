package main

import (
	"encoding/base64"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	a, err := generateSecret(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := generateSecret(32)
	if a == b {
		t.Fatalf("secrets should differ")
	}
	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil || len(raw) != 32 {
		t.Fatalf("unexpected secret %q (%v)", a, err)
	}
	if s, _ := generateSecret(0); s == "" {
		t.Fatalf("zero length should fall back to default")
	}
}
