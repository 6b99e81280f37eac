package crypto

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	a, err := New(key)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ct, err := a.EncryptToString("hunter2")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if ct == "hunter2" {
		t.Fatal("ciphertext equals plaintext")
	}
	pt, err := a.DecryptString(ct)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if pt != "hunter2" {
		t.Fatalf("got %q", pt)
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	a, _ := New(key)
	ct, _ := a.EncryptToString("hunter2")
	if _, err := a.DecryptString("x" + ct[1:]); err == nil {
		t.Fatal("expected tampered ciphertext to fail")
	}
	if _, err := a.DecryptString("short"); err == nil {
		t.Fatal("expected short ciphertext to fail")
	}
}

func TestRejectsBadKeySize(t *testing.T) {
	if _, err := New([]byte("too short")); err == nil {
		t.Fatal("expected error for a 9-byte key")
	}
}
