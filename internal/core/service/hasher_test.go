package service

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("haridx")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("haridx", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if h.Verify("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if h.Verify("haridx", "not-a-bcrypt-hash") {
		t.Fatalf("malformed hash must not verify")
	}

	if _, err := h.Hash(strings.Repeat("x", MaxPasswordBytes+1)); err != ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	h.VerifyDummy("anything")
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
