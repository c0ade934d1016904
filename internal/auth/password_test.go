package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("a-decent-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "a-decent-password") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "something-else") {
		t.Error("wrong password accepted")
	}
}

func TestHashPassword_Weak(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("err = %v, want ErrWeakPassword", err)
	}
}
