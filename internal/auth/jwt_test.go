package auth

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	tokens, err := Issue("user-1", RoleTeacher, "rollcall", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := Parse(tokens.AccessToken, "test-key", "rollcall")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != RoleTeacher {
		t.Errorf("role = %q, want teacher", claims.Role)
	}
}

func TestParse_WrongKey(t *testing.T) {
	tokens, err := Issue("user-1", RoleStudent, "rollcall", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(tokens.AccessToken, "other-key", "rollcall"); err == nil {
		t.Fatal("token accepted with wrong key")
	}
}

func TestParse_IssuerMismatch(t *testing.T) {
	tokens, err := Issue("user-1", RoleStudent, "other-issuer", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(tokens.AccessToken, "test-key", "rollcall"); err == nil {
		t.Fatal("token accepted with wrong issuer")
	}
}

func TestParse_Expired(t *testing.T) {
	tokens, err := Issue("user-1", RoleStudent, "rollcall", "test-key", -time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := Parse(tokens.AccessToken, "test-key", "rollcall"); err == nil {
		t.Fatal("expired token accepted")
	}
}
