package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func testAccount(t *testing.T) Account {
	t.Helper()
	hash, err := hashPassword("planos2024", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	return Account{Email: "ethan.carter@archifinance.com", PasswordHash: hash}
}

func TestCheck_MissingCredentials(t *testing.T) {
	for _, acct := range []Account{{}, testAccount(t)} {
		if _, err := acct.Check("", "x"); !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("empty email error = %v", err)
		}
		if _, err := acct.Check("a@b.co", ""); !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("empty password error = %v", err)
		}
	}
}

func TestCheck_DemoModeAcceptsAnything(t *testing.T) {
	var acct Account
	if !acct.Demo() {
		t.Fatal("zero account should be demo")
	}
	email, err := acct.Check("  visitor@example.com ", "whatever")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if email != "visitor@example.com" {
		t.Fatalf("email = %q, want trimmed", email)
	}
}

func TestCheck_ConfiguredAccount(t *testing.T) {
	acct := testAccount(t)
	if acct.Demo() {
		t.Fatal("configured account reported demo")
	}
	if _, err := acct.Check("ETHAN.CARTER@archifinance.com", "planos2024"); err != nil {
		t.Fatalf("valid login: %v", err)
	}
	if _, err := acct.Check("ethan.carter@archifinance.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v", err)
	}
	if _, err := acct.Check("someone@else.com", "planos2024"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong email error = %v", err)
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("HashPassword(\"\") error = %v", err)
	}
}

func TestNewSecret(t *testing.T) {
	a, err := NewSecret()
	if err != nil {
		t.Fatalf("NewSecret: %v", err)
	}
	b, _ := NewSecret()
	if len(a) != 64 || a == b {
		t.Fatalf("secrets %q, %q", a, b)
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("s3cret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	tok, exp, err := iss.Issue("ethan.carter@archifinance.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v is in the past", exp)
	}
	claims, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Email != "ethan.carter@archifinance.com" {
		t.Fatalf("Email = %q", claims.Email)
	}
}

func TestIssuer_RejectsForeignAndExpiredTokens(t *testing.T) {
	iss, _ := NewIssuer("one", time.Hour)
	other, _ := NewIssuer("two", time.Hour)

	tok, _, err := other.Issue("x@y.z")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := iss.Parse(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token error = %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	iss.now = func() time.Time { return past }
	old, _, err := iss.Issue("x@y.z")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	iss.now = time.Now
	if _, err := iss.Parse(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token error = %v", err)
	}

	if _, err := iss.Parse(strings.Repeat("a", 20)); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token error = %v", err)
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatal("NewIssuer with empty secret should fail")
	}
}
