// Package auth implements the login gate and the bearer tokens of the local
// API.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// PasswordCost is the bcrypt cost for stored password hashes.
const PasswordCost = 12

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	return hashPassword(password, PasswordCost)
}

func hashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrMissingCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Account is the single configured login. A zero Account puts the gate in
// demo mode, where any non-empty email and password are accepted.
type Account struct {
	Email        string
	PasswordHash string
}

// Demo reports whether no account is configured.
func (a Account) Demo() bool {
	return a.Email == "" || a.PasswordHash == ""
}

// Check validates a login attempt and returns the normalized email.
func (a Account) Check(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", ErrMissingCredentials
	}
	if a.Demo() {
		return email, nil
	}
	if !strings.EqualFold(email, a.Email) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return a.Email, nil
}

// NewSecret returns 32 random bytes, hex encoded, for signing tokens.
func NewSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
