package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "validpassword123",
			cost:     bcrypt.MinCost,
			wantErr:  nil,
		},
		{
			name:     "short password is accepted",
			password: "pw",
			cost:     bcrypt.MinCost,
			wantErr:  nil,
		},
		{
			name:     "empty password is accepted",
			password: "",
			cost:     bcrypt.MinCost,
			wantErr:  nil,
		},
		{
			name:     "password too long",
			password: strings.Repeat("a", 73),
			cost:     bcrypt.MinCost,
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "password at maximum length",
			password: strings.Repeat("a", 72),
			cost:     bcrypt.MinCost,
			wantErr:  nil,
		},
		{
			name:     "out of range cost falls back to default",
			password: "pw",
			cost:     99,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
			if tt.wantErr == nil && hash == tt.password {
				t.Error("HashPassword() returned the plaintext")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	password := "pw1"
	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "correct password",
			password: password,
			wantErr:  nil,
		},
		{
			name:     "incorrect password",
			password: "wrong",
			wantErr:  ErrInvalidPassword,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password, hash)
			if err != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	err := CheckPassword("pw1", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatal("CheckPassword() accepted a malformed hash")
	}
	if errors.Is(err, ErrInvalidPassword) {
		t.Error("malformed hash should not be reported as a password mismatch")
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if NeedsRehash(hash, bcrypt.MinCost) {
		t.Error("hash at the requested cost should not need a rehash")
	}
	if !NeedsRehash(hash, bcrypt.MinCost+1) {
		t.Error("hash at a lower cost should need a rehash")
	}
	if !NeedsRehash("garbage", bcrypt.MinCost) {
		t.Error("unparseable hash should need a rehash")
	}
}
