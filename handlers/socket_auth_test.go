package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuthenticateSocket(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	userID := uuid.New()

	valid := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "candidate",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"missing token", "", true},
		{"garbage token", "not-a-jwt", true},
		{"wrong signing secret", signToken(t, "other-secret", valid), true},
		{"expired token", signToken(t, "test-secret", jwt.MapClaims{
			"user_id": userID.String(),
			"role":    "candidate",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}), true},
		{"no user_id claim", signToken(t, "test-secret", jwt.MapClaims{
			"role": "candidate",
			"exp":  time.Now().Add(time.Hour).Unix(),
		}), true},
		{"user_id is not a string", signToken(t, "test-secret", jwt.MapClaims{
			"user_id": 42,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}), true},
		{"user_id is not a uuid", signToken(t, "test-secret", jwt.MapClaims{
			"user_id": "u1",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}), true},
		{"valid token", signToken(t, "test-secret", valid), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotRole, err := authenticateSocket(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("authenticateSocket() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if gotID != userID {
				t.Errorf("authenticateSocket() id = %s, want %s", gotID, userID)
			}
			if gotRole != "candidate" {
				t.Errorf("authenticateSocket() role = %q, want %q", gotRole, "candidate")
			}
		})
	}
}
