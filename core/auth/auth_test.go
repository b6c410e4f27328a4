package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dayoadeyemi/haven/core/claims"
)

func TestGenerateAndVerify(t *testing.T) {
	tk := NewTokens("test-secret", time.Minute, time.Hour)

	clm := claims.Claims{UserID: "u1", Email: "agent@haven.test", Role: claims.RoleAgent}
	pair, err := tk.GeneratePair(clm)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	got, err := tk.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != clm {
		t.Fatalf("Verify = %+v, want %+v", got, clm)
	}
}

func TestRefreshTokenIsNotAccess(t *testing.T) {
	tk := NewTokens("test-secret", time.Minute, time.Hour)

	pair, err := tk.GeneratePair(claims.Claims{UserID: "u1", Role: claims.RoleRenterBuyer})
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := tk.Verify(pair.RefreshToken); err == nil {
		t.Fatal("refresh token accepted as access token")
	}

	next, err := tk.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := tk.Verify(next.AccessToken); err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}

	if _, err := tk.Refresh(pair.AccessToken); err == nil {
		t.Fatal("access token accepted for refresh")
	}
}

func TestExpiredToken(t *testing.T) {
	tk := NewTokens("test-secret", -time.Minute, time.Hour)

	pair, err := tk.GeneratePair(claims.Claims{UserID: "u1", Role: claims.RoleAgent})
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := tk.Verify(pair.AccessToken); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestWrongSecret(t *testing.T) {
	tk := NewTokens("test-secret", time.Minute, time.Hour)
	other := NewTokens("other-secret", time.Minute, time.Hour)

	pair, err := tk.GeneratePair(claims.Claims{UserID: "u1", Role: claims.RoleAgent})
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}

	if _, err := other.Verify(pair.AccessToken); err == nil {
		t.Fatal("token signed with a different secret accepted")
	}
	if !strings.Contains(pair.AccessToken, ".") {
		t.Fatal("token does not look like a JWT")
	}
}
