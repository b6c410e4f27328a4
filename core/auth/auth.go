package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dayoadeyemi/haven/core/claims"
	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	Kind  string `json:"kind"`
}

// Tokens mints and verifies the HS256 bearer tokens of the API.
type Tokens struct {
	secret     []byte
	accessDur  time.Duration
	refreshDur time.Duration
}

func NewTokens(secret string, accessDur, refreshDur time.Duration) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		accessDur:  accessDur,
		refreshDur: refreshDur,
	}
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t *Tokens) GeneratePair(clm claims.Claims) (Pair, error) {
	access, err := t.generate(clm, kindAccess, t.accessDur)
	if err != nil {
		return Pair{}, fmt.Errorf("signing access token: %w", err)
	}

	refresh, err := t.generate(clm, kindRefresh, t.refreshDur)
	if err != nil {
		return Pair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *Tokens) generate(clm claims.Claims, kind string, dur time.Duration) (string, error) {
	now := time.Now().UTC()
	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clm.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(dur)),
		},
		Email: clm.Email,
		Role:  string(clm.Role),
		Kind:  kind,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(t.secret)
}

// Verify parses an access token and returns the claims carried in it.
func (t *Tokens) Verify(token string) (claims.Claims, error) {
	return t.parse(token, kindAccess)
}

// Refresh exchanges a valid refresh token for a brand new pair.
func (t *Tokens) Refresh(refreshToken string) (Pair, error) {
	clm, err := t.parse(refreshToken, kindRefresh)
	if err != nil {
		return Pair{}, err
	}

	return t.GeneratePair(clm)
}

func (t *Tokens) parse(token string, kind string) (claims.Claims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return claims.Claims{}, fmt.Errorf("parsing token: %w", err)
	}

	if !parsed.Valid {
		return claims.Claims{}, errors.New("token is not valid")
	}

	if tc.Kind != kind {
		return claims.Claims{}, fmt.Errorf("token of kind %q used as %q", tc.Kind, kind)
	}

	role, err := claims.ParseRole(tc.Role)
	if err != nil {
		return claims.Claims{}, fmt.Errorf("role claim: %w", err)
	}

	return claims.Claims{
		UserID: tc.Subject,
		Email:  tc.Email,
		Role:   role,
	}, nil
}
