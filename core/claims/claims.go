package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role is the closed set of account roles. Raw input is normalized
// through ParseRole exactly once, at the boundary; everything past it
// compares Role values by equality.
type Role string

const (
	RoleAgent       Role = "agent"
	RoleRenterBuyer Role = "renter/buyer"
	RoleAdmin       Role = "admin"
)

// ParseRole normalizes a raw role string into a Role. The legacy
// spellings "renter" and "buyer" collapse into RoleRenterBuyer.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "agent":
		return RoleAgent, nil
	case "renter", "buyer", "renter/buyer":
		return RoleRenterBuyer, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type Claims struct {
	UserID string
	Email  string
	Role   Role
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

func IsAdmin(ctx context.Context) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	return c.Role == RoleAdmin
}
