package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/api/weberr"
	"github.com/dayoadeyemi/haven/core/claims"
)

func bearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header is not a bearer token")
	}

	return parts[1], nil
}

// Authenticate requires a valid access token and stores the resolved
// claims on the context for the handler to pick up explicitly.
func Authenticate(t *Tokens) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			token, err := bearer(r)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			clm, err := t.Verify(token)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// Optional resolves claims when a valid bearer token is present but
// lets anonymous requests through. Used on public routes whose response
// widens for admins.
func Optional(t *Tokens) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			token, err := bearer(r)
			if err != nil {
				return handler(ctx, w, r)
			}

			clm, err := t.Verify(token)
			if err != nil {
				return handler(ctx, w, r)
			}

			return handler(claims.Set(ctx, clm), w, r)
		}
		return h
	}
	return m
}

// Role authenticates and additionally requires one of the given roles.
func Role(t *Tokens, roles ...claims.Role) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			token, err := bearer(r)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			clm, err := t.Verify(token)
			if err != nil {
				return weberr.NotAuthorized(err)
			}

			for _, role := range roles {
				if clm.Role == role {
					return handler(claims.Set(ctx, clm), w, r)
				}
			}

			return weberr.Forbidden(errors.New("role not allowed for this resource"))
		}
		return h
	}
	return m
}

func Admin(t *Tokens) web.Middleware {
	return Role(t, claims.RoleAdmin)
}

func Agent(t *Tokens) web.Middleware {
	return Role(t, claims.RoleAgent)
}

func RenterBuyer(t *Tokens) web.Middleware {
	return Role(t, claims.RoleRenterBuyer)
}
