package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/dayoadeyemi/haven/api/web"
	"github.com/dayoadeyemi/haven/api/weberr"
	"github.com/dayoadeyemi/haven/rate"
)

// RateLimit throttles by remote address. Applied to the auth and OTP
// endpoints, which are the credential-guessing surface of the API.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !lim.Check(ip) {
				err := errors.New("rate limit exceeded")
				return weberr.NewError(err, "too many requests, slow down", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
