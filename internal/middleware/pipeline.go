package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"postboard/internal/service"
)

type ctxKey int

const userIDKey ctxKey = iota

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// Rejection stops a request before it reaches the handler.
type Rejection struct {
	Status     int
	Msg        string
	RetryAfter time.Duration
}

// Interceptor either returns the request to pass on (possibly with a richer
// context) or a rejection. Exactly one of the two is non-nil.
type Interceptor func(r *http.Request) (*http.Request, *Rejection)

// Pipeline runs interceptors in order and short-circuits on the first rejection.
func Pipeline(interceptors ...Interceptor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, intercept := range interceptors {
				req, rejection := intercept(r)
				if rejection != nil {
					writeRejection(w, rejection)
					return
				}
				r = req
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
	msgExpiredToken = "Token has expired"
	msgRateLimited  = "Too many requests"
)

// AuthGate verifies the token carried in header and binds its subject to the
// request context. It does not consult the credential store.
func AuthGate(tokens service.TokenService, header string, logger *slog.Logger) Interceptor {
	return func(r *http.Request) (*http.Request, *Rejection) {
		raw := r.Header.Get(header)
		if raw == "" {
			return nil, &Rejection{Status: http.StatusUnauthorized, Msg: msgNoToken}
		}

		userID, err := tokens.Verify(raw)
		if err != nil {
			if logger != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
			}
			if errors.Is(err, service.ErrTokenExpired) {
				return nil, &Rejection{Status: http.StatusUnauthorized, Msg: msgExpiredToken}
			}
			return nil, &Rejection{Status: http.StatusUnauthorized, Msg: msgInvalidToken}
		}

		return r.WithContext(WithUserID(r.Context(), userID)), nil
	}
}

// RateLimit admits at most limit requests per client address in each window.
func RateLimit(limiter Limiter, limit int, window time.Duration) Interceptor {
	return func(r *http.Request) (*http.Request, *Rejection) {
		if limit <= 0 {
			return r, nil
		}

		allowed, retryAfter := limiter.Allow(clientIP(r), limit, window)
		if !allowed {
			return nil, &Rejection{Status: http.StatusTooManyRequests, Msg: msgRateLimited, RetryAfter: retryAfter}
		}
		return r, nil
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRejection(w http.ResponseWriter, rejection *Rejection) {
	if rejection.RetryAfter > 0 {
		seconds := int(math.Ceil(rejection.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
	writeJSON(w, rejection.Status, map[string]string{"msg": rejection.Msg})
}
