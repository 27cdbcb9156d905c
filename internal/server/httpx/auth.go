package httpx

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/auth"
)

type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

type AccountReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
}

// Principal is the authenticated caller. ProfileID is the Admin, Customer
// or Carrier row id depending on AccountType.
type Principal struct {
	AccountID   int64
	AccountType domain.AccountType
	ProfileID   int64
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Authenticate requires a valid bearer token on every request, and that the
// token's account still exists and is active.
func Authenticate(verifier TokenVerifier, accounts AccountReader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				WriteError(w, r, logger, apperrors.NewUnauthorizedError("missing bearer token"))
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(raw))
			if err != nil {
				Logger(r, logger).Debug("token rejected", zap.Error(err))
				WriteError(w, r, logger, apperrors.NewUnauthorizedError("invalid or expired token"))
				return
			}

			acct, err := accounts.FindByID(r.Context(), claims.AccountID)
			if err != nil {
				if _, ok := apperrors.IsNotFoundError(err); ok {
					WriteError(w, r, logger, apperrors.NewUnauthorizedError("account no longer exists"))
					return
				}
				WriteError(w, r, logger, err)
				return
			}
			if !acct.CanSignIn() {
				Logger(r, logger).Warn("token for deactivated account", zap.Int64("accountId", acct.ID))
				WriteError(w, r, logger, apperrors.NewForbiddenError("account is deactivated"))
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{
				AccountID:   claims.AccountID,
				AccountType: claims.AccountType,
				ProfileID:   claims.ProfileID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through only principals of one of the given account types.
func RequireRole(logger *zap.Logger, types ...domain.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				WriteError(w, r, logger, apperrors.NewUnauthorizedError("authentication required"))
				return
			}
			for _, t := range types {
				if p.AccountType == t {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, r, logger, apperrors.NewForbiddenError("account type "+string(p.AccountType)+" may not access this resource"))
		})
	}
}
