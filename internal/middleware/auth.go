package middleware

import (
	"context"
	"net/http"
	"strings"

	"bistro/internal/auth"
	"bistro/internal/model"

	"github.com/rs/zerolog"
)

// RoleChecker resolves the current role of a staff account.
type RoleChecker interface {
	StaffRole(ctx context.Context, accountID int64) (model.Role, error)
}

// Authenticate attaches the claims of a Bearer token to the request.
// Requests without a token pass through anonymously; bad tokens are rejected.
func Authenticate(tokens *auth.TokenManager, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Malformed Authorization header")
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole admits active staff whose current role satisfies allow.
// The role in the token is only a hint; the store is authoritative.
func requireRole(checker RoleChecker, allow func(model.Role) bool, denied *model.DomainError, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.FromContext(r.Context())
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, model.ErrUnauthorised.Message)
				return
			}

			role, err := checker.StaffRole(r.Context(), claims.AccountID)
			if err != nil {
				if de, ok := model.AsDomainError(err); ok {
					writeError(w, r, http.StatusForbidden, de.Code, de.Message)
					return
				}
				logger.Error().Err(err).Int64("account_id", claims.AccountID).Msg("failed to check staff role")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "Something went wrong")
				return
			}

			if !allow(role) {
				logger.Warn().
					Int64("account_id", claims.AccountID).
					Str("role", string(role)).
					Str("path", r.URL.Path).
					Msg("access denied")
				writeError(w, r, http.StatusForbidden, denied.Code, denied.Message)
				return
			}

			current := *claims
			current.Role = role
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), &current)))
		})
	}
}

// RequireStaff admits any active staff member.
func RequireStaff(checker RoleChecker, logger zerolog.Logger) func(http.Handler) http.Handler {
	return requireRole(checker, model.Role.ValidStaffRole, model.ErrNoStaffAccess, logger)
}

// RequireManager admits owners and managers.
func RequireManager(checker RoleChecker, logger zerolog.Logger) func(http.Handler) http.Handler {
	return requireRole(checker, model.Role.IsManager, model.ErrManagerRequired, logger)
}

// RequireOwner admits owners only.
func RequireOwner(checker RoleChecker, logger zerolog.Logger) func(http.Handler) http.Handler {
	return requireRole(checker, model.Role.IsOwner, model.ErrOwnerRequired, logger)
}
