package middleware

import (
	"net/http"

	"github.com/olegbp/cryptofolio/internal/domain"
)

// SessionResolver checks that an account ID belongs to the active
// session account.
type SessionResolver interface {
	Resolve(accountID string) (*domain.Account, error)
}

// SessionGate rejects mutating requests whose token identity is not
// the active session account. It runs after AuthMiddleware, so a valid
// token alone is not enough to write: the account must have logged in
// through the session.
func SessionGate(session SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accountID, ok := GetAccountID(r.Context())
			if !ok {
				http.Error(w, "missing authenticated account", http.StatusUnauthorized)
				return
			}

			if _, err := session.Resolve(accountID); err != nil {
				http.Error(w, "no active session for this account", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
