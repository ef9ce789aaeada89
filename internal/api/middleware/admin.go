package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/screenpong/internal/api/apierr"
	"github.com/mcoot/screenpong/internal/model"
)

// AdminPasswordHeader carries the plaintext admin password
const AdminPasswordHeader = "X-Admin-Password"

// Admin creates middleware that checks the admin password against a bcrypt
// hash. An empty hash disables every route behind it.
func Admin(passwordHash string) func(http.Handler) http.Handler {
	hash := []byte(passwordHash)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				apierr.WriteError(w, apierr.NewAdminDisabledError())
				return
			}

			password := r.Header.Get(AdminPasswordHeader)
			if password == "" || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
				apierr.WriteError(w, model.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
