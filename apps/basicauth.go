package apps

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

const defaultRealm = "rjs2"

// BasicAuth requires one of users to authenticate before reaching next.
func BasicAuth(realm string, users []User, next http.Handler) (http.Handler, error) {
	if realm == "" {
		realm = defaultRealm
	}

	hashes := make(map[string][]byte, len(users))
	for _, u := range users {
		if _, err := bcrypt.Cost([]byte(u.Bcrypt)); err != nil {
			return nil, fmt.Errorf("user %s: invalid bcrypt hash: %w", u.Name, err)
		}
		hashes[u.Name] = []byte(u.Bcrypt)
	}

	// Compared against for unknown users so they take as long as known ones.
	dummy, err := bcrypt.GenerateFromPassword([]byte("rjs2"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, password, ok := r.BasicAuth()
		if !ok {
			deny(w, realm)
			return
		}

		hash, known := hashes[name]
		if !known {
			hash = dummy
		}
		if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !known {
			deny(w, realm)
			return
		}

		next.ServeHTTP(w, r)
	}), nil
}

func deny(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", realm))
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
