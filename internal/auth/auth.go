// Package auth loads the dashboard credentials file and guards the API
// with HTTP basic authentication. Session and cookie handling stay with
// the client; every request is checked independently.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"
)

// User is one entry of the credentials file.
type User struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"` // bcrypt hash
}

// Credentials holds the parsed users.yaml contents.
type Credentials struct {
	Usernames map[string]User `yaml:"usernames"`
}

type credentialsFile struct {
	Credentials Credentials `yaml:"credentials"`
}

// LoadCredentials reads and parses the credentials file. A missing or
// unparsable file is a startup-fatal condition for the caller.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}

	if len(file.Credentials.Usernames) == 0 {
		return nil, fmt.Errorf("credentials file %s contains no users", path)
	}

	return &file.Credentials, nil
}

// Authenticate verifies a username/password pair against the stored
// bcrypt hashes.
func (c *Credentials) Authenticate(username, password string) bool {
	user, ok := c.Usernames[username]
	if !ok {
		// Burn a comparison anyway to keep timing uniform for
		// unknown usernames.
		bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// BasicAuth returns middleware enforcing HTTP basic auth against the
// credentials set. Requests that fail get a 401 challenge.
func (c *Credentials) BasicAuth(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || !c.Authenticate(username, password) {
				if ok {
					logger.WarnContext(r.Context(), "authentication failed",
						slog.String("username", username),
						slog.String("remote_addr", r.RemoteAddr),
					)
				}
				w.Header().Set("WWW-Authenticate", `Basic realm="dre-insights"`)
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"type":"/errors/unauthorized","title":"Unauthorized","status":401,"detail":"Valid credentials are required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
