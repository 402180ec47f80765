// Package auth validates bearer tokens on incoming requests.
package auth

import "crypto/subtle"

const bearerPrefix = "Bearer "

// CheckToken validates an Authorization header against the configured API
// token. Auth is strict: it passes only when a non-empty token is
// configured, a non-empty header is present, and the header equals
// "Bearer <token>" exactly (case-sensitive scheme and token). The
// comparison is constant-time.
func CheckToken(authHeader, apiToken string) bool {
	if apiToken == "" || authHeader == "" {
		return false
	}
	expected := bearerPrefix + apiToken
	return subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) == 1
}
