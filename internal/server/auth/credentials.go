package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// BasicCredentials decodes an "Authorization: Basic base64(user:pass)" value.
func BasicCredentials(header string) (username, password string, ok bool) {
	scheme, payload, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

// BasicGate checks the fixed client credentials that gate registration and
// sign-in.
type BasicGate struct {
	Username string
	Password string
}

// Allows reports whether header carries exactly the gate's credentials.
func (g BasicGate) Allows(header string) bool {
	u, p, ok := BasicCredentials(header)
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(u), []byte(g.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(p), []byte(g.Password)) == 1
	return userOK && passOK
}

// BasicHeader builds the header value BasicGate expects.
func BasicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
