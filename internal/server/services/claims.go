package services

import (
	"slices"

	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
)

// ClaimsPolicy is the fixed claim shape every token must carry. The codec
// checks signature and expiry only; this check is applied on top of it.
type ClaimsPolicy struct {
	Issuer   string
	Audience string
	Type     string
	Usr      string
}

func PolicyFromConfig(cfg *config.Config) ClaimsPolicy {
	return ClaimsPolicy{
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
		Type:     cfg.TokenType,
		Usr:      cfg.TokenUsr,
	}
}

// Matches reports whether c has exactly the expected issuer, audience, type
// and usr, and names a subject.
func (p ClaimsPolicy) Matches(c *auth.Claims) bool {
	if c == nil || c.ID == "" {
		return false
	}
	return c.Issuer == p.Issuer &&
		slices.Equal([]string(c.Audience), []string{p.Audience}) &&
		c.Type == p.Type &&
		c.Usr == p.Usr
}
