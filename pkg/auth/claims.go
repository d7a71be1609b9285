package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// CapabilityBlogCreate allows publishing new blog entries.
const CapabilityBlogCreate = "blog:create"

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Username     string
	Capabilities []string
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued by the identity provider.
// The subject carries the username.
type AccessTokenClaims struct {
	Capabilities []string `json:"caps,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the request principal.
func (c *AccessTokenClaims) Principal() *Principal {
	if c == nil {
		return nil
	}
	caps := make([]string, len(c.Capabilities))
	copy(caps, c.Capabilities)
	return &Principal{Username: c.Subject, Capabilities: caps}
}
