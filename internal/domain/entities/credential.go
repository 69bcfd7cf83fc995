package entities

import "strings"

// Credential is a scoped provider secret. It exists only for the duration of
// one compile's call stack: the pipeline clears it on every exit path, and
// its String form is redacted so it can never land in a log line by
// accident.
type Credential struct {
	secret []byte
}

// NewCredential wraps a raw API key. The input string is copied so clearing
// the credential does not depend on the caller's copy.
func NewCredential(raw string) *Credential {
	return &Credential{secret: []byte(strings.TrimSpace(raw))}
}

// Reveal returns the secret for constructing an authentication header.
// Callers must not retain the returned value beyond the outbound call.
func (c *Credential) Reveal() string {
	if c == nil {
		return ""
	}
	return string(c.secret)
}

// Empty reports whether the credential carries no secret.
func (c *Credential) Empty() bool {
	return c == nil || len(c.secret) == 0
}

// HasPrefix checks the secret's prefix. Advisory only: a plausible-looking
// key is not a trust boundary, the provider rejects bad ones.
func (c *Credential) HasPrefix(prefix string) bool {
	return c != nil && strings.HasPrefix(string(c.secret), prefix)
}

// Clear zeroes the secret. Safe to call multiple times and on nil.
func (c *Credential) Clear() {
	if c == nil {
		return
	}
	for i := range c.secret {
		c.secret[i] = 0
	}
	c.secret = c.secret[:0]
}

// String implements fmt.Stringer and always redacts.
func (c *Credential) String() string {
	return "[redacted]"
}
