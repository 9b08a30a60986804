package entity

import "time"

// Session is the server-side record of an issued API token.
// The token carries the session ID in its jti claim, so revoking the
// session invalidates the token before it expires.
type Session struct {
	ID        string
	UserID    uint
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time // nil while active
}

// ActiveAt reports whether the session can authenticate a request at t.
func (s *Session) ActiveAt(t time.Time) bool {
	return s.RevokedAt == nil && t.Before(s.ExpiresAt)
}

// IsRevoked reports whether the token was logged out.
func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid is ActiveAt(time.Now()).
func (s *Session) IsValid() bool {
	return s.ActiveAt(time.Now())
}
