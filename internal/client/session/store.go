package session

import "context"

// TokenPair is the unit of credential replacement. The two tokens are only
// ever written together so neither can go stale relative to the other.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User identifies the account the session belongs to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Record is the single persisted session unit. It is read and written as one
// JSON blob under one key, which is what makes pair replacement atomic.
type Record struct {
	User *User `json:"user,omitempty"`
	TokenPair
	IsAuthenticated bool `json:"isAuthenticated"`
}

// Clone returns a deep copy so callers cannot alias the stored record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.User != nil {
		u := *r.User
		out.User = &u
	}
	return &out
}

// Store is the single source of truth for credential state.
//
// Contract:
//   - Read returns nil (not an error) for a missing or malformed record.
//   - Write replaces the whole record in one operation.
//   - Writes and clears are observable by the next Read in the same process,
//     with no eventual-consistency window.
type Store interface {
	Read(ctx context.Context) (*Record, error)
	Write(ctx context.Context, rec *Record) error
	Clear(ctx context.Context) error
}
