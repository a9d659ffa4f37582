// Package session restores, saves, and clears the authenticated session in
// the persisted preference store.
package session

// User identifies the authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is an authenticated user plus the access token for API calls. It
// is persisted as one JSON record; the record is only ever fully well-formed
// or absent.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Valid reports whether the session has the shape the store is willing to
// persist or restore: a non-empty user id and token.
func (s *Session) Valid() bool {
	return s != nil && s.User.ID != "" && s.Token != ""
}
