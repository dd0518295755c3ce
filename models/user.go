package models

// User is the public view of an account. It never carries the password hash.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

// UserRecord is the per-account payload stored inside the shared remote
// document. The JSON field name "password" is kept for wire compatibility
// with existing documents, but the value is always a bcrypt hash.
type UserRecord struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	Username      string               `json:"username"`
	PasswordHash  string               `json:"password"`
	CreatedAt     string               `json:"createdAt"`
	WatchProgress []WatchProgressEntry `json:"watchProgress"`
}

// Public strips credentials from a record.
func (r UserRecord) Public() User {
	return User{
		ID:        r.ID,
		Email:     r.Email,
		Username:  r.Username,
		CreatedAt: r.CreatedAt,
	}
}

// UserDocument is the entire remote document: every account keyed by email.
// The remote store has no partial-update endpoint, so every mutation is a
// whole-document read-modify-write.
type UserDocument struct {
	Users map[string]UserRecord `json:"users"`
}

// NewUserDocument returns an empty document with a non-nil user map.
func NewUserDocument() UserDocument {
	return UserDocument{Users: make(map[string]UserRecord)}
}
