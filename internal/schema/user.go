package schema

// User is an account allowed to read submitted contact messages.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	// Password holds the stored credential. The user service stores an
	// Argon2id hash here; it is never serialised.
	Password string `json:"-"`
}

// InsertUser is the subset of User accepted on creation.
type InsertUser struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}
