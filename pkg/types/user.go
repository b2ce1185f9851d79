package types

// User is an account record. PasswordHash holds the bcrypt hash and never
// leaves the store layer.
type User struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
}
