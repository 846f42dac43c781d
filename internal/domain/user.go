package domain

// Account is a registered principal. PasswordHash never leaves the
// usecase layer.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
}
