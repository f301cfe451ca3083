package domain

import "time"

const (
	// DefaultCurrency is assigned when signup omits a currency.
	DefaultCurrency = "USD"
	// DefaultTheme is the theme preference of new accounts.
	DefaultTheme = "light"
)

// User mirrors the persisted representation in the users table.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Currency     string
	Theme        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a user that may leave the service.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

// Public strips credentials from the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Currency: u.Currency,
		Theme:    u.Theme,
	}
}
