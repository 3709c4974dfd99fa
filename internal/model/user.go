package model

import "time"

// User represents a registered identity. Username and email are each unique.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Address      *string   `json:"address" gorm:"size:255"`
	Gender       *string   `json:"gender" gorm:"size:32"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// SignupUser is the projection returned after registration.
type SignupUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginUser is the projection returned alongside a session token.
type LoginUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is the full public view of a user, served to its owner.
type Profile struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Address   *string   `json:"address"`
	Gender    *string   `json:"gender"`
	CreatedAt time.Time `json:"created_at"`
}

// SignupView projects u for the signup response.
func (u *User) SignupView() SignupUser {
	return SignupUser{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// LoginView projects u for the login response.
func (u *User) LoginView() LoginUser {
	return LoginUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// ProfileView projects u for the profile endpoint.
func (u *User) ProfileView() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Address:   u.Address,
		Gender:    u.Gender,
		CreatedAt: u.CreatedAt,
	}
}
