package domain

import "time"

// Password length bounds accepted at registration. bcrypt ignores bytes past
// MaxPasswordLength.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User models a registered account.
type User struct {
	ID                  string     `json:"_id"`
	Fullname            string     `json:"fullname"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Balance             int64      `json:"balance"`
	FinishedRecipeCount int64      `json:"finishedRecipeCount"`
	ProfileImgURL       string     `json:"profileImgUrl"`
	ImageState          ImageState `json:"imageState"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Identity is the projection of a user attached to an authenticated request.
// It never carries the password hash or the balance.
type Identity struct {
	ID       string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// Identity returns the request identity projection of u.
func (u *User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Fullname: u.Fullname,
	}
}

// PublicUser is the profile other users may see.
type PublicUser struct {
	ID                  string `json:"_id"`
	Fullname            string `json:"fullname"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	FinishedRecipeCount int64  `json:"finishedRecipeCount"`
	ProfileImgURL       string `json:"profileImgUrl"`
}

// Public returns the profile of u without private account state.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:                  u.ID,
		Fullname:            u.Fullname,
		Username:            u.Username,
		Email:               u.Email,
		FinishedRecipeCount: u.FinishedRecipeCount,
		ProfileImgURL:       u.ProfileImgURL,
	}
}
