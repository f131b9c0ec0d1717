package interfaces

import (
	"time"

	"github.com/roomieradar/roomieradar/internal/database"
)

// RegisterRequest is the signup form.
type RegisterRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// ProfileUpdate carries the submitted profile form. Empty strings leave the
// stored value untouched; social links are always replaced.
type ProfileUpdate struct {
	FullName         string
	BirthDate        *time.Time
	Gender           string
	Course           string
	YearOfStudy      string
	PermanentAddress string
	ContactNumber    string
	Bio              string
	SocialLinks      database.SocialLinks
	// ProfilePicture is a data URL, set only when a new photo was uploaded.
	ProfilePicture string
}

// Photo is an uploaded profile picture before it is encoded.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SwipeResult answers a swipe.
type SwipeResult struct {
	Matched       bool   `json:"matched"`
	MatchedWithID string `json:"matched_with_id,omitempty"`
}

// MatchedUser is one entry in a user's mutual match list. Online is filled
// from chat presence, not storage.
type MatchedUser struct {
	UserID         string    `json:"id"`
	FullName       string    `json:"full_name"`
	ProfilePicture string    `json:"profile_picture"`
	MatchedAt      time.Time `json:"matched_at"`
	Online         bool      `json:"online"`
}
