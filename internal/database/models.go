package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile holds the demographic and bio fields a user edits about themself.
type Profile struct {
	UserID           string      `json:"user" db:"user_id"`
	FullName         string      `json:"full_name" db:"full_name"`
	BirthDate        *time.Time  `json:"birth_date" db:"birth_date"`
	Gender           string      `json:"gender" db:"gender"`
	Course           string      `json:"course" db:"course"`
	YearOfStudy      string      `json:"year_of_study" db:"year_of_study"`
	PermanentAddress string      `json:"permanent_address" db:"permanent_address"`
	ContactNumber    string      `json:"contact_number" db:"contact_number"`
	SocialLinks      SocialLinks `json:"social_links" db:"social_links"`
	Bio              string      `json:"bio" db:"bio"`
	ProfilePicture   string      `json:"profile_picture" db:"profile_picture"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// SocialLinks is stored as JSONB.
type SocialLinks struct {
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// Gender values accepted on a profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Purpose values for why a user is looking for a roommate.
const (
	PurposeNewRoom      = "new_room"
	PurposeChangeHostel = "change_hostel"
)

// Preferences is the survey a user fills in describing who they want to live with.
type Preferences struct {
	UserID          string    `json:"user" db:"user_id"`
	PreferredGender string    `json:"preferred_gender" db:"preferred_gender"`
	Department      string    `json:"department" db:"department"`
	YearOfStudy     string    `json:"year_of_study" db:"year_of_study"`
	SeaterType      string    `json:"seater_type" db:"seater_type"`
	Hobbies         []string  `json:"hobbies" db:"hobbies"`
	Purpose         string    `json:"purpose" db:"purpose"`
	CurrentHostel   string    `json:"current_hostel" db:"current_hostel"`
	Cleanliness     string    `json:"cleanliness" db:"cleanliness"`
	Smoking         string    `json:"smoking" db:"smoking"`
	Drinking        string    `json:"drinking" db:"drinking"`
	SleepSchedule   string    `json:"sleep_schedule" db:"sleep_schedule"`
	StudyStyle      string    `json:"study_style" db:"study_style"`
	NoiseTolerance  string    `json:"noise_tolerance" db:"noise_tolerance"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Swipe is one user's left or right decision on another.
type Swipe struct {
	UserID    string    `json:"user_id" db:"user_id"`
	TargetID  string    `json:"target_id" db:"target_id"`
	Direction string    `json:"direction" db:"direction"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MutualMatch is one side of a symmetric match; a match is always stored as
// two rows.
type MutualMatch struct {
	UserID    string    `json:"user_id" db:"user_id"`
	MatchedID string    `json:"matched_id" db:"matched_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Message represents a chat message between two users
type Message struct {
	ID          string    `json:"id" db:"id"`
	ChatID      string    `json:"chat_id" db:"chat_id"`
	SenderID    string    `json:"sender_id" db:"sender_id"`
	RecipientID string    `json:"recipient_id" db:"recipient_id"`
	Body        string    `json:"message" db:"body"`
	Read        bool      `json:"read" db:"read"`
	CreatedAt   time.Time `json:"timestamp" db:"created_at"`
}

// Value encodes the links as a JSON string. lib/pq would send a []byte as
// bytea, which jsonb rejects.
func (s SocialLinks) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *SocialLinks) Scan(value interface{}) error {
	if value == nil {
		*s = SocialLinks{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into SocialLinks", value)
	}
}
