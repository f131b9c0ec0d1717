package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
)

// MaxPhotoSize is the largest profile picture accepted, in bytes.
const MaxPhotoSize = 5 << 20

var (
	allowedPhotoTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
	}
	allowedPhotoExtensions = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".gif":  true,
	}
	allowedGenders = map[string]bool{
		"":                    true,
		database.GenderMale:   true,
		database.GenderFemale: true,
		database.GenderOther:  true,
	}
	allowedPurposes = map[string]bool{
		"":                           true,
		database.PurposeNewRoom:      true,
		database.PurposeChangeHostel: true,
	}
)

type ProfileService struct {
	profiles interfaces.ProfileStore
	prefs    interfaces.PreferencesStore
}

func NewProfileService(profiles interfaces.ProfileStore, prefs interfaces.PreferencesStore) *ProfileService {
	return &ProfileService{profiles: profiles, prefs: prefs}
}

// GetProfile returns the stored profile, or an empty one for a user who has
// not filled it in yet.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*database.Profile, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &database.Profile{UserID: userID}, nil
	}
	return profile, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update interfaces.ProfileUpdate, photo *interfaces.Photo) (*database.Profile, error) {
	update.FullName = strings.TrimSpace(update.FullName)
	update.Gender = strings.TrimSpace(update.Gender)
	update.Course = strings.TrimSpace(update.Course)
	update.YearOfStudy = strings.TrimSpace(update.YearOfStudy)
	update.PermanentAddress = strings.TrimSpace(update.PermanentAddress)
	update.ContactNumber = strings.TrimSpace(update.ContactNumber)
	update.Bio = strings.TrimSpace(update.Bio)
	update.SocialLinks.Instagram = strings.TrimSpace(update.SocialLinks.Instagram)
	update.SocialLinks.LinkedIn = strings.TrimSpace(update.SocialLinks.LinkedIn)

	if !allowedGenders[update.Gender] {
		return nil, errors.NewValidationError("gender", "Gender must be Male, Female or Other")
	}

	update.ProfilePicture = ""
	if photo != nil {
		dataURL, err := PhotoDataURL(*photo)
		if err != nil {
			return nil, err
		}
		update.ProfilePicture = dataURL
	}

	return s.profiles.UpsertProfile(ctx, userID, update)
}

// PhotoDataURL validates an uploaded image and encodes it as
// data:<mime>;base64,<payload>.
func PhotoDataURL(photo interfaces.Photo) (string, error) {
	contentType := strings.ToLower(strings.TrimSpace(photo.ContentType))
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext := strings.ToLower(filepath.Ext(photo.Filename))

	switch {
	case len(photo.Data) == 0:
		return "", errors.NewValidationError("profilePicture", "Uploaded image is empty")
	case len(photo.Data) > MaxPhotoSize:
		return "", errors.NewValidationError("profilePicture",
			fmt.Sprintf("Image must be at most %d MB", MaxPhotoSize>>20))
	case !allowedPhotoTypes[contentType] || !allowedPhotoExtensions[ext]:
		return "", errors.NewValidationError("profilePicture", "Only images (JPEG, JPG, PNG, GIF) are allowed")
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(photo.Data), nil
}

// GetPreferences returns a not-found error when the survey was never saved.
func (s *ProfileService) GetPreferences(ctx context.Context, userID string) (*database.Preferences, error) {
	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		return nil, errors.NewNotFoundError("preferences")
	}
	return prefs, nil
}

func (s *ProfileService) SavePreferences(ctx context.Context, userID string, prefs database.Preferences) (*database.Preferences, error) {
	prefs.UserID = userID
	prefs.PreferredGender = strings.TrimSpace(prefs.PreferredGender)
	prefs.Department = strings.TrimSpace(prefs.Department)
	prefs.YearOfStudy = strings.TrimSpace(prefs.YearOfStudy)
	prefs.SeaterType = strings.TrimSpace(prefs.SeaterType)
	prefs.Purpose = strings.TrimSpace(prefs.Purpose)
	prefs.CurrentHostel = strings.TrimSpace(prefs.CurrentHostel)
	prefs.Hobbies = normalizeHobbies(prefs.Hobbies)

	if !allowedGenders[prefs.PreferredGender] {
		return nil, errors.NewValidationError("preferred_gender", "Preferred gender must be Male, Female, Other or empty")
	}
	if !allowedPurposes[prefs.Purpose] {
		return nil, errors.NewValidationError("purpose", "Purpose must be new_room or change_hostel")
	}

	return s.prefs.SavePreferences(ctx, &prefs)
}

// normalizeHobbies trims entries and drops blanks and duplicates, keeping the
// first occurrence's position.
func normalizeHobbies(hobbies []string) []string {
	out := make([]string, 0, len(hobbies))
	seen := make(map[string]bool, len(hobbies))
	for _, h := range hobbies {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
