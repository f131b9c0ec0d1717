package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
)

func newProfileService() (*ProfileService, *MockProfileStore, *MockPreferencesStore) {
	profiles := new(MockProfileStore)
	prefs := new(MockPreferencesStore)
	return NewProfileService(profiles, prefs), profiles, prefs
}

func TestProfileService_GetProfileShell(t *testing.T) {
	service, profiles, _ := newProfileService()
	ctx := context.Background()
	profiles.On("GetProfile", ctx, "user-1").Return(nil, nil)

	profile, err := service.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, &database.Profile{UserID: "user-1"}, profile)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	service, profiles, _ := newProfileService()
	ctx := context.Background()

	expected := interfaces.ProfileUpdate{
		FullName:    "Asha Rao",
		Gender:      database.GenderFemale,
		Course:      "CS",
		Bio:         "coding",
		SocialLinks: database.SocialLinks{Instagram: "@asha"},
	}
	profiles.On("UpsertProfile", ctx, "user-1", expected).Return(&database.Profile{UserID: "user-1"}, nil)

	_, err := service.UpdateProfile(ctx, "user-1", interfaces.ProfileUpdate{
		FullName:       "  Asha Rao ",
		Gender:         "Female",
		Course:         "CS ",
		Bio:            " coding",
		SocialLinks:    database.SocialLinks{Instagram: " @asha "},
		ProfilePicture: "data:image/png;base64,client-supplied",
	}, nil)
	require.NoError(t, err)
	profiles.AssertExpectations(t)
}

func TestProfileService_UpdateProfileWithPhoto(t *testing.T) {
	service, profiles, _ := newProfileService()
	ctx := context.Background()

	profiles.On("UpsertProfile", ctx, "user-1", mock.MatchedBy(func(u interfaces.ProfileUpdate) bool {
		return u.ProfilePicture == "data:image/png;base64,iVBORw=="
	})).Return(&database.Profile{UserID: "user-1"}, nil)

	_, err := service.UpdateProfile(ctx, "user-1", interfaces.ProfileUpdate{}, &interfaces.Photo{
		Filename:    "me.PNG",
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47},
	})
	require.NoError(t, err)
	profiles.AssertExpectations(t)
}

func TestProfileService_UpdateProfileRejectsBadInput(t *testing.T) {
	service, profiles, _ := newProfileService()
	ctx := context.Background()

	_, err := service.UpdateProfile(ctx, "user-1", interfaces.ProfileUpdate{Gender: "robot"}, nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	_, err = service.UpdateProfile(ctx, "user-1", interfaces.ProfileUpdate{}, &interfaces.Photo{
		Filename: "notes.pdf", ContentType: "application/pdf", Data: []byte("%PDF"),
	})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	profiles.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything, mock.Anything)
}

func TestPhotoDataURL(t *testing.T) {
	tests := []struct {
		name     string
		photo    interfaces.Photo
		expected string
		valid    bool
	}{
		{"JPEG", interfaces.Photo{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("abc")}, "data:image/jpeg;base64,YWJj", true},
		{"GIF with params", interfaces.Photo{Filename: "a.gif", ContentType: "image/gif; charset=binary", Data: []byte("abc")}, "data:image/gif;base64,YWJj", true},
		{"JPEG extension", interfaces.Photo{Filename: "a.jpeg", ContentType: "IMAGE/JPEG", Data: []byte("abc")}, "data:image/jpeg;base64,YWJj", true},
		{"Empty", interfaces.Photo{Filename: "a.png", ContentType: "image/png"}, "", false},
		{"Wrong extension", interfaces.Photo{Filename: "a.exe", ContentType: "image/png", Data: []byte("abc")}, "", false},
		{"Wrong mime", interfaces.Photo{Filename: "a.png", ContentType: "text/plain", Data: []byte("abc")}, "", false},
		{"WebP", interfaces.Photo{Filename: "a.webp", ContentType: "image/webp", Data: []byte("abc")}, "", false},
		{"Too large", interfaces.Photo{Filename: "a.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, MaxPhotoSize+1)}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PhotoDataURL(tt.photo)
			if !tt.valid {
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	exact, err := PhotoDataURL(interfaces.Photo{Filename: "max.png", ContentType: "image/png", Data: bytes.Repeat([]byte{1}, MaxPhotoSize)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(exact, "data:image/png;base64,"))
}

func TestProfileService_Preferences(t *testing.T) {
	service, _, prefs := newProfileService()
	ctx := context.Background()

	prefs.On("GetPreferences", ctx, "missing").Return(nil, nil)
	_, err := service.GetPreferences(ctx, "missing")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	prefs.On("SavePreferences", ctx, mock.MatchedBy(func(p *database.Preferences) bool {
		return p.UserID == "user-1" &&
			p.Department == "CS" &&
			assert.ObjectsAreEqual([]string{"Coding", "Hiking"}, p.Hobbies)
	})).Return(&database.Preferences{UserID: "user-1"}, nil)

	_, err = service.SavePreferences(ctx, "user-1", database.Preferences{
		UserID:     "someone-else",
		Department: " CS ",
		Hobbies:    []string{" Coding", "Hiking", "", "Coding"},
		Purpose:    database.PurposeNewRoom,
	})
	require.NoError(t, err)
	prefs.AssertExpectations(t)

	_, err = service.SavePreferences(ctx, "user-1", database.Preferences{Purpose: "vacation"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	_, err = service.SavePreferences(ctx, "user-1", database.Preferences{PreferredGender: "any"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}
