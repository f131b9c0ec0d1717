package httphandler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/matching"
	"github.com/roomieradar/roomieradar/internal/middleware"
	"github.com/roomieradar/roomieradar/internal/services"
)

const (
	birthDateLayout = "2006-01-02"
	photoField      = "profilePicture"
)

func (h *Handler) GetMyProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile reads a multipart (or urlencoded) profile form with an
// optional profilePicture file.
func (h *Handler) UpdateProfile(c *gin.Context) {
	update := interfaces.ProfileUpdate{
		FullName:         c.PostForm("fullName"),
		Gender:           c.PostForm("gender"),
		Course:           c.PostForm("course"),
		YearOfStudy:      c.PostForm("yearOfStudy"),
		PermanentAddress: c.PostForm("permanentAddress"),
		ContactNumber:    c.PostForm("contactNumber"),
		Bio:              c.PostForm("bio"),
		SocialLinks: database.SocialLinks{
			Instagram: c.PostForm("instagramLink"),
			LinkedIn:  c.PostForm("linkedinLink"),
		},
	}

	if raw := strings.TrimSpace(c.PostForm("birthDate")); raw != "" {
		birthDate, err := time.Parse(birthDateLayout, raw)
		if err != nil {
			_ = c.Error(errors.NewValidationError("birthDate", "Birth date must be YYYY-MM-DD"))
			return
		}
		update.BirthDate = &birthDate
	}

	photo, err := readPhoto(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), update, photo)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// readPhoto returns nil when no file was attached. At most one byte past the
// limit is read so the size check can still reject it.
func readPhoto(c *gin.Context) (*interfaces.Photo, error) {
	header, err := c.FormFile(photoField)
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewValidationError(photoField, "Could not read uploaded image")
	}

	file, err := header.Open()
	if err != nil {
		return nil, errors.NewInternalError("failed to open uploaded image", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxPhotoSize+1))
	if err != nil {
		return nil, errors.NewInternalError("failed to read uploaded image", err)
	}

	return &interfaces.Photo{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.profileService.GetPreferences(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) SavePreferences(c *gin.Context) {
	var prefs database.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		_ = c.Error(errors.NewValidationError("body", "Malformed preferences"))
		return
	}

	saved, err := h.profileService.SavePreferences(c.Request.Context(), middleware.CurrentUserID(c), prefs)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetMatches ranks candidates for the caller. Query parameters: min_score,
// limit, and strict=true as shorthand for the strict minimum score.
func (h *Handler) GetMatches(c *gin.Context) {
	opts, err := matchOptions(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	matches, err := h.matchingService.ComputeMatches(c.Request.Context(), middleware.CurrentUserID(c), opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func matchOptions(c *gin.Context) (matching.Options, error) {
	var opts matching.Options

	if raw := c.Query("min_score"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > matching.MaxScore {
			return opts, errors.NewValidationError("min_score", "min_score must be between 0 and 100")
		}
		opts.MinScore = n
	}
	if strict, _ := strconv.ParseBool(c.Query("strict")); strict && opts.MinScore < matching.StrictMinScore {
		opts.MinScore = matching.StrictMinScore
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, errors.NewValidationError("limit", "limit must be a non-negative integer")
		}
		opts.Limit = n
	}
	return opts, nil
}
