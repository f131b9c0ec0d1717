package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

type ProfileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, full_name, birth_date, gender, course, year_of_study,
	permanent_address, contact_number, social_links, bio, profile_picture,
	created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }, p *database.Profile) error {
	return row.Scan(
		&p.UserID, &p.FullName, &p.BirthDate, &p.Gender, &p.Course, &p.YearOfStudy,
		&p.PermanentAddress, &p.ContactNumber, &p.SocialLinks, &p.Bio, &p.ProfilePicture,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*database.Profile, error) {
	profile := &database.Profile{}
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	if err := scanProfile(row, profile); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"user_id":   userID,
			"operation": "get_profile",
		}).WithError(err).Error("Failed to load profile")
		return nil, errors.NewDatabaseError("get_profile", err)
	}
	return profile, nil
}

// UpsertProfile creates the profile on first write. Afterwards empty fields in
// update keep the stored value, except social links which are always replaced.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, userID string, update interfaces.ProfileUpdate) (*database.Profile, error) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"operation": "upsert_profile",
	})

	query := `
		INSERT INTO profiles (
			user_id, full_name, birth_date, gender, course, year_of_study,
			permanent_address, contact_number, social_links, bio, profile_picture
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name         = COALESCE(NULLIF(EXCLUDED.full_name, ''), profiles.full_name),
			birth_date        = COALESCE(EXCLUDED.birth_date, profiles.birth_date),
			gender            = COALESCE(NULLIF(EXCLUDED.gender, ''), profiles.gender),
			course            = COALESCE(NULLIF(EXCLUDED.course, ''), profiles.course),
			year_of_study     = COALESCE(NULLIF(EXCLUDED.year_of_study, ''), profiles.year_of_study),
			permanent_address = COALESCE(NULLIF(EXCLUDED.permanent_address, ''), profiles.permanent_address),
			contact_number    = COALESCE(NULLIF(EXCLUDED.contact_number, ''), profiles.contact_number),
			social_links      = EXCLUDED.social_links,
			bio               = COALESCE(NULLIF(EXCLUDED.bio, ''), profiles.bio),
			profile_picture   = COALESCE(NULLIF(EXCLUDED.profile_picture, ''), profiles.profile_picture),
			updated_at        = NOW()
		RETURNING ` + profileColumns

	profile := &database.Profile{}
	row := r.db.QueryRowContext(ctx, query,
		userID, update.FullName, update.BirthDate, update.Gender, update.Course, update.YearOfStudy,
		update.PermanentAddress, update.ContactNumber, update.SocialLinks, update.Bio, update.ProfilePicture,
	)
	if err := scanProfile(row, profile); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errors.NewNotFoundError("user")
		}
		logger.WithError(err).Error("Failed to upsert profile")
		return nil, errors.NewDatabaseError("upsert_profile", err)
	}

	logger.Info("Profile saved")
	return profile, nil
}
