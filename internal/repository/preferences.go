package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

type PreferencesRepository struct {
	db *database.DB
}

func NewPreferencesRepository(db *database.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

const preferencesColumns = `user_id, preferred_gender, department, year_of_study, seater_type,
	hobbies, purpose, current_hostel, cleanliness, smoking, drinking,
	sleep_schedule, study_style, noise_tolerance, created_at, updated_at`

func (r *PreferencesRepository) GetPreferences(ctx context.Context, userID string) (*database.Preferences, error) {
	prefs := &database.Preferences{}
	row := r.db.QueryRowContext(ctx, `SELECT `+preferencesColumns+` FROM preferences WHERE user_id = $1`, userID)
	if err := scanPreferences(row, prefs); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"user_id":   userID,
			"operation": "get_preferences",
		}).WithError(err).Error("Failed to load preferences")
		return nil, errors.NewDatabaseError("get_preferences", err)
	}
	return prefs, nil
}

// SavePreferences replaces the whole survey for prefs.UserID.
func (r *PreferencesRepository) SavePreferences(ctx context.Context, prefs *database.Preferences) (*database.Preferences, error) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   prefs.UserID,
		"operation": "save_preferences",
	})

	hobbies := prefs.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}

	query := `
		INSERT INTO preferences (
			user_id, preferred_gender, department, year_of_study, seater_type,
			hobbies, purpose, current_hostel, cleanliness, smoking, drinking,
			sleep_schedule, study_style, noise_tolerance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_gender = EXCLUDED.preferred_gender,
			department       = EXCLUDED.department,
			year_of_study    = EXCLUDED.year_of_study,
			seater_type      = EXCLUDED.seater_type,
			hobbies          = EXCLUDED.hobbies,
			purpose          = EXCLUDED.purpose,
			current_hostel   = EXCLUDED.current_hostel,
			cleanliness      = EXCLUDED.cleanliness,
			smoking          = EXCLUDED.smoking,
			drinking         = EXCLUDED.drinking,
			sleep_schedule   = EXCLUDED.sleep_schedule,
			study_style      = EXCLUDED.study_style,
			noise_tolerance  = EXCLUDED.noise_tolerance,
			updated_at       = NOW()
		RETURNING ` + preferencesColumns

	saved := &database.Preferences{}
	row := r.db.QueryRowContext(ctx, query,
		prefs.UserID, prefs.PreferredGender, prefs.Department, prefs.YearOfStudy, prefs.SeaterType,
		pq.Array(hobbies), prefs.Purpose, prefs.CurrentHostel, prefs.Cleanliness, prefs.Smoking, prefs.Drinking,
		prefs.SleepSchedule, prefs.StudyStyle, prefs.NoiseTolerance,
	)
	if err := scanPreferences(row, saved); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, errors.NewNotFoundError("user")
		}
		logger.WithError(err).Error("Failed to save preferences")
		return nil, errors.NewDatabaseError("save_preferences", err)
	}

	logger.Info("Preferences saved")
	return saved, nil
}

func scanPreferences(row interface{ Scan(...interface{}) error }, p *database.Preferences) error {
	err := row.Scan(
		&p.UserID, &p.PreferredGender, &p.Department, &p.YearOfStudy, &p.SeaterType,
		pq.Array(&p.Hobbies), &p.Purpose, &p.CurrentHostel, &p.Cleanliness, &p.Smoking, &p.Drinking,
		&p.SleepSchedule, &p.StudyStyle, &p.NoiseTolerance, &p.CreatedAt, &p.UpdatedAt,
	)
	if p.Hobbies == nil {
		p.Hobbies = []string{}
	}
	return err
}
