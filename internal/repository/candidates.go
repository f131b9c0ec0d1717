package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/matching"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

type CandidateRepository struct {
	db *database.DB
}

func NewCandidateRepository(db *database.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// ListCandidates returns every profile not in excluding, oldest first, with
// the owner's preferences attached when they exist.
func (r *CandidateRepository) ListCandidates(ctx context.Context, excluding []string) ([]matching.Subject, error) {
	if excluding == nil {
		excluding = []string{}
	}

	query := `
		SELECT p.user_id, p.full_name, p.birth_date, p.gender, p.course, p.year_of_study,
		       p.permanent_address, p.contact_number, p.social_links, p.bio, p.profile_picture,
		       p.created_at, p.updated_at,
		       pr.user_id, pr.preferred_gender, pr.department, pr.year_of_study, pr.seater_type,
		       pr.hobbies, pr.purpose, pr.current_hostel
		FROM profiles p
		LEFT JOIN preferences pr ON pr.user_id = p.user_id
		WHERE NOT (p.user_id = ANY($1::text[]))
		ORDER BY p.created_at, p.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(excluding))
	if err != nil {
		telemetry.GetContextualLogger(ctx).
			WithField("operation", "list_candidates").
			WithError(err).
			Error("Failed to list candidates")
		return nil, errors.NewDatabaseError("list_candidates", err)
	}
	defer rows.Close()

	candidates := make([]matching.Subject, 0)
	for rows.Next() {
		profile := &database.Profile{}
		var (
			prefUserID, preferredGender, department, year, seater sql.NullString
			purpose, hostel                                       sql.NullString
			hobbies                                               []string
		)
		err := rows.Scan(
			&profile.UserID, &profile.FullName, &profile.BirthDate, &profile.Gender, &profile.Course,
			&profile.YearOfStudy, &profile.PermanentAddress, &profile.ContactNumber, &profile.SocialLinks,
			&profile.Bio, &profile.ProfilePicture, &profile.CreatedAt, &profile.UpdatedAt,
			&prefUserID, &preferredGender, &department, &year, &seater,
			pq.Array(&hobbies), &purpose, &hostel,
		)
		if err != nil {
			return nil, errors.NewDatabaseError("list_candidates", err)
		}

		subject := matching.Subject{UserID: profile.UserID, Profile: profile}
		if prefUserID.Valid {
			if hobbies == nil {
				hobbies = []string{}
			}
			subject.Preferences = &database.Preferences{
				UserID:          prefUserID.String,
				PreferredGender: preferredGender.String,
				Department:      department.String,
				YearOfStudy:     year.String,
				SeaterType:      seater.String,
				Hobbies:         hobbies,
				Purpose:         purpose.String,
				CurrentHostel:   hostel.String,
			}
		}
		candidates = append(candidates, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("list_candidates", err)
	}

	return candidates, nil
}
