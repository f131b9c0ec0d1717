// Package matching ranks roommate candidates against a requester's preference
// survey and models the swipe states between two users.
package matching

import (
	"sort"
	"strings"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
)

// Score weights. A candidate can earn at most MaxScore.
const (
	GenderWeight     = 20
	DepartmentWeight = 20
	YearWeight       = 15
	SeaterWeight     = 15
	HobbyWeight      = 5
	MaxScore         = 100

	// StrictMinScore is the cutoff used when a caller asks for the strict list.
	StrictMinScore = 20

	// Unknown stands in for a field neither preferences nor profile provide.
	// It never equals a requester preference.
	Unknown = "unknown"
)

// Subject is one user as seen by the scorer. Preferences may be nil.
type Subject struct {
	UserID      string
	Profile     *database.Profile
	Preferences *database.Preferences
}

// Candidate is a scored entry in a match list.
type Candidate struct {
	UserID      string   `json:"id"`
	DisplayName string   `json:"full_name"`
	Photo       string   `json:"profile_picture"`
	Department  string   `json:"department"`
	YearOfStudy string   `json:"year_of_study"`
	Hobbies     []string `json:"hobbies"`
	Score       int      `json:"score"`
}

// Options narrows a match list. Zero values mean no cutoff and no limit.
type Options struct {
	MinScore int
	Limit    int
}

// ComputeMatches scores every candidate against the requester and returns them
// best first. Equal scores keep their input order. The requester itself and
// candidates without a profile are skipped. A requester without preferences
// gets an empty list.
func ComputeMatches(requester Subject, candidates []Subject) []Candidate {
	return ComputeMatchesWithOptions(requester, candidates, Options{})
}

// ComputeMatchesWithOptions is ComputeMatches with a minimum score and a limit
// applied after ranking.
func ComputeMatchesWithOptions(requester Subject, candidates []Subject, opts Options) []Candidate {
	matches := make([]Candidate, 0, len(candidates))
	if requester.Preferences == nil {
		return matches
	}

	for _, c := range candidates {
		if c.UserID == requester.UserID || c.Profile == nil {
			continue
		}
		scored := resolve(c)
		scored.Score = Score(requester.Preferences, c)
		if scored.Score < opts.MinScore {
			continue
		}
		matches = append(matches, scored)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches
}

// Score is the compatibility of candidate with the given requester
// preferences, in [0, MaxScore].
func Score(prefs *database.Preferences, candidate Subject) int {
	if prefs == nil {
		return 0
	}

	score := 0
	if prefs.PreferredGender == "" ||
		(candidate.Profile != nil && prefs.PreferredGender == candidate.Profile.Gender) {
		score += GenderWeight
	}
	if matchesResolved(prefs.Department, department(candidate)) {
		score += DepartmentWeight
	}
	if matchesResolved(prefs.YearOfStudy, yearOfStudy(candidate)) {
		score += YearWeight
	}
	if matchesResolved(prefs.SeaterType, seaterType(candidate)) {
		score += SeaterWeight
	}
	score += HobbyWeight * HobbyOverlap(prefs.Hobbies, hobbies(candidate))

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// Completeness reports which records a candidate lacks. The candidate is still
// scored from fallbacks unless its profile is missing.
func Completeness(candidate Subject) error {
	var missing []string
	if candidate.Profile == nil {
		missing = append(missing, "profile")
	}
	if candidate.Preferences == nil {
		missing = append(missing, "preferences")
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.NewCandidateDataIncompleteError(candidate.UserID, strings.Join(missing, ","))
}

func resolve(c Subject) Candidate {
	out := Candidate{
		UserID:      c.UserID,
		Department:  department(c),
		YearOfStudy: yearOfStudy(c),
		Hobbies:     hobbies(c),
	}
	if c.Profile != nil {
		out.DisplayName = c.Profile.FullName
		out.Photo = c.Profile.ProfilePicture
	}
	return out
}

func matchesResolved(wanted, resolved string) bool {
	return wanted != "" && resolved != Unknown && wanted == resolved
}

func department(c Subject) string {
	if c.Preferences != nil && strings.TrimSpace(c.Preferences.Department) != "" {
		return c.Preferences.Department
	}
	if c.Profile != nil && strings.TrimSpace(c.Profile.Course) != "" {
		return c.Profile.Course
	}
	return Unknown
}

func yearOfStudy(c Subject) string {
	if c.Preferences != nil && strings.TrimSpace(c.Preferences.YearOfStudy) != "" {
		return c.Preferences.YearOfStudy
	}
	if c.Profile != nil && strings.TrimSpace(c.Profile.YearOfStudy) != "" {
		return c.Profile.YearOfStudy
	}
	return Unknown
}

func seaterType(c Subject) string {
	if c.Preferences != nil && strings.TrimSpace(c.Preferences.SeaterType) != "" {
		return c.Preferences.SeaterType
	}
	return Unknown
}

func hobbies(c Subject) []string {
	if c.Preferences != nil && len(c.Preferences.Hobbies) > 0 {
		out := make([]string, len(c.Preferences.Hobbies))
		copy(out, c.Preferences.Hobbies)
		return out
	}
	if c.Profile != nil {
		return ExtractHobbies(c.Profile.Bio)
	}
	return []string{}
}
