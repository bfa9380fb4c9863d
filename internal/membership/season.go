package membership

import "time"

// Age thresholds for the consent gates.
const (
	// MinCreationAge is the youngest age allowed to hold a youth profile.
	MinCreationAge = 13
	// PhotoUsageMinAge is the youngest age allowed to set the photo usage
	// permission without a guardian.
	PhotoUsageMinAge = 15
	// AgeOfMajority separates auto-approved adults from minors who need a
	// guardian approval cycle.
	AgeOfMajority = 18
)

// Season configures the annual membership validity period. Every expiration
// date this service produces lands on EndDay/EndMonth of some year; signups on
// or after FullSeasonStartMonth are granted membership through the next year's
// season end.
//
// The same Season value must be used everywhere status is computed, or results
// become inconsistent.
type Season struct {
	EndDay               int
	EndMonth             time.Month
	FullSeasonStartMonth time.Month
}

// DefaultSeason matches the original service configuration: seasons end on
// 31 August and the full season starts in May.
func DefaultSeason() Season {
	return Season{
		EndDay:               31,
		EndMonth:             time.August,
		FullSeasonStartMonth: time.May,
	}
}

// CalculateExpiration returns the expiration date for a membership signed up
// or renewed on from. Memberships always expire at the season end; signups
// before the full-season start month expire at the end of the current season,
// later signups at the end of the next one.
func (s Season) CalculateExpiration(from time.Time) time.Time {
	year := from.Year()
	if from.Month() >= s.FullSeasonStartMonth {
		year++
	}
	return Date(year, s.EndMonth, s.EndDay)
}

// Date builds a calendar date at UTC midnight. All membership dates are
// normalized through this so comparisons are pure date comparisons.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates a timestamp to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Age returns the exact calendar age at today: the year difference, minus one
// when today's month and day precede the birth date's.
func Age(birthDate, today time.Time) int {
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	return age
}
