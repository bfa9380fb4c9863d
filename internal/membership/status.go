package membership

import "time"

// Status computes the membership status of a profile as of today. It is a pure
// function of (expiration, approved time, today).
//
// The membership is considered valid on the expiration date itself, so the
// expired check is strict. When a renewal has advanced the stored expiration
// beyond the period the last approval covers, the profile is RENEWING until
// that approved period itself lapses, after which it falls back to PENDING.
func (s Season) Status(p Profile, today time.Time) MembershipStatus {
	today = DateOf(today)

	if p.Expiration.Before(today) {
		return StatusExpired
	}
	if !p.Approved() {
		return StatusPending
	}

	approvedPeriodExpiration := s.CalculateExpiration(DateOf(*p.ApprovedAt))
	if p.Expiration.After(approvedPeriodExpiration) {
		if approvedPeriodExpiration.Before(today) {
			return StatusPending
		}
		return StatusRenewing
	}
	return StatusActive
}

// Renewable reports whether the profile may be renewed as of today: either the
// membership has lapsed, or it has been approved and its expiration differs
// from what a renewal today would produce. The latter prevents double renewal
// within the same window.
func (s Season) Renewable(p Profile, today time.Time) bool {
	if s.Status(p, today) == StatusExpired {
		return true
	}
	return p.Approved() && !p.Expiration.Equal(s.CalculateExpiration(DateOf(today)))
}
