package membership

import (
	"time"

	dErrors "jassari/pkg/domain-errors"
)

// ValidateCreation enforces the age gates on profile creation. Staff callers
// bypass the guardian-email and photo-usage gates but never the minimum age:
// a profile under 13 years old cannot exist at all.
func ValidateCreation(input CreateProfileInput, today time.Time, staff bool) error {
	age := Age(input.BirthDate, today)
	if age < MinCreationAge {
		return dErrors.New(dErrors.CodeAgeRestriction, "under 13 years old cannot create youth profile")
	}
	if staff {
		return nil
	}
	if age < AgeOfMajority && input.ApproverEmail == "" {
		return dErrors.New(dErrors.CodeAgeRestriction, "approver email is required for youth under 18 years old")
	}
	if input.PhotoUsageApproved != nil && age < PhotoUsageMinAge {
		return dErrors.New(dErrors.CodeAgeRestriction, "cannot set photo usage permission if under 15 years old")
	}
	return nil
}

// ValidatePhotoUsageUpdate gates direct photo-usage edits by the youth. The
// check runs against whichever birth date is authoritative: the new value when
// the update carries one, the stored value otherwise. Staff and guardians (via
// the approval flow) are exempt.
func ValidatePhotoUsageUpdate(update ProfileUpdate, storedBirthDate, today time.Time) error {
	if update.PhotoUsageApproved == nil {
		return nil
	}
	birthDate := storedBirthDate
	if update.BirthDate != nil {
		birthDate = *update.BirthDate
	}
	if Age(birthDate, today) < PhotoUsageMinAge {
		return dErrors.New(dErrors.CodeAgeRestriction, "cannot set photo usage permission if under 15 years old")
	}
	return nil
}
