package membership

import (
	"time"

	"github.com/google/uuid"

	dErrors "jassari/pkg/domain-errors"
)

// MembershipStatus is the derived state of a youth membership. It is computed
// fresh from (expiration, approved time, today) on every evaluation and never
// stored.
type MembershipStatus string

const (
	// StatusActive means the membership is approved and within its period.
	StatusActive MembershipStatus = "active"
	// StatusPending means the membership is waiting for approval and is
	// either inactive or its approval window has lapsed.
	StatusPending MembershipStatus = "pending"
	// StatusRenewing means the membership is active, but a renewal is
	// waiting for approval.
	StatusRenewing MembershipStatus = "renewing"
	// StatusExpired means the membership has expired.
	StatusExpired MembershipStatus = "expired"
)

// Language is the language spoken at the youth's home. It doubles as the
// notification language for the approval flow.
type Language string

const (
	LanguageFinnish Language = "fi"
	LanguageSwedish Language = "sv"
	LanguageEnglish Language = "en"
)

var validLanguages = map[Language]bool{
	LanguageFinnish: true,
	LanguageSwedish: true,
	LanguageEnglish: true,
}

// ParseLanguage constructs a Language from external input.
// Empty input defaults to Finnish, matching the original service.
func ParseLanguage(s string) (Language, error) {
	if s == "" {
		return LanguageFinnish, nil
	}
	l := Language(s)
	if !l.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "unsupported language")
	}
	return l, nil
}

func (l Language) IsValid() bool {
	return validLanguages[l]
}

func (l Language) String() string {
	return string(l)
}

// Profile is the youth membership record. The ID is shared with the external
// identity-service profile; this service never mints it for self-service
// creation.
type Profile struct {
	ID               uuid.UUID
	MembershipNumber string
	BirthDate        time.Time
	SchoolName       string
	SchoolClass      string
	LanguageAtHome   Language

	// Expiration is always a concrete calendar date produced by
	// Season.CalculateExpiration; it is never set ad hoc.
	Expiration time.Time

	ApproverFirstName string
	ApproverLastName  string
	ApproverPhone     string
	ApproverEmail     string

	// ApprovalToken is non-empty exactly while an approval is outstanding.
	ApprovalToken          string
	ApprovalNotificationAt *time.Time
	ApprovedAt             *time.Time

	PhotoUsageApproved *bool

	// ProfileAccessToken and its expiration are set and cleared together.
	// The pair grants the approver temporary read access to the youth's
	// identity-service profile during the approval flow.
	ProfileAccessToken          string
	ProfileAccessTokenExpiresAt *time.Time

	ContactPersons []ContactPerson

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approved reports whether the profile has completed an approval at least once.
func (p Profile) Approved() bool {
	return p.ApprovedAt != nil
}

// ContactPerson is an additional contact owned by a profile. It follows the
// profile's lifecycle; deleting the profile cascades to its contacts.
type ContactPerson struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// CreateProfileInput carries the fields a creation accepts.
type CreateProfileInput struct {
	BirthDate          time.Time
	SchoolName         string
	SchoolClass        string
	LanguageAtHome     Language
	ApproverFirstName  string
	ApproverLastName   string
	ApproverPhone      string
	ApproverEmail      string
	PhotoUsageApproved *bool
	ContactPersons     []ContactPersonInput
}

// ProfileUpdate enumerates every field an update may touch. Nil pointers leave
// the stored value alone. The explicit field set replaces the original's
// generic attribute assignment so nothing outside this list can be written.
type ProfileUpdate struct {
	BirthDate          *time.Time
	SchoolName         *string
	SchoolClass        *string
	LanguageAtHome     *Language
	ApproverFirstName  *string
	ApproverLastName   *string
	ApproverPhone      *string
	ApproverEmail      *string
	PhotoUsageApproved *bool

	AddContactPersons    []ContactPersonInput
	UpdateContactPersons []ContactPersonUpdate
	RemoveContactPersons []uuid.UUID

	// ResendRequestNotification requests a fresh approval token and a new
	// approval-request notification to the approver.
	ResendRequestNotification bool
}

// ContactPersonInput creates a new contact person.
type ContactPersonInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// ContactPersonUpdate edits an existing contact person by ID.
type ContactPersonUpdate struct {
	ID        uuid.UUID
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
}

// Apply writes the update's set fields onto the profile. Contact person
// changes are persistence operations and handled by the service, not here.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.BirthDate != nil {
		p.BirthDate = DateOf(*u.BirthDate)
	}
	if u.SchoolName != nil {
		p.SchoolName = *u.SchoolName
	}
	if u.SchoolClass != nil {
		p.SchoolClass = *u.SchoolClass
	}
	if u.LanguageAtHome != nil {
		p.LanguageAtHome = *u.LanguageAtHome
	}
	if u.ApproverFirstName != nil {
		p.ApproverFirstName = *u.ApproverFirstName
	}
	if u.ApproverLastName != nil {
		p.ApproverLastName = *u.ApproverLastName
	}
	if u.ApproverPhone != nil {
		p.ApproverPhone = *u.ApproverPhone
	}
	if u.ApproverEmail != nil {
		p.ApproverEmail = *u.ApproverEmail
	}
	if u.PhotoUsageApproved != nil {
		v := *u.PhotoUsageApproved
		p.PhotoUsageApproved = &v
	}
}
