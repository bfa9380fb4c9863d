package handler

import (
	"time"

	"github.com/google/uuid"

	"jassari/internal/membership"
	dErrors "jassari/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

type contactPersonRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type contactPersonUpdateRequest struct {
	ID        string  `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
}

type createProfileRequest struct {
	BirthDate          string                 `json:"birth_date"`
	SchoolName         string                 `json:"school_name"`
	SchoolClass        string                 `json:"school_class"`
	LanguageAtHome     string                 `json:"language_at_home"`
	ApproverFirstName  string                 `json:"approver_first_name"`
	ApproverLastName   string                 `json:"approver_last_name"`
	ApproverPhone      string                 `json:"approver_phone"`
	ApproverEmail      string                 `json:"approver_email"`
	PhotoUsageApproved *bool                  `json:"photo_usage_approved"`
	ContactPersons     []contactPersonRequest `json:"contact_persons"`
}

func (req createProfileRequest) toInput() (membership.CreateProfileInput, error) {
	if req.BirthDate == "" {
		return membership.CreateProfileInput{}, dErrors.New(dErrors.CodeBadRequest, "birth_date is required")
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return membership.CreateProfileInput{}, err
	}
	lang, err := membership.ParseLanguage(req.LanguageAtHome)
	if err != nil {
		return membership.CreateProfileInput{}, err
	}

	input := membership.CreateProfileInput{
		BirthDate:          birthDate,
		SchoolName:         req.SchoolName,
		SchoolClass:        req.SchoolClass,
		LanguageAtHome:     lang,
		ApproverFirstName:  req.ApproverFirstName,
		ApproverLastName:   req.ApproverLastName,
		ApproverPhone:      req.ApproverPhone,
		ApproverEmail:      req.ApproverEmail,
		PhotoUsageApproved: req.PhotoUsageApproved,
	}
	for _, cp := range req.ContactPersons {
		input.ContactPersons = append(input.ContactPersons, membership.ContactPersonInput{
			FirstName: cp.FirstName,
			LastName:  cp.LastName,
			Phone:     cp.Phone,
			Email:     cp.Email,
		})
	}
	return input, nil
}

type updateProfileRequest struct {
	BirthDate          *string `json:"birth_date"`
	SchoolName         *string `json:"school_name"`
	SchoolClass        *string `json:"school_class"`
	LanguageAtHome     *string `json:"language_at_home"`
	ApproverFirstName  *string `json:"approver_first_name"`
	ApproverLastName   *string `json:"approver_last_name"`
	ApproverPhone      *string `json:"approver_phone"`
	ApproverEmail      *string `json:"approver_email"`
	PhotoUsageApproved *bool   `json:"photo_usage_approved"`

	AddContactPersons    []contactPersonRequest       `json:"add_contact_persons"`
	UpdateContactPersons []contactPersonUpdateRequest `json:"update_contact_persons"`
	RemoveContactPersons []string                     `json:"remove_contact_persons"`

	ResendRequestNotification bool `json:"resend_request_notification"`
}

func (req updateProfileRequest) toUpdate() (membership.ProfileUpdate, error) {
	update := membership.ProfileUpdate{
		SchoolName:                req.SchoolName,
		SchoolClass:               req.SchoolClass,
		ApproverFirstName:         req.ApproverFirstName,
		ApproverLastName:          req.ApproverLastName,
		ApproverPhone:             req.ApproverPhone,
		ApproverEmail:             req.ApproverEmail,
		PhotoUsageApproved:        req.PhotoUsageApproved,
		ResendRequestNotification: req.ResendRequestNotification,
	}
	if req.BirthDate != nil {
		birthDate, err := parseDate(*req.BirthDate)
		if err != nil {
			return membership.ProfileUpdate{}, err
		}
		update.BirthDate = &birthDate
	}
	if req.LanguageAtHome != nil {
		lang, err := membership.ParseLanguage(*req.LanguageAtHome)
		if err != nil {
			return membership.ProfileUpdate{}, err
		}
		update.LanguageAtHome = &lang
	}
	for _, cp := range req.AddContactPersons {
		update.AddContactPersons = append(update.AddContactPersons, membership.ContactPersonInput{
			FirstName: cp.FirstName,
			LastName:  cp.LastName,
			Phone:     cp.Phone,
			Email:     cp.Email,
		})
	}
	for _, cp := range req.UpdateContactPersons {
		id, err := uuid.Parse(cp.ID)
		if err != nil {
			return membership.ProfileUpdate{}, dErrors.New(dErrors.CodeBadRequest, "invalid contact person id")
		}
		update.UpdateContactPersons = append(update.UpdateContactPersons, membership.ContactPersonUpdate{
			ID:        id,
			FirstName: cp.FirstName,
			LastName:  cp.LastName,
			Phone:     cp.Phone,
			Email:     cp.Email,
		})
	}
	for _, raw := range req.RemoveContactPersons {
		id, err := uuid.Parse(raw)
		if err != nil {
			return membership.ProfileUpdate{}, dErrors.New(dErrors.CodeBadRequest, "invalid contact person id")
		}
		update.RemoveContactPersons = append(update.RemoveContactPersons, id)
	}
	return update, nil
}

type cancelProfileRequest struct {
	Expiration *string `json:"expiration"`
}

type contactPersonResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type profileResponse struct {
	ID               string `json:"id"`
	MembershipNumber string `json:"membership_number"`
	BirthDate        string `json:"birth_date"`
	SchoolName       string `json:"school_name"`
	SchoolClass      string `json:"school_class"`
	LanguageAtHome   string `json:"language_at_home"`
	Expiration       string `json:"expiration"`

	MembershipStatus string `json:"membership_status"`
	Renewable        bool   `json:"renewable"`

	ApproverFirstName string `json:"approver_first_name"`
	ApproverLastName  string `json:"approver_last_name"`
	ApproverPhone     string `json:"approver_phone"`
	ApproverEmail     string `json:"approver_email"`

	PhotoUsageApproved *bool `json:"photo_usage_approved"`

	ApprovalNotificationAt *time.Time `json:"approval_notification_at,omitempty"`
	ApprovedAt             *time.Time `json:"approved_at,omitempty"`

	ContactPersons []contactPersonResponse `json:"contact_persons"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toProfileResponse(p membership.Profile, season membership.Season, today time.Time) profileResponse {
	resp := profileResponse{
		ID:                     p.ID.String(),
		MembershipNumber:       p.MembershipNumber,
		BirthDate:              p.BirthDate.Format(dateLayout),
		SchoolName:             p.SchoolName,
		SchoolClass:            p.SchoolClass,
		LanguageAtHome:         p.LanguageAtHome.String(),
		Expiration:             p.Expiration.Format(dateLayout),
		MembershipStatus:       string(season.Status(p, today)),
		Renewable:              season.Renewable(p, today),
		ApproverFirstName:      p.ApproverFirstName,
		ApproverLastName:       p.ApproverLastName,
		ApproverPhone:          p.ApproverPhone,
		ApproverEmail:          p.ApproverEmail,
		PhotoUsageApproved:     p.PhotoUsageApproved,
		ApprovalNotificationAt: p.ApprovalNotificationAt,
		ApprovedAt:             p.ApprovedAt,
		ContactPersons:         []contactPersonResponse{},
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
	for _, cp := range p.ContactPersons {
		resp.ContactPersons = append(resp.ContactPersons, contactPersonResponse{
			ID:        cp.ID.String(),
			FirstName: cp.FirstName,
			LastName:  cp.LastName,
			Phone:     cp.Phone,
			Email:     cp.Email,
		})
	}
	return resp
}

type approvalPreviewResponse struct {
	Profile    profileResponse `json:"profile"`
	YouthName  string          `json:"youth_name"`
	YouthEmail string          `json:"youth_email,omitempty"`
}
