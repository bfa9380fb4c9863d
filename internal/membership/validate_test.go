package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "jassari/pkg/domain-errors"
)

type ValidateSuite struct {
	suite.Suite
	today time.Time
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) SetupTest() {
	s.today = Date(2020, time.August, 31)
}

func boolPtr(v bool) *bool {
	return &v
}

func (s *ValidateSuite) TestValidateCreation() {
	s.Run("under 13 is rejected even for staff", func() {
		input := CreateProfileInput{BirthDate: Date(2008, time.September, 1)}
		err := ValidateCreation(input, s.today, true)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeAgeRestriction))
	})

	s.Run("one day short of 13 is rejected", func() {
		input := CreateProfileInput{
			BirthDate:     Date(2007, time.September, 1),
			ApproverEmail: "guardian@example.com",
		}
		err := ValidateCreation(input, s.today, false)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeAgeRestriction))
	})

	s.Run("13 on the boundary day passes", func() {
		input := CreateProfileInput{
			BirthDate:     Date(2007, time.August, 31),
			ApproverEmail: "guardian@example.com",
		}
		s.NoError(ValidateCreation(input, s.today, false))
	})

	s.Run("minor without approver email is rejected", func() {
		input := CreateProfileInput{BirthDate: Date(2005, time.January, 1)}
		err := ValidateCreation(input, s.today, false)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeAgeRestriction))
	})

	s.Run("staff bypasses the approver email gate", func() {
		input := CreateProfileInput{BirthDate: Date(2005, time.January, 1)}
		s.NoError(ValidateCreation(input, s.today, true))
	})

	s.Run("adult without approver email passes", func() {
		input := CreateProfileInput{BirthDate: Date(2000, time.January, 1)}
		s.NoError(ValidateCreation(input, s.today, false))
	})

	s.Run("under 15 cannot set photo usage", func() {
		input := CreateProfileInput{
			BirthDate:          Date(2006, time.September, 1),
			ApproverEmail:      "guardian@example.com",
			PhotoUsageApproved: boolPtr(true),
		}
		err := ValidateCreation(input, s.today, false)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeAgeRestriction))
	})

	s.Run("15 and over can set photo usage", func() {
		input := CreateProfileInput{
			BirthDate:          Date(2005, time.August, 31),
			ApproverEmail:      "guardian@example.com",
			PhotoUsageApproved: boolPtr(true),
		}
		s.NoError(ValidateCreation(input, s.today, false))
	})
}

func (s *ValidateSuite) TestValidatePhotoUsageUpdate() {
	s.Run("no photo usage change passes regardless of age", func() {
		update := ProfileUpdate{}
		s.NoError(ValidatePhotoUsageUpdate(update, Date(2008, time.January, 1), s.today))
	})

	s.Run("stored birth date under 15 is rejected", func() {
		update := ProfileUpdate{PhotoUsageApproved: boolPtr(true)}
		err := ValidatePhotoUsageUpdate(update, Date(2006, time.September, 1), s.today)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeAgeRestriction))
	})

	s.Run("updated birth date is authoritative", func() {
		newBirth := Date(2006, time.September, 1)
		update := ProfileUpdate{
			PhotoUsageApproved: boolPtr(true),
			BirthDate:          &newBirth,
		}
		err := ValidatePhotoUsageUpdate(update, Date(2004, time.January, 1), s.today)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeAgeRestriction))
	})
}
