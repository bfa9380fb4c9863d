package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SeasonSuite struct {
	suite.Suite
	season Season
}

func TestSeasonSuite(t *testing.T) {
	suite.Run(t, new(SeasonSuite))
}

func (s *SeasonSuite) SetupTest() {
	s.season = DefaultSeason()
}

func (s *SeasonSuite) TestCalculateExpiration() {
	s.Run("signup before full season start expires at current season end", func() {
		exp := s.season.CalculateExpiration(Date(2020, time.April, 30))
		s.Equal(Date(2020, time.August, 31), exp)
	})

	s.Run("signup on full season start expires at next season end", func() {
		exp := s.season.CalculateExpiration(Date(2020, time.May, 1))
		s.Equal(Date(2021, time.August, 31), exp)
	})

	s.Run("signup on season end day expires at next season end", func() {
		exp := s.season.CalculateExpiration(Date(2020, time.August, 31))
		s.Equal(Date(2021, time.August, 31), exp)
	})

	s.Run("signup at year end expires at next season end", func() {
		exp := s.season.CalculateExpiration(Date(2020, time.December, 31))
		s.Equal(Date(2021, time.August, 31), exp)
	})

	s.Run("signup in january expires at the coming season end", func() {
		exp := s.season.CalculateExpiration(Date(2021, time.January, 15))
		s.Equal(Date(2021, time.August, 31), exp)
	})
}

func (s *SeasonSuite) TestAge() {
	s.Run("birthday not yet reached this year", func() {
		s.Equal(12, Age(Date(2007, time.September, 1), Date(2020, time.August, 31)))
	})

	s.Run("birthday is today", func() {
		s.Equal(13, Age(Date(2007, time.August, 31), Date(2020, time.August, 31)))
	})

	s.Run("birthday already passed this year", func() {
		s.Equal(13, Age(Date(2007, time.January, 1), Date(2020, time.August, 31)))
	})
}

func (s *SeasonSuite) TestDateOf() {
	ts := time.Date(2020, time.June, 15, 23, 59, 59, 0, time.UTC)
	s.Equal(Date(2020, time.June, 15), DateOf(ts))
}
