package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "jassari/pkg/domain-errors"
)

type JWTSuite struct {
	suite.Suite
	svc *Service
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTSuite))
}

func (s *JWTSuite) SetupTest() {
	s.svc = New("test-signing-key", "jassari", "jassari")
}

func (s *JWTSuite) TestRoundTrip() {
	token, err := s.svc.GenerateAccessToken("profile-1", true, []string{"gdprquery"}, time.Hour)
	s.Require().NoError(err)

	claims, err := s.svc.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal("profile-1", claims.ProfileID)
	s.True(claims.Staff)
	s.Equal([]string{"gdprquery"}, claims.Scopes)
}

func (s *JWTSuite) TestExpiredToken() {
	token, err := s.svc.GenerateAccessToken("profile-1", false, nil, -time.Minute)
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *JWTSuite) TestWrongKey() {
	other := New("other-key", "jassari", "jassari")
	token, err := other.GenerateAccessToken("profile-1", false, nil, time.Hour)
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(token)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}

func (s *JWTSuite) TestGarbageToken() {
	_, err := s.svc.ValidateToken("not-a-jwt")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}
