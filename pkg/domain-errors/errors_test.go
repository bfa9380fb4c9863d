package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorsSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsSuite))
}

func (s *ErrorsSuite) TestCodeOf() {
	s.Equal(CodeNotFound, CodeOf(New(CodeNotFound, "missing")))
	s.Equal(CodeInternal, CodeOf(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(CodeCannotRenew, "nope"))
	s.Equal(CodeCannotRenew, CodeOf(wrapped))
	s.True(Is(wrapped, CodeCannotRenew))
}

func (s *ErrorsSuite) TestWrapPreservesCause() {
	cause := errors.New("db down")
	err := Wrap(cause, CodeUnavailable, "storage failure")
	s.True(errors.Is(err, cause))
	s.Contains(err.Error(), "storage failure")
	s.Contains(err.Error(), "db down")
}

func (s *ErrorsSuite) TestToHTTPStatus() {
	cases := map[Code]int{
		CodeBadRequest:     http.StatusBadRequest,
		CodeAgeRestriction: http.StatusBadRequest,
		CodeCannotRenew:    http.StatusBadRequest,
		CodeUnauthorized:   http.StatusUnauthorized,
		CodeForbidden:      http.StatusForbidden,
		CodeTokenExpired:   http.StatusForbidden,
		CodeNotFound:       http.StatusNotFound,
		CodeConflict:       http.StatusConflict,
		CodeTimeout:        http.StatusGatewayTimeout,
		CodeUnavailable:    http.StatusServiceUnavailable,
		CodeInternal:       http.StatusInternalServerError,
	}
	for code, status := range cases {
		s.Equal(status, ToHTTPStatus(New(code, "x")), string(code))
	}
	s.Equal(http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
}
