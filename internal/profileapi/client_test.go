package profileapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "jassari/pkg/domain-errors"
)

type ClientSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

// gqlServer answers every GraphQL POST with the given data payload.
func (s *ClientSuite) gqlServer(data string, capture *graphqlRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		if capture != nil {
			s.Require().NoError(json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + data + `}`))
	}))
}

func (s *ClientSuite) TestFetchMyProfile() {
	var req graphqlRequest
	srv := s.gqlServer(`{"myProfile":{"id":"abc","firstName":"Nuori","lastName":"Nieminen"}}`, &req)
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	identity, err := client.FetchMyProfile(context.Background(), "api-token")
	s.Require().NoError(err)
	s.Equal("abc", identity.ID)
	s.Equal("Nuori Nieminen", identity.DisplayName())
	s.Contains(req.Query, "myProfile")
}

func (s *ClientSuite) TestFetchMyProfileNotFound() {
	srv := s.gqlServer(`{"myProfile":null}`, nil)
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	_, err := client.FetchMyProfile(context.Background(), "api-token")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ClientSuite) TestFetchProfilePassesServiceType() {
	var req graphqlRequest
	srv := s.gqlServer(`{"profile":{"id":"abc"}}`, &req)
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	identity, err := client.FetchProfile(context.Background(), "api-token", "abc")
	s.Require().NoError(err)
	s.Equal("abc", identity.ID)
	s.Equal("YOUTH_MEMBERSHIP", req.Variables["serviceType"])
}

func (s *ClientSuite) TestProfileWithAccessToken() {
	srv := s.gqlServer(`{"profileWithAccessToken":{"id":"abc","firstName":"Nuori","lastName":"Nieminen","primaryEmail":{"email":"nuori@example.com"}}}`, nil)
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	identity, err := client.ProfileWithAccessToken(context.Background(), "access-token")
	s.Require().NoError(err)
	s.Equal("nuori@example.com", identity.PrimaryEmail)
}

func (s *ClientSuite) TestCreateTemporaryAccessToken() {
	srv := s.gqlServer(`{"createMyProfileTemporaryReadAccessToken":{"temporaryReadAccessToken":{"token":"tmp-token","expiresAt":"2020-06-17T12:00:00Z"}}}`, nil)
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	token, err := client.CreateTemporaryAccessToken(context.Background(), "api-token")
	s.Require().NoError(err)
	s.Equal("tmp-token", token.Token)
	s.Equal(2020, token.ExpiresAt.Year())
}

func (s *ClientSuite) TestGraphQLErrorIsUnavailable() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"boom"}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	_, err := client.FetchMyProfile(context.Background(), "api-token")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
}

func (s *ClientSuite) TestServerErrorIsUnavailable() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, "YOUTH_MEMBERSHIP")
	_, err := client.FetchMyProfile(context.Background(), "api-token")
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnavailable))
}
