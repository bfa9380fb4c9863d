package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"jassari/internal/accesstoken"
	"jassari/internal/audit"
	"jassari/internal/jwttoken"
	"jassari/internal/membership/service"
	"jassari/internal/membership/store/profiles"
	"jassari/internal/notification"
	"jassari/internal/platform/metrics"
	"jassari/internal/profileapi"
	httptransport "jassari/internal/transport/http"
)

// fakeIdentity is a canned identity-service client.
type fakeIdentity struct {
	id             string
	email          string
	tokenExpiresAt time.Time
}

func (f *fakeIdentity) FetchProfile(ctx context.Context, apiToken, profileID string) (profileapi.Identity, error) {
	return profileapi.Identity{ID: profileID, FirstName: "Nuori", LastName: "Nieminen"}, nil
}

func (f *fakeIdentity) FetchMyProfile(ctx context.Context, apiToken string) (profileapi.Identity, error) {
	return profileapi.Identity{ID: f.id, FirstName: "Nuori", LastName: "Nieminen", PrimaryEmail: f.email}, nil
}

func (f *fakeIdentity) ProfileWithAccessToken(ctx context.Context, accessToken string) (profileapi.Identity, error) {
	return profileapi.Identity{ID: f.id, FirstName: "Nuori", LastName: "Nieminen", PrimaryEmail: f.email}, nil
}

func (f *fakeIdentity) CreateTemporaryAccessToken(ctx context.Context, apiToken string) (profileapi.TemporaryToken, error) {
	return profileapi.TemporaryToken{Token: uuid.NewString(), ExpiresAt: f.tokenExpiresAt}, nil
}

type HandlerSuite struct {
	suite.Suite

	metrics  *metrics.Metrics
	identity *fakeIdentity
	sender   *notification.MemorySender
	svc      *service.Service
	jwt      *jwttoken.Service
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupSuite() {
	// Prometheus collectors register globally, so build them once.
	s.metrics = metrics.New()
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	s.identity = &fakeIdentity{
		id:             uuid.NewString(),
		email:          "nuori@example.com",
		tokenExpiresAt: time.Now().Add(48 * time.Hour),
	}
	s.sender = notification.NewMemorySender()

	svc, err := service.New(
		profiles.NewInMemory(6),
		s.identity,
		s.sender,
		accesstoken.NewMemory(),
		audit.NewService(logger),
	)
	s.Require().NoError(err)
	s.svc = svc

	s.jwt = jwttoken.New("test-signing-key", "jassari", "jassari")
	s.router = httptransport.NewRouter(nil, New(svc, logger, s.metrics, s.jwt))
}

func (s *HandlerSuite) token(profileID string, staff bool) string {
	token, err := s.jwt.GenerateAccessToken(profileID, staff, nil, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *HandlerSuite) request(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(out))
}

func (s *HandlerSuite) minorBody() map[string]any {
	return map[string]any{
		"birth_date":          time.Now().AddDate(-14, 0, 0).Format("2006-01-02"),
		"school_name":         "Kallion ala-aste",
		"approver_first_name": "Huoltaja",
		"approver_email":      "huoltaja@example.com",
	}
}

func (s *HandlerSuite) TestCreateOwnProfileRequiresAuth() {
	rec := s.request(http.MethodPost, "/v1/profiles/me", "", s.minorBody())
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestCreateOwnProfile() {
	rec := s.request(http.MethodPost, "/v1/profiles/me", s.token(s.identity.id, false), s.minorBody())
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp profileResponse
	s.decode(rec, &resp)
	s.Equal(s.identity.id, resp.ID)
	s.Equal("000001", resp.MembershipNumber)
	s.Equal("pending", resp.MembershipStatus)
	s.False(resp.Renewable)
	s.Len(s.sender.Sent(), 1)
}

func (s *HandlerSuite) TestCreateOwnProfileBadDate() {
	body := s.minorBody()
	body["birth_date"] = "01.01.2012"
	rec := s.request(http.MethodPost, "/v1/profiles/me", s.token(s.identity.id, false), body)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestGetOwnProfile() {
	token := s.token(s.identity.id, false)
	rec := s.request(http.MethodPost, "/v1/profiles/me", token, s.minorBody())
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.request(http.MethodGet, "/v1/profiles/me", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp profileResponse
	s.decode(rec, &resp)
	s.Equal(s.identity.id, resp.ID)
}

func (s *HandlerSuite) TestGetOwnProfileNotFound() {
	rec := s.request(http.MethodGet, "/v1/profiles/me", s.token(uuid.NewString(), false), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestStaffRoutesRejectNonStaff() {
	rec := s.request(http.MethodGet, "/v1/profiles/"+uuid.NewString(), s.token(s.identity.id, false), nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestStaffCreate() {
	body := s.minorBody()
	body["profile_id"] = uuid.NewString()
	delete(body, "approver_email")

	rec := s.request(http.MethodPost, "/v1/profiles", s.token(uuid.NewString(), true), body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp profileResponse
	s.decode(rec, &resp)
	s.Equal(body["profile_id"], resp.ID)
	s.NotNil(resp.ApprovedAt)
	s.Equal("active", resp.MembershipStatus)
}

func (s *HandlerSuite) TestRenewImmediatelyAfterCreateFails() {
	token := s.token(s.identity.id, false)
	rec := s.request(http.MethodPost, "/v1/profiles/me", token, s.minorBody())
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.request(http.MethodPost, "/v1/profiles/me/renew", token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	s.decode(rec, &resp)
	s.Equal("cannot_renew", resp.Error)
}

func (s *HandlerSuite) TestApprovalFlow() {
	token := s.token(s.identity.id, false)
	rec := s.request(http.MethodPost, "/v1/profiles/me", token, s.minorBody())
	s.Require().Equal(http.StatusCreated, rec.Code)

	s.Require().Len(s.sender.Sent(), 1)
	approvalToken := s.sender.Sent()[0].Context["approval_token"]
	s.Require().NotEmpty(approvalToken)

	rec = s.request(http.MethodGet, "/v1/profiles/approval/"+approvalToken, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var preview approvalPreviewResponse
	s.decode(rec, &preview)
	s.Equal("Nuori Nieminen", preview.YouthName)
	s.Equal("pending", preview.Profile.MembershipStatus)

	rec = s.request(http.MethodPost, "/v1/profiles/approve/"+approvalToken, "", map[string]any{
		"approver_phone": "+358401234567",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var approved profileResponse
	s.decode(rec, &approved)
	s.Equal("active", approved.MembershipStatus)
	s.NotNil(approved.ApprovedAt)
	s.Equal("+358401234567", approved.ApproverPhone)

	// Consumed tokens stop working.
	rec = s.request(http.MethodPost, "/v1/profiles/approve/"+approvalToken, "", nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestCancelOwnProfile() {
	token := s.token(s.identity.id, false)
	rec := s.request(http.MethodPost, "/v1/profiles/me", token, s.minorBody())
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.request(http.MethodPost, "/v1/profiles/me/cancel", token, map[string]any{
		"expiration": "2030-06-01",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp profileResponse
	s.decode(rec, &resp)
	s.Equal("2030-06-01", resp.Expiration)
}
