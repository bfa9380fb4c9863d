// Package profileapi resolves canonical identity data from the external
// profile service over its GraphQL endpoint. It is a collaborator of the
// membership service: profile IDs are owned by this API, never minted locally.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	dErrors "jassari/pkg/domain-errors"
)

// Identity is the subset of external profile data this service needs.
type Identity struct {
	ID           string
	FirstName    string
	LastName     string
	PrimaryEmail string
}

// DisplayName joins the identity's names for notification templates.
func (i Identity) DisplayName() string {
	if i.FirstName == "" {
		return i.LastName
	}
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// TemporaryToken grants read access to a profile for a limited time.
type TemporaryToken struct {
	Token     string
	ExpiresAt time.Time
}

// Client calls the profile service's GraphQL endpoint with bearer auth.
type Client struct {
	url         string
	serviceType string
	httpClient  *http.Client
}

// New constructs a profile API client. serviceType scopes staff profile
// lookups to this service's registration in the profile system.
func New(url, serviceType string) *Client {
	return &Client{
		url:         url,
		serviceType: serviceType,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

// FetchProfile verifies a profile exists by ID. Requires a staff-level token.
func (c *Client) FetchProfile(ctx context.Context, apiToken, profileID string) (Identity, error) {
	query := `
		query Profile($id: ID!, $serviceType: ServiceType!) {
			profile(id: $id, serviceType: $serviceType) {
				id
			}
		}
	`
	var resp struct {
		Profile *struct {
			ID string `json:"id"`
		} `json:"profile"`
	}
	vars := map[string]any{"id": profileID, "serviceType": c.serviceType}
	if err := c.do(ctx, apiToken, query, vars, &resp); err != nil {
		return Identity{}, err
	}
	if resp.Profile == nil || resp.Profile.ID == "" {
		return Identity{}, dErrors.New(dErrors.CodeNotFound, "profile does not exist")
	}
	return Identity{ID: resp.Profile.ID}, nil
}

// FetchMyProfile resolves the profile of the given token's user.
func (c *Client) FetchMyProfile(ctx context.Context, apiToken string) (Identity, error) {
	query := `
		query MyProfile {
			myProfile {
				id
				firstName
				lastName
			}
		}
	`
	var resp struct {
		MyProfile *identityPayload `json:"myProfile"`
	}
	if err := c.do(ctx, apiToken, query, nil, &resp); err != nil {
		return Identity{}, err
	}
	if resp.MyProfile == nil || resp.MyProfile.ID == "" {
		return Identity{}, dErrors.New(dErrors.CodeNotFound, "profile does not exist")
	}
	return resp.MyProfile.identity(), nil
}

// ProfileWithAccessToken resolves a profile through a temporary read access
// token, the approver's only view into the minor's identity data.
func (c *Client) ProfileWithAccessToken(ctx context.Context, accessToken string) (Identity, error) {
	query := `
		query ProfileWithAccessToken($token: UUID!) {
			profileWithAccessToken(token: $token) {
				id
				firstName
				lastName
				primaryEmail {
					email
				}
			}
		}
	`
	var resp struct {
		ProfileWithAccessToken *identityPayload `json:"profileWithAccessToken"`
	}
	if err := c.do(ctx, "", query, map[string]any{"token": accessToken}, &resp); err != nil {
		return Identity{}, err
	}
	if resp.ProfileWithAccessToken == nil || resp.ProfileWithAccessToken.ID == "" {
		return Identity{}, dErrors.New(dErrors.CodeNotFound, "profile does not exist")
	}
	return resp.ProfileWithAccessToken.identity(), nil
}

// CreateTemporaryAccessToken mints a temporary read token for the user of the
// given API token.
func (c *Client) CreateTemporaryAccessToken(ctx context.Context, apiToken string) (TemporaryToken, error) {
	query := `
		mutation CreateToken {
			createMyProfileTemporaryReadAccessToken(input: {}) {
				temporaryReadAccessToken {
					token
					expiresAt
				}
			}
		}
	`
	var resp struct {
		CreateMyProfileTemporaryReadAccessToken *struct {
			TemporaryReadAccessToken *struct {
				Token     string    `json:"token"`
				ExpiresAt time.Time `json:"expiresAt"`
			} `json:"temporaryReadAccessToken"`
		} `json:"createMyProfileTemporaryReadAccessToken"`
	}
	if err := c.do(ctx, apiToken, query, nil, &resp); err != nil {
		return TemporaryToken{}, err
	}
	payload := resp.CreateMyProfileTemporaryReadAccessToken
	if payload == nil || payload.TemporaryReadAccessToken == nil || payload.TemporaryReadAccessToken.Token == "" {
		return TemporaryToken{}, dErrors.New(dErrors.CodeUnavailable, "profile API returned no access token")
	}
	return TemporaryToken{
		Token:     payload.TemporaryReadAccessToken.Token,
		ExpiresAt: payload.TemporaryReadAccessToken.ExpiresAt,
	}, nil
}

type identityPayload struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PrimaryEmail *struct {
		Email string `json:"email"`
	} `json:"primaryEmail"`
}

func (p identityPayload) identity() Identity {
	out := Identity{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
	if p.PrimaryEmail != nil {
		out.PrimaryEmail = p.PrimaryEmail.Email
	}
	return out
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, apiToken, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal profile API request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build profile API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "profile API call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("profile API returned status %d", resp.StatusCode))
	}

	var gqlResp graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "invalid profile API response")
	}
	if len(gqlResp.Errors) > 0 {
		return dErrors.New(dErrors.CodeUnavailable, "profile API error: "+gqlResp.Errors[0].Message)
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "invalid profile API payload")
	}
	return nil
}
