// Package identity verifies externally managed sessions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"knowledge-base-api/models"

	kratos "github.com/ory/kratos-client-go"
)

var (
	ErrMissingCredentials  = errors.New("session token or cookie required")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// ExternalIdentity is the subset of a verified session used for sync.
type ExternalIdentity struct {
	ID       string
	Email    string
	Username string
}

// Verifier resolves the caller's session to an external identity.
type Verifier interface {
	Verify(ctx context.Context, sessionToken, cookie string) (*ExternalIdentity, error)
}

// KratosVerifier checks sessions against the Ory Kratos public API.
type KratosVerifier struct {
	client  *kratos.APIClient
	timeout time.Duration
}

func NewKratosVerifier(publicURL string, timeout time.Duration) *KratosVerifier {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: strings.TrimRight(publicURL, "/")},
	}
	configuration.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &KratosVerifier{
		client:  kratos.NewAPIClient(configuration),
		timeout: timeout,
	}
}

func (v *KratosVerifier) Verify(ctx context.Context, sessionToken, cookie string) (*ExternalIdentity, error) {
	if sessionToken == "" && cookie == "" {
		return nil, models.ErrorUnauthorized{Message: ErrMissingCredentials.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req := v.client.FrontendAPI.ToSession(ctx)
	if sessionToken != "" {
		req = req.XSessionToken(sessionToken)
	}
	if cookie != "" {
		req = req.Cookie(cookie)
	}

	session, resp, err := req.Execute()
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, models.ErrorUnauthorized{Message: "invalid or expired session"}
			}
			return nil, fmt.Errorf("%w: kratos returned status %d", ErrProviderUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	if session.Active != nil && !*session.Active {
		return nil, models.ErrorUnauthorized{Message: "session is not active"}
	}
	if session.Identity == nil {
		return nil, models.ErrorUnauthorized{Message: "session has no identity"}
	}

	ident := &ExternalIdentity{ID: session.Identity.Id}
	if traits, ok := session.Identity.Traits.(map[string]interface{}); ok {
		ident.Email = stringTrait(traits, "email")
		ident.Username = stringTrait(traits, "username")
	}
	if ident.Email == "" {
		return nil, models.ErrorUnauthorized{Message: "identity has no email trait"}
	}
	return ident, nil
}

func stringTrait(traits map[string]interface{}, key string) string {
	if v, ok := traits[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
