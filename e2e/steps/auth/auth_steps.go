package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext defines the methods the auth steps need from the main context.
type TestContext interface {
	POST(path string, body any) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	SetAccessToken(token string)
}

// RegisterSteps registers token issuance step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I authenticate as entity "([^"]*)" with secret "([^"]*)"$`, steps.authenticateAsEntity)
	ctx.Step(`^I authenticate as person "([^"]*)" "([^"]*)" with secret "([^"]*)"$`, steps.authenticateAsPerson)
	ctx.Step(`^I request a token with grant_type "([^"]*)"$`, steps.requestTokenWithGrantType)
	ctx.Step(`^I save the access token$`, steps.saveAccessToken)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) authenticateAsEntity(ctx context.Context, clientID, secret string) error {
	if err := s.tc.POST("/auth/token", map[string]any{
		"grant_type":    "client_credentials",
		"client_id":     clientID,
		"client_secret": secret,
	}); err != nil {
		return err
	}
	return s.saveAccessToken(ctx)
}

func (s *authSteps) authenticateAsPerson(ctx context.Context, kind, number, secret string) error {
	if err := s.tc.POST("/auth/token", map[string]any{
		"grant_type":      "person_credentials",
		"identity_kind":   kind,
		"identity_number": number,
		"secret":          secret,
	}); err != nil {
		return err
	}
	return s.saveAccessToken(ctx)
}

func (s *authSteps) requestTokenWithGrantType(ctx context.Context, grantType string) error {
	return s.tc.POST("/auth/token", map[string]any{"grant_type": grantType})
}

func (s *authSteps) saveAccessToken(ctx context.Context) error {
	if s.tc.GetLastResponseStatus() != 200 {
		return fmt.Errorf("token request failed with status %d", s.tc.GetLastResponseStatus())
	}
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return err
	}
	value, ok := token.(string)
	if !ok || value == "" {
		return fmt.Errorf("access_token missing from response")
	}
	s.tc.SetAccessToken(value)
	return nil
}
