package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext defines the methods the rate limit steps need from the main
// context.
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
}

// RegisterSteps registers rate-limiting step definitions. The suite assumes
// the target server runs with a low request budget so a modest burst trips it.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I send (\d+) requests to "([^"]*)"$`, steps.sendNRequests)
	ctx.Step(`^at least one response should be rate limited$`, steps.atLeastOneRateLimited)
	ctx.Step(`^the last response should be rate limited$`, steps.lastResponseRateLimited)
}

type ratelimitSteps struct {
	tc          TestContext
	sawLimited  bool
	requestsRun int
}

func (s *ratelimitSteps) sendNRequests(ctx context.Context, count int, path string) error {
	s.sawLimited = false
	s.requestsRun = count
	for i := 0; i < count; i++ {
		if err := s.tc.GET(path, nil); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			s.sawLimited = true
		}
	}
	return nil
}

func (s *ratelimitSteps) atLeastOneRateLimited(ctx context.Context) error {
	if !s.sawLimited {
		return fmt.Errorf("none of the %d requests were rate limited", s.requestsRun)
	}
	return nil
}

func (s *ratelimitSteps) lastResponseRateLimited(ctx context.Context) error {
	if got := s.tc.GetLastResponseStatus(); got != 429 {
		return fmt.Errorf("expected status 429, got %d", got)
	}
	return nil
}
