package e2e

import (
	"github.com/cucumber/godog"

	"custodia/e2e/steps/auth"
	"custodia/e2e/steps/common"
	"custodia/e2e/steps/disclosure"
	"custodia/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from the modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	disclosure.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
