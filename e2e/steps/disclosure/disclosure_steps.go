package disclosure

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext defines the methods the disclosure steps need from the main
// context.
type TestContext interface {
	POST(path string, body any) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetRequestID() string
	SetRequestID(id string)
}

// RegisterSteps registers disclosure workflow step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &disclosureSteps{tc: tc}

	ctx.Step(`^I request documents "([^"]*)" of person "([^"]*)" for purpose "([^"]*)"$`, steps.requestDocuments)
	ctx.Step(`^I save the access request ID$`, steps.saveRequestID)
	ctx.Step(`^I approve the access request$`, steps.approveRequest)
	ctx.Step(`^I approve the access request with note "([^"]*)"$`, steps.approveRequestWithNote)
	ctx.Step(`^I reject the access request$`, steps.rejectRequest)
	ctx.Step(`^I fetch the access request$`, steps.fetchRequest)
	ctx.Step(`^I list my access requests$`, steps.listRequests)
	ctx.Step(`^I download document "([^"]*)" of the access request$`, steps.downloadDocument)
	ctx.Step(`^the downloaded content should not be empty$`, steps.downloadedContentNotEmpty)
}

type disclosureSteps struct {
	tc TestContext
}

func (s *disclosureSteps) requestDocuments(ctx context.Context, documentIDs, personID, purpose string) error {
	return s.tc.POST("/access-requests", map[string]any{
		"person_id":    personID,
		"purpose":      purpose,
		"document_ids": strings.Split(documentIDs, ","),
	})
}

func (s *disclosureSteps) saveRequestID(ctx context.Context) error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	value, ok := id.(string)
	if !ok || value == "" {
		return fmt.Errorf("access request ID missing from response")
	}
	s.tc.SetRequestID(value)
	return nil
}

func (s *disclosureSteps) approveRequest(ctx context.Context) error {
	return s.decide(true, "")
}

func (s *disclosureSteps) approveRequestWithNote(ctx context.Context, note string) error {
	return s.decide(true, note)
}

func (s *disclosureSteps) rejectRequest(ctx context.Context) error {
	return s.decide(false, "")
}

func (s *disclosureSteps) decide(approve bool, note string) error {
	body := map[string]any{"approve": approve}
	if note != "" {
		body["note"] = note
	}
	return s.tc.POST("/access-requests/"+s.tc.GetRequestID()+"/decision", body)
}

func (s *disclosureSteps) fetchRequest(ctx context.Context) error {
	return s.tc.GET("/access-requests/"+s.tc.GetRequestID(), nil)
}

func (s *disclosureSteps) listRequests(ctx context.Context) error {
	return s.tc.GET("/access-requests", nil)
}

func (s *disclosureSteps) downloadDocument(ctx context.Context, documentID string) error {
	return s.tc.GET("/access-requests/"+s.tc.GetRequestID()+"/documents/"+documentID+"/content", nil)
}

func (s *disclosureSteps) downloadedContentNotEmpty(ctx context.Context) error {
	if len(s.tc.GetLastResponseBody()) == 0 {
		return fmt.Errorf("expected document bytes, got empty body")
	}
	return nil
}
