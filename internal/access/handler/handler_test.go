package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"custodia/internal/access"
	"custodia/internal/access/handler/mocks"
	"custodia/internal/catalog"
	jwttoken "custodia/internal/jwt_token"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/access-mocks.go -package=mocks Service
type AccessHandlerSuite struct {
	suite.Suite
}

func TestAccessHandlerSuite(t *testing.T) {
	suite.Run(t, new(AccessHandlerSuite))
}

func newTestHandler(t *testing.T) (*chi.Mux, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := New(mockService, logger)
	r := chi.NewRouter()
	handler.Register(r)
	return r, mockService
}

func asEntity(req *http.Request, id domain.EntityID) *http.Request {
	return testutil.AsActor(req, id.String(), string(jwttoken.SubjectEntity))
}

func asPerson(req *http.Request, id domain.PersonID) *http.Request {
	return testutil.AsActor(req, id.String(), string(jwttoken.SubjectPerson))
}

func sampleRequest(entityID domain.EntityID, personID domain.PersonID) access.Request {
	id := domain.NewRequestID()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return access.Request{
		ID:          id,
		EntityID:    entityID,
		PersonID:    personID,
		Purpose:     "KYC",
		Status:      access.StatusPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(access.GracePeriod),
		Items: []access.Item{{
			ID:         domain.NewItemID(),
			RequestID:  id,
			DocumentID: domain.NewDocumentID(),
		}},
	}
}

func (s *AccessHandlerSuite) TestHandleCreate() {
	router, mockService := newTestHandler(s.T())
	entityID := domain.NewEntityID()
	personID := domain.NewPersonID()
	docID := domain.NewDocumentID()
	created := sampleRequest(entityID, personID)

	mockService.EXPECT().Create(gomock.Any(), access.CreateInput{
		EntityID:    entityID,
		PersonID:    personID,
		Purpose:     "KYC onboarding",
		DocumentIDs: []domain.DocumentID{docID},
	}).Return(created, nil)

	body, err := json.Marshal(CreateRequest{
		PersonID:    personID.String(),
		Purpose:     "KYC onboarding",
		DocumentIDs: []string{docID.String()},
	})
	require.NoError(s.T(), err)

	req := asEntity(httptest.NewRequest(http.MethodPost, "/access-requests", bytes.NewReader(body)), entityID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusCreated, w.Code)
	var resp RequestResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), created.ID.String(), resp.ID)
	assert.Equal(s.T(), "pending", resp.Status)
	require.Len(s.T(), resp.Items, 1)
}

func (s *AccessHandlerSuite) TestHandleCreate_RequiresEntityCaller() {
	router, _ := newTestHandler(s.T())

	body := `{"person_id":"whatever","purpose":"KYC","document_ids":[]}`
	req := asPerson(httptest.NewRequest(http.MethodPost, "/access-requests", strings.NewReader(body)), domain.NewPersonID())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *AccessHandlerSuite) TestHandleCreate_InvalidBody() {
	router, _ := newTestHandler(s.T())
	entityID := domain.NewEntityID()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"person_id":`},
		{"missing purpose", `{"person_id":"` + domain.NewPersonID().String() + `","document_ids":["` + domain.NewDocumentID().String() + `"]}`},
		{"bad document id", `{"person_id":"` + domain.NewPersonID().String() + `","purpose":"KYC","document_ids":["nope"]}`},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			req := asEntity(httptest.NewRequest(http.MethodPost, "/access-requests", strings.NewReader(tc.body)), entityID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(s.T(), http.StatusBadRequest, w.Code)
		})
	}
}

func (s *AccessHandlerSuite) TestHandleDecide() {
	router, mockService := newTestHandler(s.T())
	personID := domain.NewPersonID()
	decided := sampleRequest(domain.NewEntityID(), personID)
	decided.Status = access.StatusApproved

	mockService.EXPECT().Decide(gomock.Any(), access.DecideInput{
		RequestID: decided.ID,
		DeciderID: personID,
		Approve:   true,
		Note:      "fine by me",
	}).Return(decided, nil)

	body := `{"approve":true,"note":"fine by me"}`
	req := asPerson(httptest.NewRequest(http.MethodPost, "/access-requests/"+decided.ID.String()+"/decision", strings.NewReader(body)), personID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp RequestResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(s.T(), "approved", resp.Status)
}

func (s *AccessHandlerSuite) TestHandleDecide_ErrorMapping() {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"gate failure is a validation error", dErrors.New(dErrors.CodeValidation, "document \"Diploma\" is not anchored on the ledger"), http.StatusBadRequest},
		{"already decided", dErrors.New(dErrors.CodeConflict, "access request is already decided"), http.StatusConflict},
		{"expired", dErrors.New(dErrors.CodeExpired, "access request expired before a decision was made"), http.StatusGone},
		{"not owner", dErrors.New(dErrors.CodeUnauthorized, "only the document owner may decide this request"), http.StatusUnauthorized},
	}
	for _, tc := range tests {
		s.Run(tc.name, func() {
			router, mockService := newTestHandler(s.T())
			personID := domain.NewPersonID()
			requestID := domain.NewRequestID()

			mockService.EXPECT().Decide(gomock.Any(), gomock.Any()).Return(access.Request{}, tc.err)

			req := asPerson(httptest.NewRequest(http.MethodPost, "/access-requests/"+requestID.String()+"/decision", strings.NewReader(`{"approve":true}`)), personID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(s.T(), tc.status, w.Code)
			var body map[string]string
			require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(s.T(), body["error_description"], "caller always sees a named reason")
		})
	}
}

func (s *AccessHandlerSuite) TestHandleList() {
	router, mockService := newTestHandler(s.T())
	entityID := domain.NewEntityID()
	requests := []access.Request{sampleRequest(entityID, domain.NewPersonID())}

	mockService.EXPECT().ListByEntity(gomock.Any(), entityID).Return(requests, nil)

	req := asEntity(httptest.NewRequest(http.MethodGet, "/access-requests", nil), entityID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	var resp map[string][]RequestResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(s.T(), resp["requests"], 1)
}

func (s *AccessHandlerSuite) TestHandleList_Unauthenticated() {
	router, _ := newTestHandler(s.T())

	req := httptest.NewRequest(http.MethodGet, "/access-requests", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *AccessHandlerSuite) TestHandleContent() {
	router, mockService := newTestHandler(s.T())
	entityID := domain.NewEntityID()
	requestID := domain.NewRequestID()
	docID := domain.NewDocumentID()

	resource := &access.Resource{
		Document: catalog.Document{ID: docID, Title: "Diploma"},
		File:     catalog.File{Version: 2, SizeBytes: 10},
		Content:  io.NopCloser(strings.NewReader("file-bytes")),
	}
	mockService.EXPECT().LoadApprovedResource(gomock.Any(), access.ResourceInput{
		RequestID:  requestID,
		EntityID:   entityID,
		DocumentID: docID,
	}).Return(resource, nil)

	req := asEntity(httptest.NewRequest(http.MethodGet, "/access-requests/"+requestID.String()+"/documents/"+docID.String()+"/content", nil), entityID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusOK, w.Code)
	assert.Equal(s.T(), "file-bytes", w.Body.String())
	assert.Equal(s.T(), "10", w.Header().Get("Content-Length"))
}

func (s *AccessHandlerSuite) TestHandleContent_RefusedRelease() {
	router, mockService := newTestHandler(s.T())
	entityID := domain.NewEntityID()

	mockService.EXPECT().LoadApprovedResource(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeValidation, "document \"Diploma\" is not anchored on the ledger"))

	req := asEntity(httptest.NewRequest(http.MethodGet, "/access-requests/"+domain.NewRequestID().String()+"/documents/"+domain.NewDocumentID().String()+"/content", nil), entityID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), http.StatusBadRequest, w.Code)
}

// Guards against accidentally widening the service interface the handler
// depends on.
var _ Service = (*access.Service)(nil)
