package access

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/audit"
	"custodia/internal/catalog"
	"custodia/internal/directory"
	"custodia/internal/ledger"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/requestcontext"
)

// fakeSyncer records calls and returns a scripted error.
type fakeSyncer struct {
	calls int
	err   error
}

func (f *fakeSyncer) Sync(context.Context, domain.IdentityKind, string) error {
	f.calls++
	return f.err
}

// fakeLister returns a scripted ledger view per call, repeating the last one.
type fakeLister struct {
	calls int
	views [][]ledger.Document
	err   error
}

func (f *fakeLister) ListDocuments(context.Context, domain.IdentityKind, string) ([]ledger.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.views) == 0 {
		return nil, nil
	}
	idx := f.calls - 1
	if idx >= len(f.views) {
		idx = len(f.views) - 1
	}
	return f.views[idx], nil
}

// fakeLoader serves fixed content for any stored path.
type fakeLoader struct {
	content string
	opened  []string
}

func (f *fakeLoader) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	f.opened = append(f.opened, storedPath)
	return io.NopCloser(strings.NewReader(f.content)), nil
}

type fixture struct {
	service   *Service
	store     *InMemoryStore
	directory *directory.InMemoryStore
	catalog   *catalog.InMemoryStore
	syncer    *fakeSyncer
	lister    *fakeLister
	loader    *fakeLoader
	audit     *audit.InMemoryStore

	entity directory.Entity
	person directory.Person
	doc    catalog.Document
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store:     NewInMemoryStore(),
		directory: directory.NewInMemoryStore(),
		catalog:   catalog.NewInMemoryStore(),
		syncer:    &fakeSyncer{},
		lister:    &fakeLister{},
		loader:    &fakeLoader{content: "file-bytes"},
		audit:     audit.NewInMemoryStore(100),
	}

	f.entity = directory.Entity{ID: domain.NewEntityID(), Name: "Acme Bank", ClientID: "acme"}
	f.person = directory.Person{
		ID:             domain.NewPersonID(),
		FullName:       "Juan Diaz",
		IdentityKind:   domain.IdentityKindNationalID,
		IdentityNumber: "1019455565",
	}
	require.NoError(t, f.directory.SaveEntity(ctx, f.entity))
	require.NoError(t, f.directory.SavePerson(ctx, f.person))

	f.doc = catalog.Document{
		ID:           domain.NewDocumentID(),
		PersonID:     f.person.ID,
		Title:        "Diploma",
		ReviewStatus: catalog.ReviewApproved,
		Files: []catalog.File{{
			ID:         domain.NewFileID(),
			Version:    1,
			StoredPath: "juan/diploma.pdf",
		}},
	}
	require.NoError(t, f.catalog.Save(ctx, f.doc))

	logger := slog.New(slog.DiscardHandler)
	f.service = NewService(
		f.store, f.directory, f.catalog, f.syncer, f.lister, f.loader,
		audit.NewPublisher(f.audit, logger), logger, nil,
	)
	return f
}

// anchored returns a ledger view carrying the fixture document.
func (f *fixture) anchored() []ledger.Document {
	return []ledger.Document{{
		DocID:    "D1",
		Title:    "something else entirely",
		FilePath: "/abs/root/juan/diploma.pdf",
	}}
}

func (f *fixture) createRequest(t *testing.T, ctx context.Context, docIDs ...domain.DocumentID) Request {
	t.Helper()
	if len(docIDs) == 0 {
		docIDs = []domain.DocumentID{f.doc.ID}
	}
	request, err := f.service.Create(ctx, CreateInput{
		EntityID:    f.entity.ID,
		PersonID:    f.person.ID,
		Purpose:     "KYC",
		DocumentIDs: docIDs,
	})
	require.NoError(t, err)
	return request
}

func (f *fixture) auditKinds(t *testing.T) []audit.Kind {
	t.Helper()
	events, err := f.audit.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	kinds := make([]audit.Kind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestService_Create(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("happy path sets pending with grace window", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, ctx)

		assert.Equal(t, StatusPending, request.Status)
		assert.Equal(t, now, request.RequestedAt)
		assert.Equal(t, now.Add(15*24*time.Hour), request.ExpiresAt)
		require.Len(t, request.Items, 1)
		assert.Equal(t, f.doc.ID, request.Items[0].DocumentID)
		assert.Contains(t, f.auditKinds(t), audit.KindRequestCreated)

		stored, err := f.store.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, request.ID, stored.ID)
	})

	t.Run("all items share one requestedAt", func(t *testing.T) {
		f := newFixture(t)
		second := catalog.Document{
			ID:           domain.NewDocumentID(),
			PersonID:     f.person.ID,
			Title:        "Tax Return",
			ReviewStatus: catalog.ReviewApproved,
			Files:        []catalog.File{{ID: domain.NewFileID(), Version: 1, StoredPath: "juan/tax.pdf"}},
		}
		require.NoError(t, f.catalog.Save(ctx, second))

		request := f.createRequest(t, ctx, f.doc.ID, second.ID)
		require.Len(t, request.Items, 2)
		assert.Equal(t, now, request.RequestedAt)
	})

	t.Run("input validation", func(t *testing.T) {
		f := newFixture(t)
		tests := []struct {
			name string
			in   CreateInput
		}{
			{"missing entity", CreateInput{PersonID: f.person.ID, Purpose: "KYC", DocumentIDs: []domain.DocumentID{f.doc.ID}}},
			{"missing person", CreateInput{EntityID: f.entity.ID, Purpose: "KYC", DocumentIDs: []domain.DocumentID{f.doc.ID}}},
			{"blank purpose", CreateInput{EntityID: f.entity.ID, PersonID: f.person.ID, Purpose: "   ", DocumentIDs: []domain.DocumentID{f.doc.ID}}},
			{"purpose too long", CreateInput{EntityID: f.entity.ID, PersonID: f.person.ID, Purpose: strings.Repeat("x", PurposeMaxLen+1), DocumentIDs: []domain.DocumentID{f.doc.ID}}},
			{"no documents", CreateInput{EntityID: f.entity.ID, PersonID: f.person.ID, Purpose: "KYC"}},
			{"duplicate documents", CreateInput{EntityID: f.entity.ID, PersonID: f.person.ID, Purpose: "KYC", DocumentIDs: []domain.DocumentID{f.doc.ID, f.doc.ID}}},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := f.service.Create(ctx, tc.in)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "want validation error, got %v", err)
			})
		}
	})

	t.Run("purpose length counts characters, not bytes", func(t *testing.T) {
		f := newFixture(t)
		request, err := f.service.Create(ctx, CreateInput{
			EntityID:    f.entity.ID,
			PersonID:    f.person.ID,
			Purpose:     strings.Repeat("á", PurposeMaxLen),
			DocumentIDs: []domain.DocumentID{f.doc.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, request.Status)

		_, err = f.service.Create(ctx, CreateInput{
			EntityID:    f.entity.ID,
			PersonID:    f.person.ID,
			Purpose:     strings.Repeat("á", PurposeMaxLen+1),
			DocumentIDs: []domain.DocumentID{f.doc.ID},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("unknown parties are validation errors", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, CreateInput{
			EntityID:    domain.NewEntityID(),
			PersonID:    f.person.ID,
			Purpose:     "KYC",
			DocumentIDs: []domain.DocumentID{f.doc.ID},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = f.service.Create(ctx, CreateInput{
			EntityID:    f.entity.ID,
			PersonID:    domain.NewPersonID(),
			Purpose:     "KYC",
			DocumentIDs: []domain.DocumentID{f.doc.ID},
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("document ownership and review state are enforced", func(t *testing.T) {
		f := newFixture(t)
		stranger := directory.Person{ID: domain.NewPersonID(), FullName: "Other", IdentityKind: domain.IdentityKindNationalID, IdentityNumber: "99"}
		require.NoError(t, f.directory.SavePerson(ctx, stranger))

		foreign := catalog.Document{ID: domain.NewDocumentID(), PersonID: stranger.ID, Title: "Foreign", ReviewStatus: catalog.ReviewApproved}
		unreviewed := catalog.Document{ID: domain.NewDocumentID(), PersonID: f.person.ID, Title: "Draft", ReviewStatus: catalog.ReviewPending}
		require.NoError(t, f.catalog.Save(ctx, foreign))
		require.NoError(t, f.catalog.Save(ctx, unreviewed))

		for _, docID := range []domain.DocumentID{domain.NewDocumentID(), foreign.ID, unreviewed.ID} {
			_, err := f.service.Create(ctx, CreateInput{
				EntityID:    f.entity.ID,
				PersonID:    f.person.ID,
				Purpose:     "KYC",
				DocumentIDs: []domain.DocumentID{docID},
			})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})

	t.Run("nothing persisted when one of several documents is invalid", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Create(ctx, CreateInput{
			EntityID:    f.entity.ID,
			PersonID:    f.person.ID,
			Purpose:     "KYC",
			DocumentIDs: []domain.DocumentID{f.doc.ID, domain.NewDocumentID()},
		})
		require.Error(t, err)

		requests, err := f.store.ListByEntity(ctx, f.entity.ID)
		require.NoError(t, err)
		assert.Empty(t, requests)
	})
}

func TestService_Decide_Approve(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("approval commits after sync and match", func(t *testing.T) {
		f := newFixture(t)
		f.lister.views = [][]ledger.Document{f.anchored()}
		request := f.createRequest(t, ctx)

		decided, err := f.service.Decide(ctx, DecideInput{
			RequestID: request.ID,
			DeciderID: f.person.ID,
			Approve:   true,
			Note:      "  ok to share  ",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, decided.Status)
		require.NotNil(t, decided.DecidedAt)
		assert.Equal(t, now, *decided.DecidedAt)
		assert.Equal(t, "ok to share", decided.Note)
		assert.Equal(t, 1, f.syncer.calls, "sync runs exactly once")
		assert.Equal(t, 1, f.lister.calls, "ledger queried exactly once per decision")
		assert.Contains(t, f.auditKinds(t), audit.KindRequestDecided)
	})

	t.Run("sync failure blocks approval and stays pending", func(t *testing.T) {
		f := newFixture(t)
		f.syncer.err = dErrors.New(dErrors.CodeExternalTool, "wallet not enrolled")
		request := f.createRequest(t, ctx)

		_, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: true})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "wallet not enrolled", "tool reason surfaces to the caller")
		assert.Equal(t, 0, f.lister.calls, "sync failure short-circuits the query")

		stored, err := f.store.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Contains(t, f.auditKinds(t), audit.KindLedgerGateFailed)
	})

	t.Run("one unmatched item of three blocks the whole approval", func(t *testing.T) {
		f := newFixture(t)
		ids := []domain.DocumentID{f.doc.ID}
		titles := []string{"Payroll", "Lease"}
		view := f.anchored()
		for i, title := range titles {
			doc := catalog.Document{
				ID:           domain.NewDocumentID(),
				PersonID:     f.person.ID,
				Title:        title,
				ReviewStatus: catalog.ReviewApproved,
				Files:        []catalog.File{{ID: domain.NewFileID(), Version: 1, StoredPath: "juan/extra.pdf"}},
			}
			require.NoError(t, f.catalog.Save(ctx, doc))
			ids = append(ids, doc.ID)
			if i == 0 {
				// Only Payroll is anchored; Lease stays unmatched.
				view = append(view, ledger.Document{DocID: "D2", Title: title, FilePath: "/elsewhere/other.pdf"})
			}
		}
		f.lister.views = [][]ledger.Document{view}
		request := f.createRequest(t, ctx, ids...)

		_, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: true})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "Lease", "error names the unmatched document")

		stored, err := f.store.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Len(t, stored.Items, 3, "items untouched by the failed gate")
	})

	t.Run("rejection skips the ledger gate", func(t *testing.T) {
		f := newFixture(t)
		f.syncer.err = dErrors.New(dErrors.CodeExternalTool, "ledger down")
		request := f.createRequest(t, ctx)

		decided, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: false})
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, decided.Status)
		assert.Equal(t, 0, f.syncer.calls)
	})
}

func TestService_Decide_Guards(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Decide(ctx, DecideInput{RequestID: domain.NewRequestID(), DeciderID: f.person.ID})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("only the owner may decide", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, ctx)

		_, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: domain.NewPersonID(), Approve: true})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, f.auditKinds(t), audit.KindDecisionDenied)
		assert.Equal(t, 0, f.syncer.calls)
	})

	t.Run("decided requests stay decided", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, ctx)
		_, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: false})
		require.NoError(t, err)

		for _, approve := range []bool{true, false} {
			_, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: approve})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
		}

		stored, err := f.store.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, stored.Status)
	})

	t.Run("expiry wins over the approve flag and precedes ledger work", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, ctx)

		late := requestcontext.WithTime(context.Background(), now.Add(GracePeriod+time.Hour))
		for _, approve := range []bool{true, false} {
			f2 := newFixture(t)
			r2 := f2.createRequest(t, ctx)
			_, err := f2.service.Decide(late, DecideInput{RequestID: r2.ID, DeciderID: f2.person.ID, Approve: approve})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeExpired))
			assert.Equal(t, 0, f2.syncer.calls, "no ledger interaction after expiry")

			stored, err := f2.store.FindByID(ctx, r2.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusExpired, stored.Status)
		}

		// The original fixture request, decided in time, is unaffected.
		stored, err := f.store.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, stored.Status)
	})

	t.Run("note length is bounded", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, ctx)
		_, err := f.service.Decide(ctx, DecideInput{
			RequestID: request.ID,
			DeciderID: f.person.ID,
			Note:      strings.Repeat("n", NoteMaxLen+1),
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestService_LoadApprovedResource(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	approved := func(t *testing.T, f *fixture) Request {
		t.Helper()
		f.lister.views = [][]ledger.Document{f.anchored()}
		request := f.createRequest(t, ctx)
		decided, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: true})
		require.NoError(t, err)
		return decided
	}

	t.Run("releases content after fresh ledger check", func(t *testing.T) {
		f := newFixture(t)
		request := approved(t, f)

		resource, err := f.service.LoadApprovedResource(ctx, ResourceInput{
			RequestID:  request.ID,
			EntityID:   f.entity.ID,
			DocumentID: f.doc.ID,
		})
		require.NoError(t, err)
		defer resource.Content.Close()

		body, err := io.ReadAll(resource.Content)
		require.NoError(t, err)
		assert.Equal(t, "file-bytes", string(body))
		assert.Equal(t, f.doc.ID, resource.Document.ID)
		assert.Equal(t, 2, f.lister.calls, "retrieval re-queries the ledger")
		assert.Contains(t, f.auditKinds(t), audit.KindResourceReleased)
	})

	t.Run("ledger drift after approval blocks release", func(t *testing.T) {
		f := newFixture(t)
		request := approved(t, f)
		f.lister.views = append(f.lister.views, nil) // second query: empty view

		_, err := f.service.LoadApprovedResource(ctx, ResourceInput{
			RequestID:  request.ID,
			EntityID:   f.entity.ID,
			DocumentID: f.doc.ID,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Empty(t, f.loader.opened, "file is never opened without a match")
		assert.Contains(t, f.auditKinds(t), audit.KindResourceDenied)

		stored, err := f.store.FindByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, stored.Status, "drift denies release without rewriting state")
	})

	t.Run("distinguishable denial reasons", func(t *testing.T) {
		f := newFixture(t)
		request := approved(t, f)

		t.Run("wrong entity", func(t *testing.T) {
			_, err := f.service.LoadApprovedResource(ctx, ResourceInput{RequestID: request.ID, EntityID: domain.NewEntityID(), DocumentID: f.doc.ID})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		})
		t.Run("document out of scope", func(t *testing.T) {
			_, err := f.service.LoadApprovedResource(ctx, ResourceInput{RequestID: request.ID, EntityID: f.entity.ID, DocumentID: domain.NewDocumentID()})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
		t.Run("expired window", func(t *testing.T) {
			late := requestcontext.WithTime(context.Background(), now.Add(GracePeriod+time.Hour))
			_, err := f.service.LoadApprovedResource(late, ResourceInput{RequestID: request.ID, EntityID: f.entity.ID, DocumentID: f.doc.ID})
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeExpired))
		})
	})

	t.Run("not approved yet", func(t *testing.T) {
		f := newFixture(t)
		request := f.createRequest(t, ctx)
		_, err := f.service.LoadApprovedResource(ctx, ResourceInput{RequestID: request.ID, EntityID: f.entity.ID, DocumentID: f.doc.ID})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestService_GetByID(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	f := newFixture(t)
	request := f.createRequest(t, ctx)

	t.Run("owner and requester may read", func(t *testing.T) {
		for _, actor := range []string{f.person.ID.String(), f.entity.ID.String()} {
			got, err := f.service.GetByID(requestcontext.WithActorID(ctx, actor), request.ID)
			require.NoError(t, err)
			assert.Equal(t, request.ID, got.ID)
		}
	})

	t.Run("third parties may not", func(t *testing.T) {
		_, err := f.service.GetByID(requestcontext.WithActorID(ctx, domain.NewPersonID().String()), request.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

// Mirrors the end-to-end disclosure story: a bank requests a reviewed
// document, the owner approves against a live ledger view, and the same
// approval fails when the ledger comes back empty.
func TestService_DisclosureScenario(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	f := newFixture(t)
	f.lister.views = [][]ledger.Document{f.anchored()}

	request := f.createRequest(t, ctx)
	assert.Equal(t, StatusPending, request.Status)
	assert.Equal(t, request.RequestedAt.Add(15*24*time.Hour), request.ExpiresAt)

	decided, err := f.service.Decide(ctx, DecideInput{RequestID: request.ID, DeciderID: f.person.ID, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, decided.Status)

	// Same story against an empty ledger view: the approval must not commit.
	f2 := newFixture(t)
	f2.lister.views = [][]ledger.Document{nil}
	r2 := f2.createRequest(t, ctx)

	_, err = f2.service.Decide(ctx, DecideInput{RequestID: r2.ID, DeciderID: f2.person.ID, Approve: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), f2.doc.Title)

	stored, err := f2.store.FindByID(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}
