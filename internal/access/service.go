package access

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"custodia/internal/audit"
	"custodia/internal/catalog"
	"custodia/internal/directory"
	"custodia/internal/files"
	"custodia/internal/ledger"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
	"custodia/pkg/requestcontext"
)

// Collaborator ports. The workflow orchestrates across features through
// narrow interfaces so each can be faked in tests and swapped in wiring.
type (
	// Directory resolves the people and entities a request names.
	Directory interface {
		FindPerson(ctx context.Context, id domain.PersonID) (directory.Person, error)
		FindEntity(ctx context.Context, id domain.EntityID) (directory.Entity, error)
	}

	// Catalog resolves the documents a request targets.
	Catalog interface {
		FindByID(ctx context.Context, id domain.DocumentID) (catalog.Document, error)
	}

	// LedgerSyncer pushes an identity's records onto the ledger.
	LedgerSyncer interface {
		Sync(ctx context.Context, kind domain.IdentityKind, number string) error
	}

	// LedgerLister reads an identity's anchored records back from the ledger.
	LedgerLister interface {
		ListDocuments(ctx context.Context, kind domain.IdentityKind, number string) ([]ledger.Document, error)
	}
)

// Service runs the disclosure workflow. Approvals pass a ledger gate: the
// owner's records are synced, read back, and every requested document must
// match an anchored record before the approval commits. A gate failure leaves
// the request pending so the decision can be retried.
type Service struct {
	store     Store
	directory Directory
	catalog   Catalog
	syncer    LedgerSyncer
	lister    LedgerLister
	loader    files.Loader
	audit     *audit.Publisher
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

func NewService(
	store Store,
	dir Directory,
	cat Catalog,
	syncer LedgerSyncer,
	lister LedgerLister,
	loader files.Loader,
	auditPub *audit.Publisher,
	logger *slog.Logger,
	metrics *Metrics,
) *Service {
	return &Service{
		store:     store,
		directory: dir,
		catalog:   cat,
		syncer:    syncer,
		lister:    lister,
		loader:    loader,
		audit:     auditPub,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("custodia/access"),
	}
}

// CreateInput carries everything needed to open a request.
type CreateInput struct {
	EntityID    domain.EntityID
	PersonID    domain.PersonID
	Purpose     string
	DocumentIDs []domain.DocumentID
}

// Create opens a pending request after verifying that the entity and person
// exist and every named document belongs to the person and is approved for
// disclosure. The request and its items are persisted atomically.
func (s *Service) Create(ctx context.Context, in CreateInput) (Request, error) {
	if in.EntityID.IsZero() {
		return Request{}, dErrors.New(dErrors.CodeValidation, "entity id is required")
	}
	if in.PersonID.IsZero() {
		return Request{}, dErrors.New(dErrors.CodeValidation, "person id is required")
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		return Request{}, dErrors.New(dErrors.CodeValidation, "purpose is required")
	}
	if utf8.RuneCountInString(purpose) > PurposeMaxLen {
		return Request{}, dErrors.Newf(dErrors.CodeValidation, "purpose exceeds %d characters", PurposeMaxLen)
	}
	if len(in.DocumentIDs) == 0 {
		return Request{}, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}
	seen := make(map[domain.DocumentID]struct{}, len(in.DocumentIDs))
	for _, docID := range in.DocumentIDs {
		if docID.IsZero() {
			return Request{}, dErrors.New(dErrors.CodeValidation, "document id is required")
		}
		if _, dup := seen[docID]; dup {
			return Request{}, dErrors.Newf(dErrors.CodeValidation, "duplicate document %s in request", docID)
		}
		seen[docID] = struct{}{}
	}

	if _, err := s.directory.FindEntity(ctx, in.EntityID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Request{}, dErrors.New(dErrors.CodeValidation, "requesting entity not found")
		}
		return Request{}, err
	}
	if _, err := s.directory.FindPerson(ctx, in.PersonID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Request{}, dErrors.New(dErrors.CodeValidation, "document owner not found")
		}
		return Request{}, err
	}

	requestID := domain.NewRequestID()
	items := make([]Item, 0, len(in.DocumentIDs))
	for _, docID := range in.DocumentIDs {
		doc, err := s.catalog.FindByID(ctx, docID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return Request{}, dErrors.Newf(dErrors.CodeValidation, "document %s not found", docID)
			}
			return Request{}, err
		}
		if doc.PersonID != in.PersonID {
			return Request{}, dErrors.Newf(dErrors.CodeValidation, "document %q does not belong to the named person", doc.Title)
		}
		if !doc.Disclosable() {
			return Request{}, dErrors.Newf(dErrors.CodeValidation, "document %q is not approved for disclosure", doc.Title)
		}
		items = append(items, Item{
			ID:         domain.NewItemID(),
			RequestID:  requestID,
			DocumentID: docID,
		})
	}

	now := requestcontext.Now(ctx)
	request := Request{
		ID:          requestID,
		EntityID:    in.EntityID,
		PersonID:    in.PersonID,
		Purpose:     purpose,
		Status:      StatusPending,
		RequestedAt: now,
		ExpiresAt:   now.Add(GracePeriod),
		Items:       items,
	}
	if err := s.store.Create(ctx, request); err != nil {
		return Request{}, err
	}

	s.metrics.RecordRequestCreated()
	s.audit.Emit(ctx, audit.Event{
		Kind:      audit.KindRequestCreated,
		RequestID: request.ID.String(),
		Detail:    fmt.Sprintf("entity %s requested %d document(s) of person %s", in.EntityID, len(items), in.PersonID),
	})
	s.logger.InfoContext(ctx, "access request created",
		"request_id", request.ID.String(),
		"entity_id", in.EntityID.String(),
		"person_id", in.PersonID.String(),
		"items", len(items),
	)
	return request, nil
}

// DecideInput carries a decision attempt.
type DecideInput struct {
	RequestID domain.RequestID
	DeciderID domain.PersonID
	Approve   bool
	Note      string
}

// Decide commits the owner's verdict. Only the document owner may decide,
// only a pending request may be decided, and an approval commits only after
// the ledger gate passes. The commit is a compare-and-swap on the pending
// status, so concurrent decisions resolve to exactly one winner.
func (s *Service) Decide(ctx context.Context, in DecideInput) (Request, error) {
	ctx, span := s.tracer.Start(ctx, "access.decide", trace.WithAttributes(
		attribute.String("request_id", in.RequestID.String()),
		attribute.Bool("approve", in.Approve),
	))
	defer span.End()

	note := strings.TrimSpace(in.Note)
	if utf8.RuneCountInString(note) > NoteMaxLen {
		return Request{}, dErrors.Newf(dErrors.CodeValidation, "note exceeds %d characters", NoteMaxLen)
	}

	request, err := s.store.FindByID(ctx, in.RequestID)
	if err != nil {
		return Request{}, err
	}

	if request.PersonID != in.DeciderID {
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindDecisionDenied,
			ActorID:   in.DeciderID.String(),
			RequestID: request.ID.String(),
			Detail:    "decider is not the document owner",
		})
		return Request{}, dErrors.New(dErrors.CodeUnauthorized, "only the document owner may decide this request")
	}
	if request.Status != StatusPending {
		return Request{}, dErrors.New(dErrors.CodeConflict, "access request is already decided")
	}

	now := requestcontext.Now(ctx)
	if request.ExpiredAt(now) {
		// Record the lapse before refusing; a CAS miss means a concurrent
		// caller already moved it, which is the same outcome.
		if err := s.store.UpdateStatus(ctx, request.ID, StatusPending, StatusExpired, now, ""); err != nil && !errors.Is(err, ErrStatusConflict) {
			return Request{}, err
		}
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindDecisionDenied,
			ActorID:   in.DeciderID.String(),
			RequestID: request.ID.String(),
			Detail:    "grace window elapsed",
		})
		s.metrics.RecordDecision(StatusExpired)
		return Request{}, dErrors.New(dErrors.CodeExpired, "access request expired before a decision was made")
	}

	target := StatusRejected
	if in.Approve {
		target = StatusApproved
		if err := s.runLedgerGate(ctx, request); err != nil {
			span.RecordError(err)
			return Request{}, err
		}
	}

	if err := s.store.UpdateStatus(ctx, request.ID, StatusPending, target, now, note); err != nil {
		return Request{}, err
	}
	request.Status = target
	request.DecidedAt = &now
	request.Note = note

	s.metrics.RecordDecision(target)
	s.audit.Emit(ctx, audit.Event{
		Kind:      audit.KindRequestDecided,
		ActorID:   in.DeciderID.String(),
		RequestID: request.ID.String(),
		Detail:    string(target),
	})
	s.logger.InfoContext(ctx, "access request decided",
		"request_id", request.ID.String(),
		"status", string(target),
	)
	return request, nil
}

// runLedgerGate syncs the owner's records and verifies that every requested
// document matches an anchored one. Any failure blocks the approval and
// leaves the request pending.
func (s *Service) runLedgerGate(ctx context.Context, request Request) error {
	ctx, span := s.tracer.Start(ctx, "access.ledger_gate")
	defer span.End()

	person, err := s.directory.FindPerson(ctx, request.PersonID)
	if err != nil {
		return err
	}

	if err := s.syncer.Sync(ctx, person.IdentityKind, person.IdentityNumber); err != nil {
		s.metrics.RecordGateFailure("sync")
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindLedgerGateFailed,
			RequestID: request.ID.String(),
			Detail:    "sync: " + dErrors.Reason(err),
		})
		return dErrors.Wrap(err, dErrors.CodeValidation, "ledger sync failed: "+dErrors.Reason(err))
	}

	anchored, err := s.lister.ListDocuments(ctx, person.IdentityKind, person.IdentityNumber)
	if err != nil {
		s.metrics.RecordGateFailure("list")
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindLedgerGateFailed,
			RequestID: request.ID.String(),
			Detail:    "list: " + dErrors.Reason(err),
		})
		return dErrors.Wrap(err, dErrors.CodeValidation, "ledger query failed: "+dErrors.Reason(err))
	}

	for _, item := range request.Items {
		doc, err := s.catalog.FindByID(ctx, item.DocumentID)
		if err != nil {
			return err
		}
		file, ok := doc.LatestFile()
		if !ok {
			return dErrors.Newf(dErrors.CodeValidation, "document %q has no stored file", doc.Title)
		}
		if _, ok := ledger.Match(anchored, doc.Title, file.StoredPath); !ok {
			s.metrics.RecordGateFailure("match")
			s.audit.Emit(ctx, audit.Event{
				Kind:      audit.KindLedgerGateFailed,
				RequestID: request.ID.String(),
				Detail:    fmt.Sprintf("document %q not anchored on ledger", doc.Title),
			})
			return dErrors.Newf(dErrors.CodeValidation, "document %q is not anchored on the ledger", doc.Title)
		}
	}
	return nil
}

// GetByID returns one request to a caller that is party to it: the document
// owner or the requesting entity.
func (s *Service) GetByID(ctx context.Context, id domain.RequestID) (Request, error) {
	request, err := s.store.FindByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	actor := requestcontext.ActorID(ctx)
	if actor != request.PersonID.String() && actor != request.EntityID.String() {
		return Request{}, dErrors.New(dErrors.CodeForbidden, "caller is not a party to this request")
	}
	return request, nil
}

// ListByPerson returns a person's requests, newest first.
func (s *Service) ListByPerson(ctx context.Context, personID domain.PersonID) ([]Request, error) {
	return s.store.ListByPerson(ctx, personID)
}

// ListByEntity returns an entity's requests, newest first.
func (s *Service) ListByEntity(ctx context.Context, entityID domain.EntityID) ([]Request, error) {
	return s.store.ListByEntity(ctx, entityID)
}

// Resource is a released document: its metadata, the selected file version,
// and the content stream. The caller owns closing Content.
type Resource struct {
	Document catalog.Document
	File     catalog.File
	Content  io.ReadCloser
}

// ResourceInput identifies the document an entity wants to read.
type ResourceInput struct {
	RequestID  domain.RequestID
	EntityID   domain.EntityID
	DocumentID domain.DocumentID
}

// LoadApprovedResource releases one document's content to the requesting
// entity. It re-verifies the ledger anchoring at read time: an approval that
// once held does not entitle the entity to a file the ledger no longer
// carries.
func (s *Service) LoadApprovedResource(ctx context.Context, in ResourceInput) (*Resource, error) {
	ctx, span := s.tracer.Start(ctx, "access.load_resource", trace.WithAttributes(
		attribute.String("request_id", in.RequestID.String()),
		attribute.String("document_id", in.DocumentID.String()),
	))
	defer span.End()

	request, err := s.store.FindByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if request.EntityID != in.EntityID {
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindResourceDenied,
			RequestID: request.ID.String(),
			Detail:    "caller is not the requesting entity",
		})
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is not the requesting entity")
	}
	if request.Status != StatusApproved {
		return nil, dErrors.New(dErrors.CodeConflict, "access request is not approved")
	}
	now := requestcontext.Now(ctx)
	if request.ExpiredAt(now) {
		return nil, dErrors.New(dErrors.CodeExpired, "access window has closed")
	}
	if !request.HasDocument(in.DocumentID) {
		return nil, dErrors.New(dErrors.CodeValidation, "document is not part of this request")
	}

	doc, err := s.catalog.FindByID(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	file, ok := doc.LatestFile()
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeValidation, "document %q has no stored file", doc.Title)
	}

	person, err := s.directory.FindPerson(ctx, request.PersonID)
	if err != nil {
		return nil, err
	}
	anchored, err := s.lister.ListDocuments(ctx, person.IdentityKind, person.IdentityNumber)
	if err != nil {
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindResourceDenied,
			RequestID: request.ID.String(),
			Detail:    "ledger query failed: " + dErrors.Reason(err),
		})
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "ledger query failed: "+dErrors.Reason(err))
	}
	if _, ok := ledger.Match(anchored, doc.Title, file.StoredPath); !ok {
		s.audit.Emit(ctx, audit.Event{
			Kind:      audit.KindResourceDenied,
			RequestID: request.ID.String(),
			Detail:    fmt.Sprintf("document %q not anchored on ledger", doc.Title),
		})
		return nil, dErrors.Newf(dErrors.CodeValidation, "document %q is not anchored on the ledger", doc.Title)
	}

	content, err := s.loader.Open(ctx, file.StoredPath)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordResourceReleased()
	s.audit.Emit(ctx, audit.Event{
		Kind:      audit.KindResourceReleased,
		RequestID: request.ID.String(),
		Detail:    fmt.Sprintf("document %q file version %d", doc.Title, file.Version),
	})
	s.logger.InfoContext(ctx, "document content released",
		"request_id", request.ID.String(),
		"document_id", doc.ID.String(),
		"file_version", file.Version,
	)
	return &Resource{Document: doc, File: file, Content: content}, nil
}
