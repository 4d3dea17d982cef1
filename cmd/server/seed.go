package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"custodia/internal/auth"
	"custodia/internal/catalog"
	"custodia/internal/directory"
	"custodia/internal/files"
	"custodia/pkg/domain"
)

// Fixed demo identifiers so external tooling can reference them.
var (
	demoEntityID   = domain.EntityID(uuid.MustParse("a0000000-0000-4000-8000-000000000001"))
	demoPersonID   = domain.PersonID(uuid.MustParse("b0000000-0000-4000-8000-000000000001"))
	demoDiplomaID  = domain.DocumentID(uuid.MustParse("c0000000-0000-4000-8000-000000000001"))
	demoPayslipID  = domain.DocumentID(uuid.MustParse("c0000000-0000-4000-8000-000000000002"))
	demoDiplomaDoc = "juan/diploma.pdf"
	demoPayslipDoc = "juan/payslip.pdf"
)

// seedDemoData loads a small fixture set: one requesting entity, one person
// with two approved documents, and the files on disk. Meant for the demo and
// end to end environments, guarded by CUSTODIA_DEMO_SEED.
func seedDemoData(ctx context.Context, dir directory.Store, cat catalog.Store, filesRoot string, log *slog.Logger) error {
	entitySecret, err := auth.HashSecret("acme-secret")
	if err != nil {
		return fmt.Errorf("seed: hash entity secret: %w", err)
	}
	if err := dir.SaveEntity(ctx, directory.Entity{
		ID:         demoEntityID,
		Name:       "ACME Bank",
		ClientID:   "acme-bank",
		SecretHash: entitySecret,
	}); err != nil {
		return fmt.Errorf("seed: entity: %w", err)
	}

	personSecret, err := auth.HashSecret("owner-secret")
	if err != nil {
		return fmt.Errorf("seed: hash person secret: %w", err)
	}
	if err := dir.SavePerson(ctx, directory.Person{
		ID:             demoPersonID,
		FullName:       "Juan Pérez",
		IdentityKind:   domain.IdentityKindNationalID,
		IdentityNumber: "1019455565",
		Email:          "juan.perez@example.com",
		SecretHash:     personSecret,
	}); err != nil {
		return fmt.Errorf("seed: person: %w", err)
	}

	docs := []struct {
		id      domain.DocumentID
		title   string
		issuer  string
		path    string
		content string
	}{
		{demoDiplomaID, "University Diploma", "Universidad Nacional", demoDiplomaDoc, "demo diploma content"},
		{demoPayslipID, "Payslip March", "ACME Corp", demoPayslipDoc, "demo payslip content"},
	}
	for _, d := range docs {
		if err := writeDemoFile(filesRoot, d.path, d.content); err != nil {
			return fmt.Errorf("seed: file %s: %w", d.path, err)
		}
		checksum, err := files.Checksum(strings.NewReader(d.content))
		if err != nil {
			return fmt.Errorf("seed: checksum %s: %w", d.path, err)
		}
		if err := cat.Save(ctx, catalog.Document{
			ID:            d.id,
			PersonID:      demoPersonID,
			Title:         d.title,
			IssuingEntity: d.issuer,
			ReviewStatus:  catalog.ReviewApproved,
			Files: []catalog.File{{
				ID:         domain.NewFileID(),
				DocumentID: d.id,
				Version:    1,
				StoredPath: d.path,
				SizeBytes:  int64(len(d.content)),
				Checksum:   checksum,
			}},
		}); err != nil {
			return fmt.Errorf("seed: document %s: %w", d.title, err)
		}
	}

	log.Info("demo data seeded",
		"entity_client_id", "acme-bank",
		"person_identity", "CC 1019455565",
		"documents", len(docs),
	)
	return nil
}

func writeDemoFile(root, rel, content string) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), 0o644)
}
