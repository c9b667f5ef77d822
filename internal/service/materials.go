package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/ocr"
	"github.com/iliyamo/pv-site-manager/internal/queue"
	"github.com/iliyamo/pv-site-manager/internal/repository"
)

// Extractor reads material fields off an image.
type Extractor interface {
	Run(ctx context.Context, content []byte) (ocr.Result, error)
}

// MaterialService manages shipments, including OCR-assisted intake.
type MaterialService struct {
	materials MaterialStore
	extractor Extractor
	paging    Paging
	events    emitter
	clock     clock
}

func NewMaterialService(materials MaterialStore, extractor Extractor, paging Paging, pub EventPublisher, log zerolog.Logger) *MaterialService {
	return &MaterialService{
		materials: materials,
		extractor: extractor,
		paging:    paging,
		events:    emitter{pub: pub, log: log},
	}
}

type MaterialInput struct {
	DDTNumber     string
	PackingList   *string
	ContainerID   *string
	BatchNumber   string
	NonConformity bool
	Notes         *string
}

// MaterialUpdate carries the mutable fields. A nil NonConformity means
// unchanged; Notes may also be cleared.
type MaterialUpdate struct {
	NonConformity *bool
	Notes         Field[string]
}

// OCRIntake is the outcome of CreateFromOCR.
type OCRIntake struct {
	ID          uint64
	DDTNumber   string
	BatchNumber string
}

var ocrExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// Create records a shipment. The DDT pre-check is advisory; the store's
// unique constraint decides when two creates race.
func (s *MaterialService) Create(ctx context.Context, caller model.Identity, in MaterialInput) (uint64, error) {
	return s.create(ctx, caller, in, "manual")
}

func (s *MaterialService) create(ctx context.Context, caller model.Identity, in MaterialInput, source string) (uint64, error) {
	in.DDTNumber = strings.TrimSpace(in.DDTNumber)
	in.BatchNumber = strings.TrimSpace(in.BatchNumber)
	if in.DDTNumber == "" {
		return 0, validationf("ddt_number is required")
	}
	if in.BatchNumber == "" {
		return 0, validationf("batch_number is required")
	}
	if err := authorize(caller, roleMaterialCreate); err != nil {
		return 0, err
	}

	exists, err := s.materials.ExistsByDDT(ctx, in.DDTNumber)
	if err != nil {
		return 0, fmt.Errorf("check ddt: %w", err)
	}
	if exists {
		return 0, validationf("DDT number already exists")
	}

	now := s.clock.now()
	id, err := s.materials.Create(ctx, model.Material{
		DDTNumber:     in.DDTNumber,
		PackingList:   in.PackingList,
		ContainerID:   in.ContainerID,
		BatchNumber:   in.BatchNumber,
		NonConformity: in.NonConformity,
		Notes:         in.Notes,
		CreatedAt:     now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateDDT) {
			return 0, validationf("DDT number already exists")
		}
		return 0, fmt.Errorf("insert material: %w", err)
	}

	s.events.emit(ctx, queue.TypeMaterialCreated, caller.Username, now, queue.MaterialEvent{
		MaterialID:    id,
		DDTNumber:     in.DDTNumber,
		BatchNumber:   in.BatchNumber,
		Source:        source,
		NonConformity: in.NonConformity,
	})
	return id, nil
}

// CreateFromOCR reads a photographed delivery note and records the
// shipment it describes.
func (s *MaterialService) CreateFromOCR(ctx context.Context, caller model.Identity, filename string, content []byte) (OCRIntake, error) {
	base := baseName(filename)
	if !ocrExtensions[strings.ToLower(path.Ext(base))] {
		return OCRIntake{}, validationf("only png, jpg and jpeg images are supported")
	}
	if err := authorize(caller, roleMaterialCreate); err != nil {
		return OCRIntake{}, err
	}

	res, err := s.extractor.Run(ctx, content)
	if err != nil {
		switch {
		case errors.Is(err, ocr.ErrNoDDT):
			return OCRIntake{}, &Error{Kind: KindExtraction, Message: "no DDT number detected"}
		case errors.Is(err, ocr.ErrUndecodable):
			return OCRIntake{}, validationf("file is not a readable image")
		}
		return OCRIntake{}, fmt.Errorf("ocr: %w", err)
	}

	packing := res.PackingList
	notes := "OCR extracted from " + base
	id, err := s.create(ctx, caller, MaterialInput{
		DDTNumber:   res.DDTNumber,
		PackingList: &packing,
		BatchNumber: res.BatchNumber,
		Notes:       &notes,
	}, "ocr")
	if err != nil {
		return OCRIntake{}, err
	}
	return OCRIntake{ID: id, DDTNumber: res.DDTNumber, BatchNumber: res.BatchNumber}, nil
}

func (s *MaterialService) List(ctx context.Context, caller model.Identity, pg Page) ([]model.Material, error) {
	pg, err := s.paging.normalize(pg)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, roleRead); err != nil {
		return nil, err
	}
	out, err := s.materials.List(ctx, pg.Skip, pg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return out, nil
}

func (s *MaterialService) Get(ctx context.Context, caller model.Identity, id uint64) (model.Material, error) {
	if err := authorize(caller, roleRead); err != nil {
		return model.Material{}, err
	}
	m, err := s.materials.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return model.Material{}, notFound("material")
		}
		return model.Material{}, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// Update changes the non-conformity flag and notes. Concurrent updates
// are last-write-wins.
func (s *MaterialService) Update(ctx context.Context, caller model.Identity, id uint64, in MaterialUpdate) error {
	if err := authorize(caller, roleMaterialUpdate); err != nil {
		return err
	}
	current, err := s.materials.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return notFound("material")
		}
		return fmt.Errorf("get material: %w", err)
	}
	if in.NonConformity == nil && !in.Notes.Set {
		return nil
	}
	next := current
	if in.NonConformity != nil {
		next.NonConformity = *in.NonConformity
	}
	in.Notes.applyTo(&next.Notes)
	if err := s.materials.Update(ctx, next); err != nil {
		if errors.Is(err, repository.ErrMaterialNotFound) {
			return notFound("material")
		}
		return fmt.Errorf("update material: %w", err)
	}

	if next.NonConformity && !current.NonConformity {
		notes := ""
		if next.Notes != nil {
			notes = *next.Notes
		}
		s.events.emit(ctx, queue.TypeMaterialNonConformity, caller.Username, s.clock.now(), queue.MaterialEvent{
			MaterialID:    id,
			DDTNumber:     current.DDTNumber,
			BatchNumber:   current.BatchNumber,
			NonConformity: true,
			Notes:         notes,
		})
	}
	return nil
}

// baseName strips any client-supplied directories from filename.
func baseName(filename string) string {
	b := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if b == "." || b == "/" {
		return ""
	}
	return b
}
