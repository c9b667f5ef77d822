package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/queue"
	"github.com/iliyamo/pv-site-manager/internal/repository"
	"github.com/iliyamo/pv-site-manager/internal/storage"
)

// ExistenceChecker answers whether a referenced row exists.
type ExistenceChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// DocumentService stores uploaded files and their metadata.
type DocumentService struct {
	docs      DocumentStore
	logs      ExistenceChecker
	materials ExistenceChecker
	blobs     storage.BlobStore
	paging    Paging
	events    emitter
	clock     clock
	newID     func() string
}

func NewDocumentService(docs DocumentStore, logs, materials ExistenceChecker, blobs storage.BlobStore,
	paging Paging, pub EventPublisher, log zerolog.Logger) *DocumentService {
	return &DocumentService{
		docs:      docs,
		logs:      logs,
		materials: materials,
		blobs:     blobs,
		paging:    paging,
		events:    emitter{pub: pub, log: log},
		newID:     func() string { return ksuid.New().String() },
	}
}

type UploadInput struct {
	Filename   string
	Content    []byte
	LogID      *uint64
	MaterialID *uint64
	Notes      *string
}

var documentTypes = map[string]struct {
	fileType    string
	contentType string
}{
	".png":  {model.FileTypePhoto, "image/png"},
	".jpg":  {model.FileTypePhoto, "image/jpeg"},
	".jpeg": {model.FileTypePhoto, "image/jpeg"},
	".pdf":  {model.FileTypePDF, "application/pdf"},
}

// Upload writes the file to blob storage and then records its metadata.
// A failed insert leaves the blob orphaned.
func (s *DocumentService) Upload(ctx context.Context, caller model.Identity, in UploadInput) (model.Document, error) {
	base := baseName(in.Filename)
	kind, ok := documentTypes[strings.ToLower(path.Ext(base))]
	if !ok {
		return model.Document{}, validationf("only png, jpg, jpeg and pdf files are supported")
	}
	if err := authorize(caller, roleDocumentUpload); err != nil {
		return model.Document{}, err
	}
	if err := s.mustExist(ctx, s.logs, in.LogID, "log"); err != nil {
		return model.Document{}, err
	}
	if err := s.mustExist(ctx, s.materials, in.MaterialID, "material"); err != nil {
		return model.Document{}, err
	}

	now := s.clock.now()
	key := fmt.Sprintf("uploads/%s_%s_%s", now.Format("20060102_150405"), s.newID(), base)
	if err := s.blobs.Put(ctx, key, bytes.NewReader(in.Content), int64(len(in.Content)), kind.contentType); err != nil {
		return model.Document{}, fmt.Errorf("store blob: %w", err)
	}

	doc := model.Document{
		FilePath:   key,
		FileType:   kind.fileType,
		Notes:      in.Notes,
		MaterialID: in.MaterialID,
		LogID:      in.LogID,
		CreatedAt:  now,
	}
	id, err := s.docs.Create(ctx, doc)
	if err != nil {
		return model.Document{}, fmt.Errorf("insert document: %w", err)
	}
	doc.ID = id

	s.events.emit(ctx, queue.TypeDocumentUploaded, caller.Username, now, queue.DocumentEvent{
		DocumentID: id,
		FilePath:   key,
		FileType:   doc.FileType,
		MaterialID: doc.MaterialID,
		LogID:      doc.LogID,
	})
	return doc, nil
}

func (s *DocumentService) mustExist(ctx context.Context, c ExistenceChecker, id *uint64, what string) error {
	if id == nil {
		return nil
	}
	ok, err := c.Exists(ctx, *id)
	if err != nil {
		return fmt.Errorf("check %s: %w", what, err)
	}
	if !ok {
		return notFound(what)
	}
	return nil
}

func (s *DocumentService) List(ctx context.Context, caller model.Identity, pg Page) ([]model.Document, error) {
	pg, err := s.paging.normalize(pg)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, roleRead); err != nil {
		return nil, err
	}
	out, err := s.docs.List(ctx, pg.Skip, pg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

func (s *DocumentService) Get(ctx context.Context, caller model.Identity, id uint64) (model.Document, error) {
	if err := authorize(caller, roleRead); err != nil {
		return model.Document{}, err
	}
	d, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return model.Document{}, notFound("document")
		}
		return model.Document{}, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// Delete removes the metadata row. The stored blob is kept.
func (s *DocumentService) Delete(ctx context.Context, caller model.Identity, id uint64) error {
	if err := authorize(caller, roleDocumentDelete); err != nil {
		return err
	}
	d, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return notFound("document")
		}
		return fmt.Errorf("get document: %w", err)
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return notFound("document")
		}
		return fmt.Errorf("delete document: %w", err)
	}

	s.events.emit(ctx, queue.TypeDocumentDeleted, caller.Username, s.clock.now(), queue.DocumentEvent{
		DocumentID: d.ID,
		FilePath:   d.FilePath,
		FileType:   d.FileType,
		MaterialID: d.MaterialID,
		LogID:      d.LogID,
	})
	return nil
}
