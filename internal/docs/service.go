// Package docs orchestrates document records and their attachment files.
// It is the one place that keeps the storage record and the file store
// consistent across create, edit and delete.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/sirupsen/logrus"

	"mahfaza/internal/storage"
	"mahfaza/internal/store"
	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

// Upload is one file received from a form post.
type Upload struct {
	Filename string
	Content  io.Reader
}

func (u *Upload) present() bool {
	return u != nil && u.Filename != ""
}

type CreateInput struct {
	Name         string
	DocumentType string
	Description  *string
	IssueDate    *time.Time
	ExpiryDate   *time.Time
	Front        *Upload
	Back         *Upload
}

type EditInput struct {
	Name         string
	DocumentType string
	Description  *string
	IssueDate    *time.Time
	ExpiryDate   *time.Time
	Front        *Upload
	Back         *Upload
	ClearBack    bool
}

// Attachment is the result of an authorized raw-file fetch.
type Attachment struct {
	Content      io.ReadCloser
	OriginalName string
	Kind         storage.Kind
}

type Service struct {
	docs   store.DocumentStore
	files  storage.Store
	logger *logrus.Logger
}

func New(docs store.DocumentStore, files storage.Store, logger *logrus.Logger) *Service {
	return &Service{docs: docs, files: files, logger: logger}
}

// Create validates and persists a new document with its attachment files.
// If anything fails after a file was written, the written files are removed
// before the error is returned; a record without its files (or the reverse)
// must never survive this method.
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (int64, error) {
	if in.Name == "" {
		return 0, types.NewValidationError("name", "must not be empty")
	}
	if in.DocumentType == "" {
		return 0, types.NewValidationError("document_type", "must not be empty")
	}
	if !in.Front.present() {
		return 0, types.NewValidationError("document_file_front", "front file is required")
	}
	if !storage.Allowed(in.Front.Filename) {
		return 0, types.NewValidationError("document_file_front", "allowed file types are png, jpg, jpeg and pdf")
	}

	frontName, err := s.files.Put(ctx, in.Front.Filename, in.Front.Content)
	if err != nil {
		return 0, fmt.Errorf("store front file: %w", err)
	}

	var backName, backOriginal *string
	// A back file is only meaningful for back-side-eligible types; for any
	// other type it is ignored, not an error.
	if types.IsBackSideEligible(in.DocumentType) && in.Back.present() {
		if !storage.Allowed(in.Back.Filename) {
			s.removeFile(ctx, frontName)
			return 0, types.NewValidationError("document_file_back", "allowed file types are png, jpg, jpeg and pdf")
		}

		name, err := s.files.Put(ctx, in.Back.Filename, in.Back.Content)
		if err != nil {
			s.removeFile(ctx, frontName)
			return 0, fmt.Errorf("store back file: %w", err)
		}
		backName = &name
		backOriginal = utils.StringPtr(storage.Sanitize(in.Back.Filename))
	}

	doc := &types.Document{
		UserID:               ownerID,
		Name:                 in.Name,
		DocumentType:         in.DocumentType,
		Filename:             frontName,
		OriginalFilename:     storage.Sanitize(in.Front.Filename),
		FilenameBack:         backName,
		OriginalFilenameBack: backOriginal,
		Description:          in.Description,
		IssueDate:            in.IssueDate,
		ExpiryDate:           in.ExpiryDate,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		s.removeFile(ctx, frontName)
		if backName != nil {
			s.removeFile(ctx, *backName)
		}
		return 0, fmt.Errorf("insert document: %w", err)
	}

	return doc.ID, nil
}

// Update mutates an owned document. New files are written before old ones
// are deleted, and old files are only deleted once the record update has
// committed, so a live record never references a missing file.
func (s *Service) Update(ctx context.Context, ownerID, docID int64, in EditInput) error {
	if in.Name == "" {
		return types.NewValidationError("name", "must not be empty")
	}
	if in.DocumentType == "" {
		return types.NewValidationError("document_type", "must not be empty")
	}

	doc, err := s.docs.ByIDForUser(ctx, docID, ownerID)
	if err != nil {
		return err
	}

	// files to remove after the record update commits
	var obsolete []string
	// files written during this edit, removed again if the update fails
	var written []string

	if in.Front.present() {
		if !storage.Allowed(in.Front.Filename) {
			return types.NewValidationError("document_file_front", "allowed file types are png, jpg, jpeg and pdf")
		}

		newFront, err := s.files.Put(ctx, in.Front.Filename, in.Front.Content)
		if err != nil {
			return fmt.Errorf("store replacement front file: %w", err)
		}
		written = append(written, newFront)
		obsolete = append(obsolete, doc.Filename)
		doc.Filename = newFront
		doc.OriginalFilename = storage.Sanitize(in.Front.Filename)
	}

	switch {
	case !types.IsBackSideEligible(in.DocumentType):
		// the type no longer carries a back side; whatever is attached goes
		if doc.FilenameBack != nil {
			obsolete = append(obsolete, *doc.FilenameBack)
		}
		doc.FilenameBack = nil
		doc.OriginalFilenameBack = nil

	case in.Back.present():
		if !storage.Allowed(in.Back.Filename) {
			s.removeAll(ctx, written)
			return types.NewValidationError("document_file_back", "allowed file types are png, jpg, jpeg and pdf")
		}

		newBack, err := s.files.Put(ctx, in.Back.Filename, in.Back.Content)
		if err != nil {
			s.removeAll(ctx, written)
			return fmt.Errorf("store replacement back file: %w", err)
		}
		written = append(written, newBack)
		if doc.FilenameBack != nil {
			obsolete = append(obsolete, *doc.FilenameBack)
		}
		doc.FilenameBack = &newBack
		doc.OriginalFilenameBack = utils.StringPtr(storage.Sanitize(in.Back.Filename))

	case in.ClearBack:
		if doc.FilenameBack != nil {
			obsolete = append(obsolete, *doc.FilenameBack)
		}
		doc.FilenameBack = nil
		doc.OriginalFilenameBack = nil
	}

	doc.Name = in.Name
	doc.DocumentType = in.DocumentType
	doc.Description = in.Description
	doc.IssueDate = in.IssueDate
	doc.ExpiryDate = in.ExpiryDate

	if err := s.docs.Update(ctx, doc); err != nil {
		s.removeAll(ctx, written)
		return fmt.Errorf("update document: %w", err)
	}

	s.removeAll(ctx, obsolete)

	return nil
}

// Delete removes an owned document and its files. The record is
// authoritative: a file already missing from the store does not block the
// delete, and a second call reports types.ErrNotFound.
func (s *Service) Delete(ctx context.Context, ownerID, docID int64) error {
	doc, err := s.docs.ByIDForUser(ctx, docID, ownerID)
	if err != nil {
		return err
	}

	s.removeFile(ctx, doc.Filename)
	if doc.FilenameBack != nil {
		s.removeFile(ctx, *doc.FilenameBack)
	}

	return s.docs.Delete(ctx, docID, ownerID)
}

func (s *Service) DocumentForOwner(ctx context.Context, ownerID, docID int64) (*types.Document, error) {
	return s.docs.ByIDForUser(ctx, docID, ownerID)
}

func (s *Service) DocumentsForOwner(ctx context.Context, ownerID int64) ([]*types.Document, error) {
	return s.docs.ByUserID(ctx, ownerID)
}

// OpenAttachment authorizes and opens a raw attachment fetch. The storage
// name must be the front or back reference of one of the caller's documents;
// anything else, including files that belong to other users, is
// types.ErrNotFound.
func (s *Service) OpenAttachment(ctx context.Context, ownerID int64, name string) (*Attachment, error) {
	doc, err := s.docs.ByStorageName(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	rc, err := s.files.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("open attachment: %w", err)
	}

	original := doc.OriginalFilename
	if doc.FilenameBack != nil && *doc.FilenameBack == name {
		original = utils.PtrString(doc.OriginalFilenameBack)
	}

	return &Attachment{
		Content:      rc,
		OriginalName: original,
		Kind:         storage.Classify(name),
	}, nil
}

// removeFile is best-effort cleanup; a failure leaves an orphaned file that
// nothing references, which is tolerated and logged.
func (s *Service) removeFile(ctx context.Context, name string) {
	if err := s.files.Delete(ctx, name); err != nil {
		s.logger.WithError(err).WithField("storage_name", name).Warn("failed to remove attachment file")
	}
}

func (s *Service) removeAll(ctx context.Context, names []string) {
	for _, name := range names {
		s.removeFile(ctx, name)
	}
}
