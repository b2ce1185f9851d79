package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"mahfaza/pkg/types"
)

// MemoryUserStore is a map-backed UserStore with the same error contract as
// the postgres repository.
type MemoryUserStore struct {
	mu    sync.RWMutex
	seq   int64
	users map[int64]*types.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]*types.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return types.ErrDuplicateUsername
		}
	}

	s.seq++
	user.ID = s.seq
	clone := *user
	s.users[user.ID] = &clone

	return nil
}

func (s *MemoryUserStore) ByUsername(_ context.Context, username string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *MemoryUserStore) ByID(_ context.Context, id int64) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

// MemoryDocumentStore is a map-backed DocumentStore.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	seq  int64
	docs map[int64]*types.Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[int64]*types.Document)}
}

func (s *MemoryDocumentStore) Create(_ context.Context, doc *types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	doc.ID = s.seq
	doc.UploadDate = time.Now()
	s.docs[doc.ID] = cloneDocument(doc)

	return nil
}

func (s *MemoryDocumentStore) ByIDForUser(_ context.Context, id, userID int64) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok || doc.UserID != userID {
		return nil, types.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (s *MemoryDocumentStore) ByUserID(_ context.Context, userID int64) ([]*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Document, 0)
	for _, doc := range s.docs {
		if doc.UserID == userID {
			out = append(out, cloneDocument(doc))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].UploadDate.After(out[j].UploadDate)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (s *MemoryDocumentStore) Update(_ context.Context, doc *types.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.docs[doc.ID]
	if !ok || existing.UserID != doc.UserID {
		return types.ErrNotFound
	}

	updated := cloneDocument(doc)
	updated.UploadDate = existing.UploadDate
	s.docs[doc.ID] = updated

	return nil
}

func (s *MemoryDocumentStore) Delete(_ context.Context, id, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || doc.UserID != userID {
		return types.ErrNotFound
	}
	delete(s.docs, id)

	return nil
}

func (s *MemoryDocumentStore) ByStorageName(_ context.Context, userID int64, name string) (*types.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.docs {
		if doc.UserID != userID {
			continue
		}
		if doc.Filename == name || (doc.FilenameBack != nil && *doc.FilenameBack == name) {
			return cloneDocument(doc), nil
		}
	}
	return nil, types.ErrNotFound
}

func cloneDocument(doc *types.Document) *types.Document {
	clone := *doc
	clone.FilenameBack = clonePtr(doc.FilenameBack)
	clone.OriginalFilenameBack = clonePtr(doc.OriginalFilenameBack)
	clone.Description = clonePtr(doc.Description)
	clone.IssueDate = clonePtr(doc.IssueDate)
	clone.ExpiryDate = clonePtr(doc.ExpiryDate)
	return &clone
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
