package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

type MemoryStoreSuite struct {
	suite.Suite
	users *MemoryUserStore
	docs  *MemoryDocumentStore
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.users = NewMemoryUserStore()
	s.docs = NewMemoryDocumentStore()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newDocument(userID int64, name, front string) *types.Document {
	return &types.Document{
		UserID:           userID,
		Name:             name,
		DocumentType:     "جواز سفر",
		Filename:         front,
		OriginalFilename: "passport.png",
	}
}

func (s *MemoryStoreSuite) TestUserCreateAndLookups() {
	user := &types.User{Username: "alice", PasswordHash: "$2a$10$hash"}
	s.Require().NoError(s.users.Create(s.ctx, user))
	s.NotZero(user.ID)

	found, err := s.users.ByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)

	found, err = s.users.ByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("alice", found.Username)

	_, err = s.users.ByUsername(s.ctx, "nobody")
	s.Require().ErrorIs(err, types.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUserDuplicateUsername() {
	s.Require().NoError(s.users.Create(s.ctx, &types.User{Username: "alice", PasswordHash: "x"}))

	err := s.users.Create(s.ctx, &types.User{Username: "alice", PasswordHash: "y"})
	s.Require().ErrorIs(err, types.ErrDuplicateUsername)
}

func (s *MemoryStoreSuite) TestDocumentScopedByOwner() {
	doc := s.newDocument(1, "Passport", "aaaa_passport.png")
	s.Require().NoError(s.docs.Create(s.ctx, doc))
	s.NotZero(doc.ID)
	s.False(doc.UploadDate.IsZero())

	found, err := s.docs.ByIDForUser(s.ctx, doc.ID, 1)
	s.Require().NoError(err)
	s.Equal("Passport", found.Name)

	// another user sees nothing, not a permission error
	_, err = s.docs.ByIDForUser(s.ctx, doc.ID, 2)
	s.Require().ErrorIs(err, types.ErrNotFound)

	other := s.newDocument(1, "Visa", "bbbb_visa.jpg")
	s.Require().NoError(s.docs.Create(s.ctx, other))

	docs, err := s.docs.ByUserID(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("Visa", docs[0].Name, "newest first")
}

func (s *MemoryStoreSuite) TestDocumentUpdateAndDelete() {
	doc := s.newDocument(7, "ID", "cccc_id.jpg")
	doc.FilenameBack = utils.StringPtr("dddd_id_back.jpg")
	s.Require().NoError(s.docs.Create(s.ctx, doc))

	doc.Name = "National ID"
	doc.FilenameBack = nil
	s.Require().NoError(s.docs.Update(s.ctx, doc))

	found, err := s.docs.ByIDForUser(s.ctx, doc.ID, 7)
	s.Require().NoError(err)
	s.Equal("National ID", found.Name)
	s.Nil(found.FilenameBack)

	stranger := *doc
	stranger.UserID = 8
	s.Require().ErrorIs(s.docs.Update(s.ctx, &stranger), types.ErrNotFound)
	s.Require().ErrorIs(s.docs.Delete(s.ctx, doc.ID, 8), types.ErrNotFound)

	s.Require().NoError(s.docs.Delete(s.ctx, doc.ID, 7))
	s.Require().ErrorIs(s.docs.Delete(s.ctx, doc.ID, 7), types.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDocumentByStorageName() {
	doc := s.newDocument(3, "ID", "eeee_id_front.jpg")
	doc.FilenameBack = utils.StringPtr("ffff_id_back.jpg")
	s.Require().NoError(s.docs.Create(s.ctx, doc))

	found, err := s.docs.ByStorageName(s.ctx, 3, "eeee_id_front.jpg")
	s.Require().NoError(err)
	s.Equal(doc.ID, found.ID)

	found, err = s.docs.ByStorageName(s.ctx, 3, "ffff_id_back.jpg")
	s.Require().NoError(err)
	s.Equal(doc.ID, found.ID)

	// other users' names stay invisible
	_, err = s.docs.ByStorageName(s.ctx, 4, "eeee_id_front.jpg")
	s.Require().ErrorIs(err, types.ErrNotFound)

	_, err = s.docs.ByStorageName(s.ctx, 3, "unknown.png")
	s.Require().ErrorIs(err, types.ErrNotFound)
}
