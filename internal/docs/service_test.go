package docs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahfaza/internal/storage"
	"mahfaza/internal/store"
	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

const (
	typePassport   = "جواز سفر"
	typeNationalID = "رقم وطني / بطاقة هوية"
	typeRentLease  = "عقد إيجار"
)

func newTestService(t *testing.T) (*Service, *storage.Disk, string) {
	t.Helper()

	root := t.TempDir()
	disk, err := storage.NewDisk(root)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return New(store.NewMemoryDocumentStore(), disk, logger), disk, root
}

func upload(name, content string) *Upload {
	return &Upload{Filename: name, Content: strings.NewReader(content)}
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreateThenFetch(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport.png", "front bytes"),
	})
	require.NoError(t, err)

	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "Passport", doc.Name)
	assert.Equal(t, "passport.png", doc.OriginalFilename)
	assert.Nil(t, doc.FilenameBack, "passport type carries no back side")
	assert.True(t, types.IsExpiryRelevant(doc.DocumentType))
	assert.False(t, doc.UploadDate.IsZero())

	// the front attachment is readable through the store
	rc, err := disk.Open(ctx, doc.Filename)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "front bytes", string(content))

	assert.Equal(t, storage.KindImage, storage.Classify(doc.Filename))
}

func TestCreateRejectsDisallowedExtension(t *testing.T) {
	ctx := context.Background()
	svc, _, root := newTestService(t)

	_, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Payload",
		DocumentType: typePassport,
		Front:        upload("payload.exe", "mz"),
	})
	assert.NotNil(t, types.AsValidation(err))
	assert.Empty(t, storedFiles(t, root), "nothing may be written for a rejected upload")

	docs, err := svc.DocumentsForOwner(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCreateRequiresFrontAndFields(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Create(ctx, 1, CreateInput{Name: "", DocumentType: typePassport, Front: upload("a.png", "x")})
	assert.NotNil(t, types.AsValidation(err))

	_, err = svc.Create(ctx, 1, CreateInput{Name: "X", DocumentType: "", Front: upload("a.png", "x")})
	assert.NotNil(t, types.AsValidation(err))

	_, err = svc.Create(ctx, 1, CreateInput{Name: "X", DocumentType: typePassport})
	assert.NotNil(t, types.AsValidation(err))
}

func TestCreateWithBackSide(t *testing.T) {
	ctx := context.Background()
	svc, _, root := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back"),
	})
	require.NoError(t, err)

	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, doc.FilenameBack)
	assert.Equal(t, "id_back.jpg", utils.PtrString(doc.OriginalFilenameBack))
	assert.Len(t, storedFiles(t, root), 2)
}

func TestCreateIgnoresBackForIneligibleType(t *testing.T) {
	ctx := context.Background()
	svc, _, root := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport.png", "front"),
		Back:         upload("back.png", "back"),
	})
	require.NoError(t, err, "a back file on an ineligible type is ignored, not an error")

	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Nil(t, doc.FilenameBack)
	assert.Len(t, storedFiles(t, root), 1, "the ignored back file is never written")
}

func TestCreateInvalidBackRollsBackFront(t *testing.T) {
	ctx := context.Background()
	svc, _, root := newTestService(t)

	_, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.exe", "mz"),
	})
	assert.NotNil(t, types.AsValidation(err))
	assert.Empty(t, storedFiles(t, root), "the already-written front file must be rolled back")
}

func TestCrossUserIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport.png", "front"),
	})
	require.NoError(t, err)

	_, err = svc.DocumentForOwner(ctx, 2, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = svc.Update(ctx, 2, id, EditInput{Name: "Stolen", DocumentType: typePassport})
	assert.ErrorIs(t, err, types.ErrNotFound)

	err = svc.Delete(ctx, 2, id)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// still intact for its owner
	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "Passport", doc.Name)
}

func TestDeleteIsIdempotentOnRecordAndFiles(t *testing.T) {
	ctx := context.Background()
	svc, _, root := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, id))
	assert.Empty(t, storedFiles(t, root))

	err = svc.Delete(ctx, 1, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, storedFiles(t, root))
}

func TestDeleteToleratesMissingFile(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport.png", "front"),
	})
	require.NoError(t, err)

	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	require.NoError(t, disk.Delete(ctx, doc.Filename))

	// the record is authoritative; a file already gone does not block delete
	require.NoError(t, svc.Delete(ctx, 1, id))

	_, err = svc.DocumentForOwner(ctx, 1, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEditTypeChangeClearsBack(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back"),
	})
	require.NoError(t, err)

	before, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	oldBack := utils.PtrString(before.FilenameBack)

	// rent leases have no back side, so the attachment must go
	err = svc.Update(ctx, 1, id, EditInput{Name: "Lease", DocumentType: typeRentLease})
	require.NoError(t, err)

	after, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Nil(t, after.FilenameBack)
	assert.Nil(t, after.OriginalFilenameBack)

	exists, err := disk.Exists(ctx, oldBack)
	require.NoError(t, err)
	assert.False(t, exists, "the old back file must be removed from the store")

	exists, err = disk.Exists(ctx, after.Filename)
	require.NoError(t, err)
	assert.True(t, exists, "the front file is untouched")
}

func TestEditClearBackDirective(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back"),
	})
	require.NoError(t, err)

	before, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	oldBack := utils.PtrString(before.FilenameBack)

	err = svc.Update(ctx, 1, id, EditInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		ClearBack:    true,
	})
	require.NoError(t, err)

	after, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Nil(t, after.FilenameBack)

	exists, err := disk.Exists(ctx, oldBack)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEditKeepsBackWithoutDirective(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back"),
	})
	require.NoError(t, err)

	before, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)

	err = svc.Update(ctx, 1, id, EditInput{Name: "Renamed", DocumentType: typeNationalID})
	require.NoError(t, err)

	after, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, utils.PtrString(before.FilenameBack), utils.PtrString(after.FilenameBack))
}

func TestEditReplacesBack(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back v1"),
	})
	require.NoError(t, err)

	before, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	oldBack := utils.PtrString(before.FilenameBack)

	err = svc.Update(ctx, 1, id, EditInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Back:         upload("id_back_v2.jpg", "back v2"),
	})
	require.NoError(t, err)

	after, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	require.NotNil(t, after.FilenameBack)
	assert.NotEqual(t, oldBack, *after.FilenameBack)

	exists, err := disk.Exists(ctx, oldBack)
	require.NoError(t, err)
	assert.False(t, exists, "replaced back file must be removed")

	rc, err := disk.Open(ctx, *after.FilenameBack)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "back v2", string(content))
}

func TestEditReplacesFrontWriteBeforeDelete(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport.png", "v1"),
	})
	require.NoError(t, err)

	before, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)

	err = svc.Update(ctx, 1, id, EditInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport_v2.pdf", "v2"),
	})
	require.NoError(t, err)

	after, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.NotEqual(t, before.Filename, after.Filename)
	assert.Equal(t, "passport_v2.pdf", after.OriginalFilename)
	assert.Equal(t, storage.KindDocument, storage.Classify(after.Filename))

	exists, err := disk.Exists(ctx, before.Filename)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = disk.Exists(ctx, after.Filename)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEditInvalidFrontMutatesNothing(t *testing.T) {
	ctx := context.Background()
	svc, disk, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "Passport",
		DocumentType: typePassport,
		Front:        upload("passport.png", "v1"),
	})
	require.NoError(t, err)

	err = svc.Update(ctx, 1, id, EditInput{
		Name:         "Changed",
		DocumentType: typePassport,
		Front:        upload("evil.exe", "mz"),
	})
	assert.NotNil(t, types.AsValidation(err))

	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, "Passport", doc.Name, "a rejected edit leaves the record untouched")

	exists, err := disk.Exists(ctx, doc.Filename)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEditInvalidBackRollsBackNewFront(t *testing.T) {
	ctx := context.Background()
	svc, disk, root := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "v1"),
	})
	require.NoError(t, err)

	before, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)

	err = svc.Update(ctx, 1, id, EditInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front_v2.jpg", "v2"),
		Back:         upload("bad.exe", "mz"),
	})
	assert.NotNil(t, types.AsValidation(err))

	// the record still points at the old front, which must still exist,
	// and the new front written before the back was rejected is gone
	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)
	assert.Equal(t, before.Filename, doc.Filename)

	exists, err := disk.Exists(ctx, before.Filename)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Len(t, storedFiles(t, root), 1)
}

func TestOpenAttachmentAccessGate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	id, err := svc.Create(ctx, 1, CreateInput{
		Name:         "ID",
		DocumentType: typeNationalID,
		Front:        upload("id_front.jpg", "front"),
		Back:         upload("id_back.jpg", "back"),
	})
	require.NoError(t, err)

	doc, err := svc.DocumentForOwner(ctx, 1, id)
	require.NoError(t, err)

	att, err := svc.OpenAttachment(ctx, 1, doc.Filename)
	require.NoError(t, err)
	defer att.Content.Close()
	assert.Equal(t, "id_front.jpg", att.OriginalName)
	assert.Equal(t, storage.KindImage, att.Kind)

	back, err := svc.OpenAttachment(ctx, 1, utils.PtrString(doc.FilenameBack))
	require.NoError(t, err)
	defer back.Content.Close()
	assert.Equal(t, "id_back.jpg", back.OriginalName)

	// another user gets NotFound, never Forbidden
	_, err = svc.OpenAttachment(ctx, 2, doc.Filename)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.OpenAttachment(ctx, 1, "0000000000000000_nothere.png")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Create(ctx, 1, CreateInput{Name: "First", DocumentType: typePassport, Front: upload("a.png", "a")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateInput{Name: "Second", DocumentType: typePassport, Front: upload("b.png", "b")})
	require.NoError(t, err)

	docs, err := svc.DocumentsForOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Second", docs[0].Name)
	assert.Equal(t, "First", docs[1].Name)
}
