package services

import (
	"testing"
	"time"

	"github.com/filoshare/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedFile(t *testing.T, db *gorm.DB, ownerID uint, password string, expiresAt *time.Time) *models.File {
	t.Helper()
	hashed, err := HashSharePassword(password)
	require.NoError(t, err)
	file := &models.File{
		ShareID:    uuid.NewString(),
		FileName:   "report.pdf",
		FileURL:    "https://store.example.com/bucket/filo/x",
		ObjectKey:  "filo/x",
		FileSize:   123,
		FileType:   "application/pdf",
		UploadedBy: ownerID,
		Password:   hashed,
		ExpiresAt:  expiresAt,
	}
	require.NoError(t, db.Create(file).Error)
	return file
}

func future(h int) *time.Time {
	t := time.Now().Add(time.Duration(h) * time.Hour)
	return &t
}

func past(h int) *time.Time {
	t := time.Now().Add(-time.Duration(h) * time.Hour)
	return &t
}

func TestResolveFile(t *testing.T) {
	db := newTestDB(t)
	links := NewLinkService(db)
	user := newTestUser(t, db, "links@example.com", 0, 1024*MB)

	alive := seedFile(t, db, user.ID, "", future(1))
	forever := seedFile(t, db, user.ID, "", nil)
	dead := seedFile(t, db, user.ID, "", past(1))

	got, err := links.ResolveFile(alive.ShareID)
	require.NoError(t, err)
	assert.Equal(t, alive.FileName, got.FileName)

	// No expiry set means the link never dies
	_, err = links.ResolveFile(forever.ShareID)
	assert.NoError(t, err)

	_, err = links.ResolveFile(dead.ShareID)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = links.ResolveFile("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadGates(t *testing.T) {
	db := newTestDB(t)
	links := NewLinkService(db)
	user := newTestUser(t, db, "gates@example.com", 0, 1024*MB)

	protected := seedFile(t, db, user.ID, "letmein", nil)
	open := seedFile(t, db, user.ID, "", nil)
	expired := seedFile(t, db, user.ID, "letmein", past(2))

	tests := []struct {
		name     string
		shareID  string
		password string
		wantErr  error
	}{
		{"open file, no password", open.ShareID, "", nil},
		{"protected, correct password", protected.ShareID, "letmein", nil},
		{"protected, missing password", protected.ShareID, "", ErrPasswordRequired},
		{"protected, wrong password", protected.ShareID, "guess", ErrWrongPassword},
		{"expired wins over password", expired.ShareID, "letmein", ErrExpired},
		{"unknown share id", "missing", "letmein", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := links.Download(tt.shareID, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDownloadCounter(t *testing.T) {
	db := newTestDB(t)
	links := NewLinkService(db)
	user := newTestUser(t, db, "counter@example.com", 0, 1024*MB)

	file := seedFile(t, db, user.ID, "letmein", nil)

	// Rejected attempts leave the counter alone
	links.Download(file.ShareID, "")
	links.Download(file.ShareID, "wrong")

	var fresh models.File
	require.NoError(t, db.First(&fresh, file.ID).Error)
	assert.Equal(t, int64(0), fresh.Downloads)

	got, err := links.Download(file.ShareID, "letmein")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Downloads)

	_, err = links.Download(file.ShareID, "letmein")
	require.NoError(t, err)

	require.NoError(t, db.First(&fresh, file.ID).Error)
	assert.Equal(t, int64(2), fresh.Downloads)
}

func TestResolveBundle(t *testing.T) {
	db := newTestDB(t)
	links := NewLinkService(db)
	user := newTestUser(t, db, "bundles@example.com", 0, 1024*MB)

	a := seedFile(t, db, user.ID, "", nil)
	b := seedFile(t, db, user.ID, "", nil)
	c := seedFile(t, db, user.ID, "", nil)

	bundle := &models.Bundle{ShareID: uuid.NewString(), CreatedBy: user.ID}
	require.NoError(t, db.Create(bundle).Error)
	// Insert positions out of creation order on purpose
	for i, f := range []*models.File{c, a, b} {
		require.NoError(t, db.Create(&models.BundleFile{BundleID: bundle.ID, FileID: f.ID, Position: i}).Error)
	}

	got, err := links.ResolveBundle(bundle.ShareID)
	require.NoError(t, err)
	require.Len(t, got.Files, 3)
	assert.Equal(t, c.ID, got.Files[0].ID)
	assert.Equal(t, a.ID, got.Files[1].ID)
	assert.Equal(t, b.ID, got.Files[2].ID)

	_, err = links.ResolveBundle("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveBundleExpired(t *testing.T) {
	db := newTestDB(t)
	links := NewLinkService(db)
	user := newTestUser(t, db, "expbundle@example.com", 0, 1024*MB)

	bundle := &models.Bundle{ShareID: uuid.NewString(), CreatedBy: user.ID, ExpiresAt: past(1)}
	require.NoError(t, db.Create(bundle).Error)

	_, err := links.ResolveBundle(bundle.ShareID)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestListFilesForUser(t *testing.T) {
	db := newTestDB(t)
	links := NewLinkService(db)
	owner := newTestUser(t, db, "mine@example.com", 0, 1024*MB)
	other := newTestUser(t, db, "theirs@example.com", 0, 1024*MB)

	seedFile(t, db, owner.ID, "", nil)
	seedFile(t, db, owner.ID, "", nil)
	seedFile(t, db, other.ID, "", nil)

	files, err := links.ListFilesForUser(owner.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, owner.ID, f.UploadedBy)
	}
}

func TestCheckAccess(t *testing.T) {
	hashed, err := HashSharePassword("secret")
	require.NoError(t, err)
	require.NotNil(t, hashed)

	assert.NoError(t, CheckAccess(nil, ""))
	assert.NoError(t, CheckAccess(nil, "anything"))
	assert.NoError(t, CheckAccess(hashed, "secret"))
	assert.ErrorIs(t, CheckAccess(hashed, ""), ErrPasswordRequired)
	assert.ErrorIs(t, CheckAccess(hashed, "wrong"), ErrWrongPassword)

	// Blank passwords hash to nothing at all
	none, err := HashSharePassword("   ")
	require.NoError(t, err)
	assert.Nil(t, none)
}
