package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/models"
	"github.com/filoshare/backend/internal/services"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

// publicApp mounts only the unauthenticated share-link routes
func publicApp(db *gorm.DB) *fiber.App {
	cfg := &config.Config{FrontendURL: "http://localhost:3000"}
	links := services.NewLinkService(db)
	files := NewFileHandler(cfg, nil, links, nil)
	bundles := NewBundleHandler(links)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/files/public/:id", files.PublicFile)
	api.Post("/files/download/:id", files.Download)
	api.Get("/bundle/:bundleId", bundles.Get)
	return app
}

func seedPublicFile(t *testing.T, db *gorm.DB, password string, expiresAt *time.Time) *models.File {
	t.Helper()
	user := &models.User{Name: "Owner", Email: uuid.NewString() + "@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	hashed, err := services.HashSharePassword(password)
	require.NoError(t, err)
	file := &models.File{
		ShareID:    uuid.NewString(),
		FileName:   "notes.txt",
		FileURL:    "https://store.example.com/bucket/filo/abc",
		ObjectKey:  "filo/abc",
		FileSize:   256,
		FileType:   "text/plain",
		UploadedBy: user.ID,
		Password:   hashed,
		ExpiresAt:  expiresAt,
	}
	require.NoError(t, db.Create(file).Error)
	return file
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestPublicFileMetadata(t *testing.T) {
	db := newHandlerTestDB(t)
	app := publicApp(db)

	protected := seedPublicFile(t, db, "hunter2", nil)

	status, body := getJSON(t, app, "/api/files/public/"+protected.ShareID)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, true, body["success"])

	meta := body["file"].(map[string]interface{})
	assert.Equal(t, protected.ShareID, meta["_id"])
	assert.Equal(t, "notes.txt", meta["fileName"])
	// The flag says protected; the hash itself never appears
	assert.Equal(t, true, meta["password"])

	status, body = getJSON(t, app, "/api/files/public/does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestPublicFileExpired(t *testing.T) {
	db := newHandlerTestDB(t)
	app := publicApp(db)

	gone := time.Now().Add(-time.Hour)
	expired := seedPublicFile(t, db, "", &gone)

	status, body := getJSON(t, app, "/api/files/public/"+expired.ShareID)
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, "Link expired", body["message"])
}

func TestDownloadStatusCodes(t *testing.T) {
	db := newHandlerTestDB(t)
	app := publicApp(db)

	protected := seedPublicFile(t, db, "hunter2", nil)
	open := seedPublicFile(t, db, "", nil)

	tests := []struct {
		name       string
		shareID    string
		payload    interface{}
		wantStatus int
	}{
		{"open file without body", open.ShareID, nil, http.StatusOK},
		{"protected without password", protected.ShareID, map[string]string{}, http.StatusUnauthorized},
		{"protected with wrong password", protected.ShareID, map[string]string{"password": "guess"}, http.StatusUnauthorized},
		{"protected with correct password", protected.ShareID, map[string]string{"password": "hunter2"}, http.StatusOK},
		{"unknown share id", "missing", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, app, "/api/files/download/"+tt.shareID, tt.payload)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantStatus == http.StatusOK {
				assert.NotEmpty(t, body["fileUrl"])
			}
		})
	}

	// One successful download each; the rejections moved nothing
	var fresh models.File
	require.NoError(t, db.First(&fresh, protected.ID).Error)
	assert.Equal(t, int64(1), fresh.Downloads)
}

func TestBundleEndpoint(t *testing.T) {
	db := newHandlerTestDB(t)
	app := publicApp(db)

	first := seedPublicFile(t, db, "", nil)
	second := seedPublicFile(t, db, "", nil)

	bundle := &models.Bundle{ShareID: uuid.NewString(), CreatedBy: first.UploadedBy}
	require.NoError(t, db.Create(bundle).Error)
	require.NoError(t, db.Create(&models.BundleFile{BundleID: bundle.ID, FileID: second.ID, Position: 0}).Error)
	require.NoError(t, db.Create(&models.BundleFile{BundleID: bundle.ID, FileID: first.ID, Position: 1}).Error)

	status, body := getJSON(t, app, "/api/bundle/"+bundle.ShareID)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, bundle.ShareID, body["bundleId"])

	meta := body["bundle"].(map[string]interface{})
	files := meta["files"].([]interface{})
	require.Len(t, files, 2)
	assert.Equal(t, second.ShareID, files[0].(map[string]interface{})["_id"])
	assert.Equal(t, first.ShareID, files[1].(map[string]interface{})["_id"])

	status, _ = getJSON(t, app, "/api/bundle/nope")
	assert.Equal(t, http.StatusNotFound, status)
}
