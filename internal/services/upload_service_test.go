package services

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/polinaozhigova/eqmon-be/internal/database"
	"github.com/polinaozhigova/eqmon-be/internal/models"
	"github.com/polinaozhigova/eqmon-be/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUploadService(t *testing.T) (*UploadService, *sql.DB, string) {
	t.Helper()
	db := newTestDB(t)
	dir := t.TempDir()
	files, err := storage.NewStore(dir)
	require.NoError(t, err)
	return NewUploadService(db, files, NewEventService(db)), db, dir
}

func uploadReq(filename, email string) UploadRequest {
	return UploadRequest{
		Filename:  filename,
		File:      strings.NewReader("measurement payload"),
		DateStart: "15.06.2023",
		DateEnd:   "20.06.2023",
		DataType:  "seismic",
		Email:     email,
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM "+table).Scan(&n))
	return n
}

func TestUpload_CreatesUserAndRecord(t *testing.T) {
	svc, db, dir := newTestUploadService(t)

	first, err := svc.Upload(uploadReq("a.seg", "lab@example.com"))
	require.NoError(t, err)
	assert.False(t, first.AlreadyUploaded)

	second, err := svc.Upload(uploadReq("b.seg", "lab@example.com"))
	require.NoError(t, err)
	assert.False(t, second.AlreadyUploaded)

	// Both records owned by the single lazily created user
	assert.Equal(t, 1, countRows(t, db, "users"))
	assert.Equal(t, 2, countRows(t, db, "files"))
	assert.Equal(t, first.Upload.UserID, second.Upload.UserID)

	// File bytes landed in the upload directory
	data, err := os.ReadFile(filepath.Join(dir, "a.seg"))
	require.NoError(t, err)
	assert.Equal(t, "measurement payload", string(data))
}

func TestUpload_DuplicateFilenameIsSoftOutcome(t *testing.T) {
	svc, db, _ := newTestUploadService(t)

	_, err := svc.Upload(uploadReq("dup.seg", "lab@example.com"))
	require.NoError(t, err)

	result, err := svc.Upload(uploadReq("dup.seg", "other@example.com"))
	require.NoError(t, err)
	assert.True(t, result.AlreadyUploaded)

	// The duplicate performed zero writes: no new user, no new record
	assert.Equal(t, 1, countRows(t, db, "users"))
	assert.Equal(t, 1, countRows(t, db, "files"))
}

func TestUpload_InvalidEmail(t *testing.T) {
	svc, db, dir := newTestUploadService(t)

	req := uploadReq("x.seg", "not-an-email")
	_, err := svc.Upload(req)
	require.ErrorIs(t, err, ErrValidation)

	// Short-circuited before any side effect
	assert.Equal(t, 0, countRows(t, db, "files"))
	assert.NoFileExists(t, filepath.Join(dir, "x.seg"))
}

func TestUpload_InvalidDates(t *testing.T) {
	svc, _, _ := newTestUploadService(t)

	req := uploadReq("x.seg", "lab@example.com")
	req.DateStart = "2023-06-15" // ISO instead of DD.MM.YYYY
	_, err := svc.Upload(req)
	require.ErrorIs(t, err, ErrValidation)

	req = uploadReq("x.seg", "lab@example.com")
	req.DateEnd = "junk"
	_, err = svc.Upload(req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpload_ReusesExistingUser(t *testing.T) {
	svc, db, _ := newTestUploadService(t)
	users := NewUserService(db, nil)

	existing, err := users.CreateUser("lab@example.com")
	require.NoError(t, err)

	// The upload flow must never surface a conflict for a known email
	result, err := svc.Upload(uploadReq("c.seg", "lab@example.com"))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.Upload.UserID)
	assert.Equal(t, 1, countRows(t, db, "users"))
}

func TestSearchByDate_StrictContainment(t *testing.T) {
	svc, _, _ := newTestUploadService(t)

	inside := uploadReq("inside.seg", "lab@example.com")
	inside.DateStart, inside.DateEnd = "01.01.2023", "02.01.2023"
	_, err := svc.Upload(inside)
	require.NoError(t, err)

	// Overlaps the query span but starts before it: must be excluded
	spanning := uploadReq("spanning.seg", "lab@example.com")
	spanning.DateStart, spanning.DateEnd = "31.12.2022", "02.01.2023"
	_, err = svc.Upload(spanning)
	require.NoError(t, err)

	start, _ := time.Parse(models.DateFormat, "01.01.2023")
	end, _ := time.Parse(models.DateFormat, "02.01.2023")
	got, err := svc.SearchByDate(start, end)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "inside.seg", got[0].Filename)
}

func TestSearchByDate_RoundTripsDateFormat(t *testing.T) {
	svc, _, _ := newTestUploadService(t)

	req := uploadReq("rt.seg", "lab@example.com")
	req.DateStart, req.DateEnd = "15.06.2023", "15.06.2023"
	_, err := svc.Upload(req)
	require.NoError(t, err)

	start, _ := time.Parse(models.DateFormat, "15.06.2023")
	got, err := svc.SearchByDate(start, start)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "15.06.2023", got[0].DateStart.Format(models.DateFormat))
	assert.Equal(t, "15.06.2023", got[0].DateEnd.Format(models.DateFormat))
}

func TestSearchByDate_InsertionOrder(t *testing.T) {
	svc, _, _ := newTestUploadService(t)

	for _, name := range []string{"one.seg", "two.seg", "three.seg"} {
		_, err := svc.Upload(uploadReq(name, "lab@example.com"))
		require.NoError(t, err)
	}

	start, _ := time.Parse(models.DateFormat, "15.06.2023")
	end, _ := time.Parse(models.DateFormat, "20.06.2023")
	got, err := svc.SearchByDate(start, end)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"one.seg", "two.seg", "three.seg"},
		[]string{got[0].Filename, got[1].Filename, got[2].Filename})
}

func TestLatestPerUser(t *testing.T) {
	svc, _, _ := newTestUploadService(t)

	for _, name := range []string{"a1.seg", "a2.seg", "a3.seg"} {
		_, err := svc.Upload(uploadReq(name, "a@example.com"))
		require.NoError(t, err)
	}
	_, err := svc.Upload(uploadReq("b1.seg", "b@example.com"))
	require.NoError(t, err)

	got, err := svc.LatestPerUser()
	require.NoError(t, err)

	// One record per user, the max-id one, ordered by owner id
	require.Len(t, got, 2)
	assert.Equal(t, "a3.seg", got[0].Filename)
	assert.Equal(t, "b1.seg", got[1].Filename)
	assert.Less(t, got[0].UserID, got[1].UserID)
}

func TestLatestPerUser_EmptyStore(t *testing.T) {
	svc, _, _ := newTestUploadService(t)

	got, err := svc.LatestPerUser()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInsertUpload_UnknownOwner(t *testing.T) {
	_, db, _ := newTestUploadService(t)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	up := models.Upload{
		Filename:  "orphan.seg",
		FilePath:  "orphan.seg",
		DateStart: time.Now(),
		DateEnd:   time.Now(),
		DataType:  "seismic",
		UserID:    9999,
	}
	err = insertUpload(tx, &up)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpload_RecordsEvent(t *testing.T) {
	svc, db, _ := newTestUploadService(t)

	_, err := svc.Upload(uploadReq("ev.seg", "lab@example.com"))
	require.NoError(t, err)

	events, err := NewEventService(db).Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "upload.created", events[0].Type)
	require.NotNil(t, events[0].UploadID)

	var wantID int64
	require.NoError(t, db.QueryRow("SELECT id FROM files WHERE filename = 'ev.seg'").Scan(&wantID))
	assert.Equal(t, wantID, *events[0].UploadID)
}
