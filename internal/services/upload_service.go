package services

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/polinaozhigova/eqmon-be/internal/database"
	"github.com/polinaozhigova/eqmon-be/internal/models"
	"github.com/polinaozhigova/eqmon-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// isoDate is how period bounds are stored; lexicographic order matches
// chronological order, which the range query relies on.
const isoDate = "2006-01-02"

// UploadRequest carries one decoded upload: the raw file bytes, the declared
// filename and the form fields exactly as the client sent them. Period bounds
// stay strings here; parsing them is part of the upload flow.
type UploadRequest struct {
	Filename  string
	File      io.Reader
	DateStart string
	DateEnd   string
	DataType  string
	Email     string
}

// UploadResult is the outcome of an upload. A duplicate filename is a normal,
// user-visible outcome rather than an error, mirrored by AlreadyUploaded.
type UploadResult struct {
	AlreadyUploaded bool
	Upload          models.Upload
}

// UploadServiceProvider defines the interface for upload services.
type UploadServiceProvider interface {
	Upload(req UploadRequest) (UploadResult, error)
	SearchByDate(dateStart, dateEnd time.Time) ([]models.Upload, error)
	LatestPerUser() ([]models.Upload, error)
}

// UploadService provides business logic for data file uploads and the
// queries against the upload catalog.
type UploadService struct {
	db       *sql.DB
	files    *storage.Store
	eventSvc EventServiceProvider
}

// NewUploadService creates a new UploadService.
func NewUploadService(db *sql.DB, files *storage.Store, eventSvc EventServiceProvider) *UploadService {
	return &UploadService{db: db, files: files, eventSvc: eventSvc}
}

// Upload validates the request, persists the file bytes and records the
// upload. The files table is the source of truth for duplicate filenames;
// the filesystem write is a derived effect and is rolled back when the
// database insert cannot be committed.
func (s *UploadService) Upload(req UploadRequest) (UploadResult, error) {
	if err := validate.Var(req.Email, "required,email"); err != nil {
		return UploadResult{}, fmt.Errorf("%w: invalid email %q", ErrValidation, req.Email)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return UploadResult{}, err
	}
	defer tx.Rollback()

	// Duplicate check comes before everything else: a re-upload of a known
	// filename is answered without touching dates, users or the filesystem.
	var exists int
	err = tx.QueryRow("SELECT COUNT(1) FROM files WHERE filename = ?", req.Filename).Scan(&exists)
	if err != nil {
		return UploadResult{}, err
	}
	if exists > 0 {
		return UploadResult{AlreadyUploaded: true}, nil
	}

	dateStart, err := time.Parse(models.DateFormat, req.DateStart)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: date_start %q is not in DD.MM.YYYY format", ErrValidation, req.DateStart)
	}
	dateEnd, err := time.Parse(models.DateFormat, req.DateEnd)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: date_end %q is not in DD.MM.YYYY format", ErrValidation, req.DateEnd)
	}

	user, err := findOrCreateUser(tx, req.Email)
	if err != nil {
		return UploadResult{}, err
	}

	upload := models.Upload{
		Filename:  req.Filename,
		FilePath:  s.files.Path(req.Filename),
		DateStart: dateStart,
		DateEnd:   dateEnd,
		DataType:  req.DataType,
		UserID:    user.ID,
	}
	if err := insertUpload(tx, &upload); err != nil {
		return UploadResult{}, err
	}

	if _, err := s.files.Save(req.Filename, req.File); err != nil {
		if rmErr := s.files.Remove(req.Filename); rmErr != nil {
			log.Error().Err(rmErr).Str("filename", req.Filename).Msg("Failed to clean up partial file")
		}
		return UploadResult{}, err
	}

	if err := tx.Commit(); err != nil {
		// The record is gone; do not leave orphaned bytes behind.
		if rmErr := s.files.Remove(req.Filename); rmErr != nil {
			log.Error().Err(rmErr).Str("filename", req.Filename).Msg("Failed to roll back file write")
		}
		return UploadResult{}, err
	}

	s.recordEvent("upload.created", fmt.Sprintf("File %q uploaded for %s.", upload.Filename, user.Email), &upload.ID)
	return UploadResult{Upload: upload}, nil
}

// SearchByDate returns the records whose own period lies entirely inside
// [dateStart, dateEnd]. This is a containment filter, not an overlap one: a
// record reaching outside the query span on either end is excluded. Results
// come back in insertion order.
func (s *UploadService) SearchByDate(dateStart, dateEnd time.Time) ([]models.Upload, error) {
	rows, err := s.db.Query(
		`SELECT id, filename, file_path, date_start, date_end, data_type, user_id, created_at
		 FROM files WHERE date_start >= ? AND date_end <= ? ORDER BY id`,
		dateStart.Format(isoDate), dateEnd.Format(isoDate))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUploads(rows)
}

// LatestPerUser returns, for every user owning at least one record, the most
// recently inserted record. Results are ordered by owner id.
func (s *UploadService) LatestPerUser() ([]models.Upload, error) {
	rows, err := s.db.Query(
		`SELECT f.id, f.filename, f.file_path, f.date_start, f.date_end, f.data_type, f.user_id, f.created_at
		 FROM files f
		 JOIN (SELECT user_id, MAX(id) AS latest_id FROM files GROUP BY user_id) m ON f.id = m.latest_id
		 ORDER BY f.user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanUploads(rows)
}

// insertUpload writes one file record. A taken filename maps to ErrConflict
// and an owner id that references no user maps to ErrNotFound.
func insertUpload(q querier, upload *models.Upload) error {
	res, err := q.Exec(
		"INSERT INTO files(filename, file_path, date_start, date_end, data_type, user_id) VALUES(?, ?, ?, ?, ?, ?)",
		upload.Filename, upload.FilePath,
		upload.DateStart.Format(isoDate), upload.DateEnd.Format(isoDate),
		upload.DataType, upload.UserID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: file %q already recorded", ErrConflict, upload.Filename)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with id %d", ErrNotFound, upload.UserID)
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	upload.ID = id
	return nil
}

func scanUploads(rows *sql.Rows) ([]models.Upload, error) {
	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		var start, end string
		if err := rows.Scan(&u.ID, &u.Filename, &u.FilePath, &start, &end, &u.DataType, &u.UserID, &u.CreatedAt); err != nil {
			return nil, err
		}
		var err error
		if u.DateStart, err = time.Parse(isoDate, start); err != nil {
			return nil, err
		}
		if u.DateEnd, err = time.Parse(isoDate, end); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (s *UploadService) recordEvent(eventType, message string, uploadID *int64) {
	if s.eventSvc == nil {
		return
	}
	if err := s.eventSvc.Record(eventType, "info", message, uploadID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}
