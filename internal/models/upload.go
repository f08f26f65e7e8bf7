package models

import "time"

// DateFormat is the external representation of period bounds, e.g. "15.06.2023".
const DateFormat = "02.01.2006"

// Upload describes one uploaded data file: where its bytes live, the period
// the measurements cover, a free-form category label and the owning user.
// Filenames are globally unique; re-uploading under the same name is refused
// rather than overwritten. Records are never mutated or deleted.
type Upload struct {
	ID        int64     `json:"id"`
	Filename  string    `json:"filename"`
	FilePath  string    `json:"filePath"`
	DateStart time.Time `json:"-"`
	DateEnd   time.Time `json:"-"`
	DataType  string    `json:"dataType"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
