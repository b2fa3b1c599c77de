package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/crholidays/voucher-standardizer/constants"
	"github.com/crholidays/voucher-standardizer/internal/entity"
	"github.com/crholidays/voucher-standardizer/internal/ocr"
)

// Session carries the intermediate results of one document through the
// stages. A failed stage leaves the results of earlier stages in place so
// it can be retried alone.
type Session struct {
	ID        string
	FileName  string
	Status    constants.StageStatus
	CreatedAt time.Time

	Extraction ocr.ExtractionResult
	Text       string

	Record  *entity.VoucherRecord
	RawJSON []byte // model content, kept for diagnosis on malformed output

	PDF        []byte
	OutputName string

	Err error // error of the last stage run, nil on success
}

func NewSession(fileName string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Status:    constants.StageStatusEmpty,
		CreatedAt: time.Now(),
	}
}

// HasText reports whether stage 1 produced text.
func (s *Session) HasText() bool { return s.Text != "" }

// HasRecord reports whether stage 2 produced a record.
func (s *Session) HasRecord() bool { return s.Record != nil }

// SetRecord installs an externally supplied record (for a render-only run),
// normalizing it first.
func (s *Session) SetRecord(rec entity.VoucherRecord) {
	n := rec.Normalized()
	s.Record = &n
	s.PDF = nil
	s.OutputName = ""
	s.Status = constants.StageStatusNormalized
	s.Err = nil
}

func (s *Session) fail(err error) error {
	s.Status = constants.StageStatusFailed
	s.Err = err
	return err
}
