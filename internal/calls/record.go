package calls

import "errors"

// StorageKey is the key-value entry holding the serialized collection.
const StorageKey = "callHighlights_transcripts"

// UnknownCompany replaces an empty company name at creation time.
const UnknownCompany = "Unknown"

// DateLayout is the calendar date format of CallRecord.Date.
const DateLayout = "2006-01-02"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyTranscript is returned by Create when the transcript is blank.
	ErrEmptyTranscript = errors.New("transcript must not be empty")
)

// CallRecord is one saved call transcript.
type CallRecord struct {
	ID         int64  `json:"id" yaml:"id"`
	Date       string `json:"date" yaml:"date"`
	Company    string `json:"company" yaml:"company"`
	Transcript string `json:"transcript" yaml:"transcript"`
}
