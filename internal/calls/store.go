package calls

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// KV is the key-value storage the Store persists into.
// Implemented by storage.Store.
type KV interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Store keeps the whole call collection under a single key, newest first.
// Every mutation reads the full collection, changes it and writes it back.
// The mutex serializes writers within one process only; two processes
// sharing a database can still overwrite each other (last write wins).
type Store struct {
	kv     KV
	clock  Clock
	logger *slog.Logger

	mu     sync.Mutex
	lastID int64
}

// NewStore creates a Store over kv using the wall clock.
func NewStore(kv KV) *Store {
	return NewStoreWithClock(kv, realClock{})
}

// NewStoreWithClock creates a Store with a custom clock (for testing).
func NewStoreWithClock(kv KV, clock Clock) *Store {
	return &Store{
		kv:     kv,
		clock:  clock,
		logger: slog.Default(),
	}
}

// ListAll returns every record, newest first. A missing, unreadable or
// corrupt collection reads as empty.
func (s *Store) ListAll() []CallRecord {
	records, err := s.load()
	if err != nil {
		s.logger.Warn("treating call collection as empty", "key", StorageKey, "error", err)
		return []CallRecord{}
	}
	return records
}

// Get returns the record with the given id.
func (s *Store) Get(id int64) (CallRecord, error) {
	for _, r := range s.ListAll() {
		if r.ID == id {
			return r, nil
		}
	}
	return CallRecord{}, ErrNotFound
}

// Create prepends a new record and persists the collection. Blank company
// becomes UnknownCompany and blank date becomes today.
func (s *Store) Create(date, company, transcript string) (CallRecord, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return CallRecord{}, ErrEmptyTranscript
	}
	company = strings.TrimSpace(company)
	if company == "" {
		company = UnknownCompany
	}
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.clock.Now().Format(DateLayout)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.ListAll()
	rec := CallRecord{
		ID:         s.nextID(records),
		Date:       date,
		Company:    company,
		Transcript: transcript,
	}

	updated := make([]CallRecord, 0, len(records)+1)
	updated = append(updated, rec)
	updated = append(updated, records...)
	if err := s.save(updated); err != nil {
		return CallRecord{}, err
	}
	s.lastID = rec.ID
	return rec, nil
}

// DeleteByID removes the record with the given id, leaving the order of the
// rest unchanged. Deleting an unknown id is a no-op.
func (s *Store) DeleteByID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.ListAll()
	filtered := make([]CallRecord, 0, len(records))
	for _, r := range records {
		if r.ID != id {
			filtered = append(filtered, r)
		}
	}
	return s.save(filtered)
}

// Clear removes the whole collection.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.RemoveItem(StorageKey); err != nil {
		return fmt.Errorf("clearing calls: %w", err)
	}
	return nil
}

// nextID uses the creation instant in milliseconds, moved past any id that
// is already taken so ids stay unique when two creations share an instant.
func (s *Store) nextID(existing []CallRecord) int64 {
	id := s.clock.Now().UnixMilli()
	floor := s.lastID
	for _, r := range existing {
		if r.ID > floor {
			floor = r.ID
		}
	}
	if id <= floor {
		id = floor + 1
	}
	return id
}

func (s *Store) load() ([]CallRecord, error) {
	raw, ok, err := s.kv.GetItem(StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []CallRecord{}, nil
	}
	var records []CallRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("parsing call collection: %w", err)
	}
	if records == nil {
		records = []CallRecord{}
	}
	return records, nil
}

func (s *Store) save(records []CallRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshalling calls: %w", err)
	}
	if err := s.kv.SetItem(StorageKey, string(data)); err != nil {
		return fmt.Errorf("saving calls: %w", err)
	}
	return nil
}
