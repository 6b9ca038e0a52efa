package session

import (
	"sync"
	"time"

	"tabreport/domain/core"
	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/errors"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Session is one user's uploaded file and the table selected from it.
// A Session value is never modified after it is stored; updates swap in a
// new value, so callers may read a *Session without holding any lock.
type Session struct {
	ID          core.SessionID `json:"id"`
	FileName    string         `json:"file_name"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Sheets      []string       `json:"sheets"`
	Sheet       string         `json:"sheet"`
	Table       *table.Table   `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	LastAccess  time.Time      `json:"last_access"`

	source []byte
}

// Source returns the uploaded bytes, used to read another sheet.
func (s *Session) Source() []byte { return s.source }

// Upload is the content of a freshly loaded file.
type Upload struct {
	FileName string
	Source   []byte
	Sheets   []string
	Sheet    string
	Table    *table.Table
}

// Store holds sessions keyed by ID.
type Store interface {
	Create(upload Upload) (*Session, error)
	Get(id core.SessionID) (*Session, error)
	Replace(id core.SessionID, upload Upload) (*Session, error)
	SelectSheet(id core.SessionID, sheet string, tbl *table.Table) (*Session, error)
	Delete(id core.SessionID) error
	Purge()
	Len() int
}

// MemoryStore is an in-process Store backed by an expirable LRU cache.
// Sessions expire after ttl without access and the least recently used
// session is evicted when the store is full. mu serialises the
// read-modify-write updates; the cache guards itself.
type MemoryStore struct {
	mu     sync.Mutex
	cache  *expirable.LRU[core.SessionID, *Session]
	logger *internal.Logger
}

// NewMemoryStore creates a store. A zero ttl disables expiry and a zero
// maxSessions disables the size cap.
func NewMemoryStore(ttl time.Duration, maxSessions int) *MemoryStore {
	m := &MemoryStore{logger: internal.DefaultLogger.With("SessionStore")}
	m.cache = expirable.NewLRU[core.SessionID, *Session](maxSessions, m.onEvict, ttl)
	return m
}

func (m *MemoryStore) onEvict(id core.SessionID, s *Session) {
	m.logger.Debug("session %s released (%s)", id, s.FileName)
}

// Create stores a new session, evicting the least recently used one when
// the store is full.
func (m *MemoryStore) Create(upload Upload) (*Session, error) {
	if upload.Table == nil {
		return nil, errors.InternalError("session upload has no table")
	}

	now := time.Now()
	s := &Session{
		ID:          core.NewSessionID(),
		FileName:    upload.FileName,
		Fingerprint: core.NewHash(upload.Source),
		Sheets:      append([]string(nil), upload.Sheets...),
		Sheet:       upload.Sheet,
		Table:       upload.Table,
		CreatedAt:   now,
		LastAccess:  now,
		source:      upload.Source,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if evicted := m.cache.Add(s.ID, s); evicted {
		m.logger.Warn("session limit reached, evicted the least recently used session")
	}
	m.logger.Info("session %s created for %s (%d rows)", s.ID, s.FileName, s.Table.Rows())
	return s, nil
}

// Get returns a live session and refreshes its idle timer.
func (m *MemoryStore) Get(id core.SessionID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return nil, err
	}
	touched := *s
	touched.LastAccess = time.Now()
	m.cache.Add(id, &touched)
	return &touched, nil
}

// Replace swaps a session's file for a new upload, keeping its ID.
func (m *MemoryStore) Replace(id core.SessionID, upload Upload) (*Session, error) {
	if upload.Table == nil {
		return nil, errors.InternalError("session upload has no table")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return nil, err
	}
	replaced := &Session{
		ID:          s.ID,
		FileName:    upload.FileName,
		Fingerprint: core.NewHash(upload.Source),
		Sheets:      append([]string(nil), upload.Sheets...),
		Sheet:       upload.Sheet,
		Table:       upload.Table,
		CreatedAt:   s.CreatedAt,
		LastAccess:  time.Now(),
		source:      upload.Source,
	}
	m.cache.Add(id, replaced)
	m.logger.Info("session %s replaced with %s", id, upload.FileName)
	return replaced, nil
}

// SelectSheet swaps in the table read from another sheet of the same file.
func (m *MemoryStore) SelectSheet(id core.SessionID, sheet string, tbl *table.Table) (*Session, error) {
	if tbl == nil {
		return nil, errors.InternalError("sheet selection has no table")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.live(id)
	if err != nil {
		return nil, err
	}
	updated := *s
	updated.Sheet = sheet
	updated.Table = tbl
	updated.LastAccess = time.Now()
	m.cache.Add(id, &updated)
	return &updated, nil
}

// Delete discards a session.
func (m *MemoryStore) Delete(id core.SessionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.live(id); err != nil {
		return err
	}
	m.cache.Remove(id)
	return nil
}

// Purge discards every session.
func (m *MemoryStore) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Purge()
}

// Len returns the number of stored sessions. Expired sessions count until
// the cache's background cleanup removes them.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}

// live returns an unexpired session. The cache never serves an expired
// entry, even before its cleanup runs.
func (m *MemoryStore) live(id core.SessionID) (*Session, error) {
	s, ok := m.cache.Peek(id)
	if !ok {
		return nil, errors.SessionNotFound(id.String())
	}
	return s, nil
}
