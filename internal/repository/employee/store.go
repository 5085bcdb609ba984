// Package employee owns the authoritative collection of employee records.
//
// The collection lives in memory; after every mutation a full snapshot is
// written to the configured snapshot.Snapshotter. A failed write is logged
// and counted but never undoes the in-memory change.
package employee

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/metrics"
	"github.com/apper-canvas/employee-registry-backend/internal/repository/snapshot"
)

const defaultFlushTimeout = 5 * time.Second

type Store struct {
	mu         sync.RWMutex
	records    []dto.EmployeeRecord
	generation uint64

	// flushMu serializes snapshot writes; flushed is the newest generation
	// known to be durable.
	flushMu      sync.Mutex
	flushed      uint64
	lastFlushErr error

	snap         snapshot.Snapshotter
	seed         []dto.EmployeeRecord
	flushTimeout time.Duration
	now          func() time.Time
	newID        func() string
	log          zerolog.Logger
}

type Option func(*Store)

// WithSeed sets the records used when no snapshot can be loaded.
func WithSeed(records []dto.EmployeeRecord) Option {
	return func(s *Store) { s.seed = records }
}

// WithFlushTimeout bounds each snapshot write. It never bounds the in-memory change.
func WithFlushTimeout(d time.Duration) Option {
	return func(s *Store) { s.flushTimeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func NewStore(snap snapshot.Snapshotter, opts ...Option) *Store {
	s := &Store{
		snap:         snap,
		flushTimeout: defaultFlushTimeout,
		now:          time.Now,
		newID:        uuid.NewString,
		log:          log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.log = s.log.With().Str("component", "EmployeeStore").Logger()

	return s
}

// Init replaces the collection with the durable snapshot. When there is no
// snapshot, or it cannot be read or parsed, the seed set is used instead.
// Init never fails.
func (s *Store) Init(ctx context.Context) {
	records := cloneAll(s.seed)
	source := "seed"

	payload, err := s.snap.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
		s.log.Info().Msg("no snapshot found, starting from seed")
	case err != nil:
		s.log.Warn().Err(err).Msg("snapshot load failed, starting from seed")
	default:
		loaded, derr := snapshot.Decode(payload)
		if derr != nil {
			s.log.Warn().Err(derr).Int("bytes", len(payload)).Msg("snapshot parse failed, starting from seed")
			break
		}
		records = loaded
		source = "snapshot"
	}

	s.mu.Lock()
	s.records = records
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	// what was just loaded is already durable
	if source == "snapshot" {
		s.flushMu.Lock()
		s.flushed = gen
		s.flushMu.Unlock()
	}

	metrics.StoredRecords.Set(float64(len(records)))
	s.log.Info().Str("source", source).Int("records", len(records)).Msg("employee store initialized")
}

func (s *Store) GetAll(_ context.Context) []dto.EmployeeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAll(s.records)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *Store) GetByID(_ context.Context, id string) (dto.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return dto.EmployeeRecord{}, dto.ErrNotFound
	}

	return s.records[i].Clone(), nil
}

// FindByUniqueKey looks a record up by employeeId or (case-insensitive) email.
func (s *Store) FindByUniqueKey(_ context.Context, key dto.UniqueKey, value string) (dto.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value = strings.TrimSpace(value)
	for i := range s.records {
		if keyMatches(key, s.records[i], value) {
			return s.records[i].Clone(), nil
		}
	}

	return dto.EmployeeRecord{}, dto.ErrNotFound
}

// Search is a case-insensitive substring match over name, employee id,
// email, department and designation. An empty query matches everything.
func (s *Store) Search(_ context.Context, query string) []dto.EmployeeRecord {
	term := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.EmployeeRecord, 0)
	for _, rec := range s.records {
		if term == "" ||
			strings.Contains(strings.ToLower(rec.FullName), term) ||
			strings.Contains(strings.ToLower(rec.EmployeeID), term) ||
			strings.Contains(strings.ToLower(rec.Email), term) ||
			strings.Contains(strings.ToLower(rec.Department), term) ||
			strings.Contains(strings.ToLower(rec.Designation), term) {
			out = append(out, rec.Clone())
		}
	}

	return out
}

func (s *Store) ByDepartment(_ context.Context, department string) []dto.EmployeeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dto.EmployeeRecord, 0)
	for _, rec := range s.records {
		if strings.EqualFold(rec.Department, strings.TrimSpace(department)) {
			out = append(out, rec.Clone())
		}
	}

	return out
}

// Create checks employeeId then email against the current collection and,
// only if both are free, appends the record with a fresh id and submittedAt.
func (s *Store) Create(ctx context.Context, candidate dto.EmployeeRecord) (dto.EmployeeRecord, error) {
	s.mu.Lock()

	if err := s.checkUnique(candidate, "", dto.KeyEmployeeID, dto.KeyEmail); err != nil {
		s.mu.Unlock()
		metrics.StoreOperations.WithLabelValues("create", "duplicate").Inc()
		return dto.EmployeeRecord{}, err
	}

	rec := candidate.Clone()
	rec.ID = s.newID()
	rec.SubmittedAt = s.now().UTC()
	rec.UpdatedAt = nil

	s.records = append(s.records, rec)
	gen, state := s.commit()
	s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("create", "ok").Inc()
	s.log.Info().Str("record_id", rec.ID).Str("employee_id", rec.EmployeeID).Msg("employee created")

	s.flush(ctx, gen, state)

	return rec.Clone(), nil
}

// Update applies patch to the record with the given id. A changed employeeId
// or email is checked against every other record first.
func (s *Store) Update(ctx context.Context, id string, patch dto.EmployeePatch) (dto.EmployeeRecord, error) {
	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		metrics.StoreOperations.WithLabelValues("update", "not_found").Inc()
		return dto.EmployeeRecord{}, dto.ErrNotFound
	}

	prev := s.records[i]
	rec := prev.Clone()
	patch.Apply(&rec)

	var changed []dto.UniqueKey
	if rec.EmployeeID != prev.EmployeeID {
		changed = append(changed, dto.KeyEmployeeID)
	}
	if !strings.EqualFold(rec.Email, prev.Email) {
		changed = append(changed, dto.KeyEmail)
	}

	if err := s.checkUnique(rec, id, changed...); err != nil {
		s.mu.Unlock()
		metrics.StoreOperations.WithLabelValues("update", "duplicate").Inc()
		return dto.EmployeeRecord{}, err
	}

	updatedAt := s.now().UTC()
	rec.UpdatedAt = &updatedAt
	s.records[i] = rec
	gen, state := s.commit()
	s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("update", "ok").Inc()
	s.log.Info().Str("record_id", id).Msg("employee updated")

	s.flush(ctx, gen, state)

	return rec.Clone(), nil
}

// Delete removes the record and returns what was removed.
func (s *Store) Delete(ctx context.Context, id string) (dto.EmployeeRecord, error) {
	s.mu.Lock()

	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		metrics.StoreOperations.WithLabelValues("delete", "not_found").Inc()
		return dto.EmployeeRecord{}, dto.ErrNotFound
	}

	removed := s.records[i]
	s.records = append(s.records[:i:i], s.records[i+1:]...)
	gen, state := s.commit()
	s.mu.Unlock()

	metrics.StoreOperations.WithLabelValues("delete", "ok").Inc()
	s.log.Info().Str("record_id", id).Msg("employee deleted")

	s.flush(ctx, gen, state)

	return removed, nil
}

// Flush writes the current collection regardless of what was written before
// and reports the outcome. Used on shutdown.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	gen, state := s.commit()
	s.mu.Unlock()

	return s.flush(ctx, gen, state)
}

// Health returns the error of the most recent failed snapshot write, or nil
// once a later write succeeds.
func (s *Store) Health() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	return s.lastFlushErr
}

// commit bumps the generation and copies the state to flush. Callers hold mu.
func (s *Store) commit() (uint64, []dto.EmployeeRecord) {
	s.generation++
	metrics.StoredRecords.Set(float64(len(s.records)))
	return s.generation, cloneAll(s.records)
}

func (s *Store) flush(ctx context.Context, gen uint64, state []dto.EmployeeRecord) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	if gen <= s.flushed {
		// a newer state has already been written
		return nil
	}

	payload, err := snapshot.Encode(state, s.now())
	if err != nil {
		return s.flushFailed(gen, err)
	}

	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flushTimeout)
	defer cancel()

	begin := time.Now()
	err = s.snap.Save(flushCtx, payload)
	metrics.SnapshotFlushDuration.Observe(time.Since(begin).Seconds())
	if err != nil {
		return s.flushFailed(gen, err)
	}

	s.flushed = gen
	s.lastFlushErr = nil

	return nil
}

func (s *Store) flushFailed(gen uint64, err error) error {
	s.lastFlushErr = err
	metrics.SnapshotFlushFailures.Inc()
	s.log.Warn().Err(err).Uint64("generation", gen).Msg("snapshot write failed, keeping in-memory state")

	return err
}

// checkUnique reports the first collision of rec on keys, in order, with any
// record other than selfID. Callers hold mu.
func (s *Store) checkUnique(rec dto.EmployeeRecord, selfID string, keys ...dto.UniqueKey) error {
	for _, key := range keys {
		value := keyValue(key, rec)
		for i := range s.records {
			if s.records[i].ID == selfID && selfID != "" {
				continue
			}
			if keyMatches(key, s.records[i], value) {
				return &dto.DuplicateKeyError{Key: key, Value: value}
			}
		}
	}

	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func keyValue(key dto.UniqueKey, rec dto.EmployeeRecord) string {
	if key == dto.KeyEmail {
		return rec.Email
	}
	return rec.EmployeeID
}

func keyMatches(key dto.UniqueKey, rec dto.EmployeeRecord, value string) bool {
	switch key {
	case dto.KeyEmployeeID:
		return rec.EmployeeID == value
	case dto.KeyEmail:
		return strings.EqualFold(rec.Email, value)
	}
	return false
}

func cloneAll(in []dto.EmployeeRecord) []dto.EmployeeRecord {
	out := make([]dto.EmployeeRecord, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
