package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"numerologyx/internal/config"
	"numerologyx/internal/logging"
	"numerologyx/internal/types"
)

// Persisted keys. The names are stable so existing state survives upgrades.
const (
	KeyCoreReport    = "numerology_report"
	KeyIdentity      = "numerology_user_data"
	KeyProfileTraits = "numerology_profile_traits"
	KeyDailyPulse    = "dailyReport"
)

// DatedPulse is the stored daily pulse together with the local date it was
// generated for.
type DatedPulse struct {
	Date string           `json:"date"`
	Data types.DailyPulse `json:"data"`
}

// Store is the typed view over a KV.
type Store struct {
	kv KV
}

// New wraps kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Open builds the backend selected by cfg.
func Open(cfg config.StoreConfig) (*Store, error) {
	var (
		kv  KV
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		kv = NewMemoryKV()
	case config.BackendSQLite, "":
		kv, err = NewSQLiteKV(cfg.DatabasePath, cfg.Profile)
	case config.BackendRedis:
		kv, err = NewRedisKV(cfg.RedisAddr, cfg.RedisDB, cfg.Profile)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return New(kv), nil
}

// KV returns the underlying key-value space.
func (s *Store) KV() KV {
	return s.kv
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.kv.Close()
}

// SaveCoreReport persists the report and the identity it was computed for.
func (s *Store) SaveCoreReport(ctx context.Context, id types.Identity, report *types.CoreReport) error {
	if report == nil {
		return fmt.Errorf("nil core report")
	}
	if err := s.putJSON(ctx, KeyCoreReport, report); err != nil {
		return err
	}
	return s.putJSON(ctx, KeyIdentity, id)
}

// LoadCoreReport returns the persisted identity and report. Both are
// required: if either is absent or unreadable, ok is false.
func (s *Store) LoadCoreReport(ctx context.Context) (types.Identity, *types.CoreReport, bool, error) {
	var report types.CoreReport
	ok, err := s.getJSON(ctx, KeyCoreReport, &report)
	if err != nil || !ok {
		return types.Identity{}, nil, false, err
	}
	var id types.Identity
	ok, err = s.getJSON(ctx, KeyIdentity, &id)
	if err != nil || !ok {
		return types.Identity{}, nil, false, err
	}
	if id.Validate() != nil || report.Validate() != nil {
		logging.StoreWarn("Discarding persisted report: stored identity or report is incomplete")
		return types.Identity{}, nil, false, nil
	}
	return id, &report, true, nil
}

// SaveProfileTraits persists the traits.
func (s *Store) SaveProfileTraits(ctx context.Context, traits *types.ProfileTraits) error {
	if traits == nil {
		return s.kv.Delete(ctx, KeyProfileTraits)
	}
	return s.putJSON(ctx, KeyProfileTraits, traits)
}

// LoadProfileTraits returns the persisted traits, if any.
func (s *Store) LoadProfileTraits(ctx context.Context) (*types.ProfileTraits, bool, error) {
	var traits types.ProfileTraits
	ok, err := s.getJSON(ctx, KeyProfileTraits, &traits)
	if err != nil || !ok {
		return nil, false, err
	}
	return &traits, true, nil
}

// SaveDailyPulse persists the pulse generated for date.
func (s *Store) SaveDailyPulse(ctx context.Context, date string, pulse types.DailyPulse) error {
	return s.putJSON(ctx, KeyDailyPulse, DatedPulse{Date: date, Data: pulse})
}

// LoadDailyPulse returns the stored dated pulse, if any.
func (s *Store) LoadDailyPulse(ctx context.Context) (*DatedPulse, bool, error) {
	var dp DatedPulse
	ok, err := s.getJSON(ctx, KeyDailyPulse, &dp)
	if err != nil || !ok {
		return nil, false, err
	}
	return &dp, true, nil
}

// SessionKeys lists the keys written for one identity.
var SessionKeys = []string{KeyCoreReport, KeyIdentity, KeyProfileTraits, KeyDailyPulse}

// Clear removes the session keys. Other keys in the profile survive.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKeys...); err != nil {
		return err
	}
	logging.Store("Cleared persisted session")
	return nil
}

// Purge removes every key in the profile.
func (s *Store) Purge(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return err
	}
	logging.Store("Purged profile")
	return nil
}

func (s *Store) putJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return err
	}
	logging.StoreDebug("Saved %s (%d bytes)", key, len(data))
	return nil
}

// getJSON decodes key into v. Corrupt values are treated as absent.
func (s *Store) getJSON(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		logging.StoreWarn("Ignoring corrupt value for %s: %v", key, err)
		return false, nil
	}
	return true, nil
}
