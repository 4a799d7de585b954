package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Well-known keys of the local store.
const (
	KeyWorkingSet  = "currentPallet"
	KeySendQueue   = "palletQueue"
	KeyMaxPackages = "maxPackages"
	KeyLetterRange = "letterRange"
	KeyNumberRange = "numberRange"
)

// JSONPalletRepository keeps the working set and the send queue as JSON arrays
// under two separate keys of any KVStore.
//
// Every read-modify-write runs under one mutex, so concurrent appends from the
// scan path and head removals from the drain worker never lose updates within
// a process. When Locker is set it is held as well, which extends that to
// every process sharing the store. There is no cross-key transaction: callers
// order their writes.
type JSONPalletRepository struct {
	Store  ports.KVStore
	Locker ports.Locker
	Log    logrus.FieldLogger

	mu sync.Mutex
}

func NewJSONPalletRepository(store ports.KVStore, log logrus.FieldLogger) *JSONPalletRepository {
	return &JSONPalletRepository{Store: store, Log: log}
}

// WorkingSet returns the persisted records. A missing key is an empty working set;
// so is an undecodable value, which is logged and will be overwritten by the next append.
func (r *JSONPalletRepository) WorkingSet(ctx context.Context) ([]domain.PackageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadWorkingSet(ctx)
}

func (r *JSONPalletRepository) AppendPackage(ctx context.Context, rec domain.PackageRecord) error {
	return r.AppendPackageIf(ctx, rec, nil)
}

// AppendPackageIf runs admit against the stored records and appends rec only
// when it returns nil. The error from admit is returned unwrapped.
func (r *JSONPalletRepository) AppendPackageIf(ctx context.Context, rec domain.PackageRecord, admit func([]domain.PackageRecord) error) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return fmt.Errorf("append package: %w", err)
	}
	defer unlock()

	recs, err := r.loadWorkingSet(ctx)
	if err != nil {
		return fmt.Errorf("append package: %w", err)
	}
	if admit != nil {
		if err := admit(recs); err != nil {
			return err
		}
	}
	recs = append(recs, rec)

	if err := r.save(ctx, KeyWorkingSet, recs); err != nil {
		return fmt.Errorf("append package %s: %w", rec.BRCode, err)
	}
	return nil
}

func (r *JSONPalletRepository) RemovePackage(ctx context.Context, brCode string) (bool, error) {
	unlock, err := r.lock(ctx)
	if err != nil {
		return false, fmt.Errorf("remove package: %w", err)
	}
	defer unlock()

	norm := domain.NormalizeBRCode(brCode)
	recs, err := r.loadWorkingSet(ctx)
	if err != nil {
		return false, fmt.Errorf("remove package: %w", err)
	}

	kept := recs[:0]
	removed := false
	for _, rec := range recs {
		if !removed && domain.NormalizeBRCode(rec.BRCode) == norm {
			removed = true
			continue
		}
		kept = append(kept, rec)
	}
	if !removed {
		return false, nil
	}

	if err := r.save(ctx, KeyWorkingSet, kept); err != nil {
		return false, fmt.Errorf("remove package %s: %w", norm, err)
	}
	return true, nil
}

func (r *JSONPalletRepository) ClearWorkingSet(ctx context.Context) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return fmt.Errorf("clear working set: %w", err)
	}
	defer unlock()

	if err := r.Store.Delete(ctx, KeyWorkingSet); err != nil {
		return fmt.Errorf("clear working set: %w", err)
	}
	return nil
}

func (r *JSONPalletRepository) SendQueue(ctx context.Context) ([]domain.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadSendQueue(ctx)
}

// Head re-reads the persisted queue on every call; entries pushed while a
// drain pass is running are therefore visible to that pass.
func (r *JSONPalletRepository) Head(ctx context.Context) (domain.QueueEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.loadSendQueue(ctx)
	if err != nil {
		return domain.QueueEntry{}, false, err
	}
	if len(entries) == 0 {
		return domain.QueueEntry{}, false, nil
	}
	return entries[0], true, nil
}

func (r *JSONPalletRepository) PushEntry(ctx context.Context, entry domain.QueueEntry) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return fmt.Errorf("push entry: %w", err)
	}
	defer unlock()

	entries, err := r.loadSendQueue(ctx)
	if err != nil {
		return fmt.Errorf("push entry: %w", err)
	}
	entries = append(entries, entry)

	if err := r.save(ctx, KeySendQueue, entries); err != nil {
		return fmt.Errorf("push entry: %w", err)
	}
	return nil
}

// PopHead removes the head only while it is still entry. It reports false,
// leaving the queue untouched, when another worker already removed it.
func (r *JSONPalletRepository) PopHead(ctx context.Context, entry domain.QueueEntry) (bool, error) {
	unlock, err := r.lock(ctx)
	if err != nil {
		return false, fmt.Errorf("pop head: %w", err)
	}
	defer unlock()

	entries, err := r.loadSendQueue(ctx)
	if err != nil {
		return false, fmt.Errorf("pop head: %w", err)
	}
	if len(entries) == 0 || !entries[0].Same(entry) {
		return false, nil
	}

	rest := entries[1:]
	if len(rest) == 0 {
		if err := r.Store.Delete(ctx, KeySendQueue); err != nil {
			return false, fmt.Errorf("pop head: %w", err)
		}
		return true, nil
	}
	if err := r.save(ctx, KeySendQueue, rest); err != nil {
		return false, fmt.Errorf("pop head: %w", err)
	}
	return true, nil
}

// Settings reads the three station keys. Missing or unparsable values fall back to defaults.
func (r *JSONPalletRepository) Settings(ctx context.Context, defaults domain.StationSettings) (domain.StationSettings, error) {
	out := defaults

	raw, err := r.getString(ctx, KeyMaxPackages)
	if err != nil {
		return defaults, fmt.Errorf("settings: %w", err)
	}
	if raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			r.warn("ignoring invalid stored setting", logrus.Fields{"key": KeyMaxPackages, "value": raw})
		} else {
			out.MaxPackages = n
		}
	}

	if raw, err = r.getString(ctx, KeyLetterRange); err != nil {
		return defaults, fmt.Errorf("settings: %w", err)
	}
	if raw != "" {
		out.LetterRange = raw
	}

	if raw, err = r.getString(ctx, KeyNumberRange); err != nil {
		return defaults, fmt.Errorf("settings: %w", err)
	}
	if raw != "" {
		out.NumberRange = raw
	}

	return out, nil
}

func (r *JSONPalletRepository) SaveSettings(ctx context.Context, s domain.StationSettings) error {
	if _, err := s.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer unlock()

	kv := []struct{ key, value string }{
		{KeyMaxPackages, strconv.Itoa(s.MaxPackages)},
		{KeyLetterRange, s.LetterRange},
		{KeyNumberRange, s.NumberRange},
	}
	for _, p := range kv {
		if err := r.Store.Put(ctx, p.key, []byte(p.value)); err != nil {
			return fmt.Errorf("save settings %s: %w", p.key, err)
		}
	}
	return nil
}

// lock takes the process mutex and then the shared store lock, if any.
func (r *JSONPalletRepository) lock(ctx context.Context) (func(), error) {
	r.mu.Lock()
	if r.Locker == nil {
		return r.mu.Unlock, nil
	}
	if err := r.Locker.Lock(ctx); err != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("lock store: %w", err)
	}
	return func() {
		if err := r.Locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			r.warn("release store lock", logrus.Fields{"error": err.Error()})
		}
		r.mu.Unlock()
	}, nil
}

func (r *JSONPalletRepository) loadWorkingSet(ctx context.Context) ([]domain.PackageRecord, error) {
	raw, err := r.get(ctx, KeyWorkingSet)
	if err != nil || raw == nil {
		return []domain.PackageRecord{}, err
	}

	var recs []domain.PackageRecord
	if err := json.Unmarshal(raw, &recs); err != nil {
		r.warn("working set is not valid JSON; treating as empty", logrus.Fields{"key": KeyWorkingSet, "error": err.Error()})
		return []domain.PackageRecord{}, nil
	}
	if recs == nil {
		recs = []domain.PackageRecord{}
	}
	return recs, nil
}

// loadSendQueue decodes entries one by one. An undecodable entry keeps its slot
// as a zero QueueEntry so the drain worker discards it in order.
func (r *JSONPalletRepository) loadSendQueue(ctx context.Context) ([]domain.QueueEntry, error) {
	raw, err := r.get(ctx, KeySendQueue)
	if err != nil || raw == nil {
		return []domain.QueueEntry{}, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		r.warn("send queue is not valid JSON; treating as empty", logrus.Fields{"key": KeySendQueue, "error": err.Error()})
		return []domain.QueueEntry{}, nil
	}

	entries := make([]domain.QueueEntry, 0, len(items))
	for i, item := range items {
		var e domain.QueueEntry
		if err := json.Unmarshal(item, &e); err != nil {
			r.warn("undecodable send queue entry", logrus.Fields{"index": i, "error": err.Error()})
			e = domain.QueueEntry{}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// get returns nil, nil for a missing key.
func (r *JSONPalletRepository) get(ctx context.Context, key string) ([]byte, error) {
	if r.Store == nil {
		return nil, errors.New("pallet repository: store is nil")
	}
	raw, err := r.Store.Get(ctx, key)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, nil
}

func (r *JSONPalletRepository) getString(ctx context.Context, key string) (string, error) {
	raw, err := r.get(ctx, key)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(raw)), `"`), nil
}

func (r *JSONPalletRepository) save(ctx context.Context, key string, v any) error {
	if r.Store == nil {
		return errors.New("pallet repository: store is nil")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.Store.Put(ctx, key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (r *JSONPalletRepository) warn(msg string, fields logrus.Fields) {
	if r.Log == nil {
		return
	}
	r.Log.WithFields(fields).Warn(msg)
}
