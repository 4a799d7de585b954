package services

import (
	"context"
	"errors"
	"fmt"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"

	"github.com/sirupsen/logrus"
)

// Assembler owns the working set: the pallet being built.
// It appends whatever it is given; duplicate and capacity checks belong to
// the scan policy (see Scanner).
type Assembler struct {
	repo    ports.WorkingSetRepository
	counter *Counter
	log     logrus.FieldLogger
}

func NewAssembler(repo ports.WorkingSetRepository, counter *Counter, log logrus.FieldLogger) *Assembler {
	return &Assembler{repo: repo, counter: counter, log: log}
}

// AlreadyInWorkingSet matches brCode case-insensitively. A storage read
// failure is logged and reported as "not present".
func (a *Assembler) AlreadyInWorkingSet(ctx context.Context, brCode string) bool {
	recs, err := a.repo.WorkingSet(ctx)
	if err != nil {
		a.log.WithError(err).Warn("read working set")
		return false
	}
	return domain.NewPallet(0, recs).Contains(brCode)
}

// Append persists rec at the end of the working set. A nil rec is a no-op.
func (a *Assembler) Append(ctx context.Context, rec *domain.PackageRecord) error {
	if rec == nil {
		return nil
	}
	if err := a.repo.AppendPackage(ctx, *rec); err != nil {
		a.log.WithError(err).WithField("br_code", rec.BRCode).Error("append to working set")
		return fmt.Errorf("assembler: %w", err)
	}
	a.counter.Changed()
	return nil
}

// AppendIf persists rec only when admit accepts the current working set. The
// check and the write happen under the repository's lock, so two concurrent
// scans cannot both pass it. Rejections from admit are returned as is.
func (a *Assembler) AppendIf(ctx context.Context, rec domain.PackageRecord, admit func([]domain.PackageRecord) error) error {
	err := a.repo.AppendPackageIf(ctx, rec, admit)
	if errors.Is(err, domain.ErrDuplicatePackage) || errors.Is(err, domain.ErrPalletFull) {
		return err
	}
	if err != nil {
		a.log.WithError(err).WithField("br_code", rec.BRCode).Error("append to working set")
		return fmt.Errorf("assembler: %w", err)
	}
	a.counter.Changed()
	return nil
}

// Remove drops one package from the working set.
func (a *Assembler) Remove(ctx context.Context, brCode string) (bool, error) {
	removed, err := a.repo.RemovePackage(ctx, brCode)
	if err != nil {
		a.log.WithError(err).WithField("br_code", brCode).Error("remove from working set")
		return false, fmt.Errorf("assembler: %w", err)
	}
	if removed {
		a.counter.Changed()
	}
	return removed, nil
}

// Clear removes the persisted working set.
func (a *Assembler) Clear(ctx context.Context) error {
	if err := a.repo.ClearWorkingSet(ctx); err != nil {
		a.log.WithError(err).Error("clear working set")
		return fmt.Errorf("assembler: %w", err)
	}
	a.counter.Changed()
	return nil
}

// WorkingSet returns the current records; read failures yield an empty set.
func (a *Assembler) WorkingSet(ctx context.Context) []domain.PackageRecord {
	recs, err := a.repo.WorkingSet(ctx)
	if err != nil {
		a.log.WithError(err).Warn("read working set")
		return []domain.PackageRecord{}
	}
	return recs
}
