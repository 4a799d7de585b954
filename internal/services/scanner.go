package services

import (
	"context"
	"fmt"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
)

// Scanner is the operator-facing scan policy: it validates a typed or
// scanned code and route against the station settings before handing the
// record to the Assembler.
type Scanner struct {
	assembler *Assembler
	repo      ports.PalletRepository
	defaults  domain.StationSettings
	userToken string
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewScanner(
	assembler *Assembler,
	repo ports.PalletRepository,
	defaults domain.StationSettings,
	userToken string,
	log logrus.FieldLogger,
) *Scanner {
	return &Scanner{
		assembler: assembler,
		repo:      repo,
		defaults:  defaults,
		userToken: userToken,
		now:       time.Now,
		log:       log,
	}
}

// Settings returns the effective station settings. A read failure or an
// invalid stored combination falls back to defaults.
func (s *Scanner) Settings(ctx context.Context) domain.StationSettings {
	st, err := s.repo.Settings(ctx, s.defaults)
	if err != nil {
		s.log.WithError(err).Warn("read station settings; using defaults")
		return s.defaults
	}
	if _, err := st.Validate(); err != nil {
		s.log.WithError(err).Warn("stored station settings invalid; using defaults")
		return s.defaults
	}
	return st
}

// Scan validates code and route and appends the resulting record.
func (s *Scanner) Scan(ctx context.Context, code, route string) (domain.PackageRecord, error) {
	settings := s.Settings(ctx)
	rr, err := settings.Validate()
	if err != nil {
		return domain.PackageRecord{}, fmt.Errorf("scan: %w", err)
	}

	brCode, err := domain.ParseBRCode(code)
	if err != nil {
		return domain.PackageRecord{}, fmt.Errorf("scan %q: %w", code, err)
	}

	r, err := domain.ParseRoute(route)
	if err != nil {
		return domain.PackageRecord{}, fmt.Errorf("scan %s: %w", brCode, err)
	}
	if !rr.Contains(r) {
		return domain.PackageRecord{}, fmt.Errorf(
			"scan %s: %w: %s not in %s / %s",
			brCode, domain.ErrRouteOutOfRange, r, rr.Letters(), rr.Numbers(),
		)
	}

	rec := domain.PackageRecord{
		BRCode:   brCode,
		Route:    r.String(),
		Datetime: s.now().UTC(),
	}
	if s.userToken != "" {
		token := s.userToken
		rec.UserToken = &token
	}

	err = s.assembler.AppendIf(ctx, rec, func(recs []domain.PackageRecord) error {
		return domain.NewPallet(settings.MaxPackages, recs).Admit(rec)
	})
	if err != nil {
		return domain.PackageRecord{}, fmt.Errorf("scan %s: %w", brCode, err)
	}
	return rec, nil
}
