package services

import (
	"context"
	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"
	"time"

	"github.com/sirupsen/logrus"
)

type StationOptions struct {
	Defaults    domain.StationSettings
	UserToken   string
	Debounce    time.Duration
	CallTimeout time.Duration
	// DrainLock, when set, keeps other processes on the same store from
	// draining at the same time.
	DrainLock ports.Locker
}

// Station wires the queue core for one sorting station. Build one per process.
type Station struct {
	Repo      ports.PalletRepository
	Counter   *Counter
	Assembler *Assembler
	Scanner   *Scanner
	Queue     *SubmissionQueue
	Drainer   *Drainer

	log logrus.FieldLogger
}

func NewStation(
	repo ports.PalletRepository,
	client ports.PalletClient,
	notifier ports.Notifier,
	opts StationOptions,
	log logrus.FieldLogger,
) *Station {
	counter := NewCounter(repo, notifier, opts.Debounce, log)
	assembler := NewAssembler(repo, counter, log)
	drainer := NewDrainer(repo, client, notifier, counter, opts.CallTimeout, log)
	if opts.DrainLock != nil {
		drainer.SetLock(opts.DrainLock)
	}

	return &Station{
		Repo:      repo,
		Counter:   counter,
		Assembler: assembler,
		Scanner:   NewScanner(assembler, repo, opts.Defaults, opts.UserToken, log),
		Queue:     NewSubmissionQueue(repo, counter, func() { drainer.Trigger() }, log),
		Drainer:   drainer,
		log:       log,
	}
}

// Settings returns the effective station settings.
func (s *Station) Settings(ctx context.Context) domain.StationSettings {
	return s.Scanner.Settings(ctx)
}

// SaveSettings validates and persists settings.
func (s *Station) SaveSettings(ctx context.Context, st domain.StationSettings) error {
	return s.Repo.SaveSettings(ctx, st)
}

// Close stops background work and delivers the last counts notification.
func (s *Station) Close() {
	s.Drainer.Close()
	s.Counter.Flush()
	s.Counter.Stop()
}
