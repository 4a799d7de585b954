package repositories

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"pallet-queue-service/internal/domain"
	"pallet-queue-service/internal/ports"

	"gopkg.in/yaml.v3"
)

// StationSeed is the YAML document accepted by SeedFromYAML.
type StationSeed struct {
	MaxPackages int    `yaml:"max_packages"`
	LetterRange string `yaml:"letter_range"`
	NumberRange string `yaml:"number_range"`
	Packages    []struct {
		BRCode string `yaml:"br_code"`
		Route  string `yaml:"route"`
	} `yaml:"packages"`
}

// SeedFromYAML persists station settings from yamlPath, then appends any
// listed packages to the working set. Missing settings keep defaults.
func SeedFromYAML(ctx context.Context, repo ports.PalletRepository, defaults domain.StationSettings, yamlPath string) error {
	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("seed station: read %q: %w", yamlPath, err)
	}

	var seed StationSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed station: parse yaml: %w", err)
	}

	st := defaults
	if seed.MaxPackages != 0 {
		st.MaxPackages = seed.MaxPackages
	}
	if s := strings.TrimSpace(seed.LetterRange); s != "" {
		st.LetterRange = s
	}
	if s := strings.TrimSpace(seed.NumberRange); s != "" {
		st.NumberRange = s
	}
	rr, err := st.Validate()
	if err != nil {
		return fmt.Errorf("seed station: %w", err)
	}

	recs := make([]domain.PackageRecord, 0, len(seed.Packages))
	for i, p := range seed.Packages {
		code, err := domain.ParseBRCode(p.BRCode)
		if err != nil {
			return fmt.Errorf("seed station: package #%d: %w", i+1, err)
		}
		route, err := domain.ParseRoute(p.Route)
		if err != nil {
			return fmt.Errorf("seed station: package #%d: %w", i+1, err)
		}
		if !rr.Contains(route) {
			return fmt.Errorf("seed station: package #%d: %w: %s", i+1, domain.ErrRouteOutOfRange, route)
		}
		recs = append(recs, domain.PackageRecord{BRCode: code, Route: route.String(), Datetime: time.Now().UTC()})
	}
	if len(recs) > st.MaxPackages {
		return fmt.Errorf("seed station: %d packages exceed max packages %d: %w", len(recs), st.MaxPackages, domain.ErrPalletFull)
	}

	if err := repo.SaveSettings(ctx, st); err != nil {
		return fmt.Errorf("seed station: %w", err)
	}
	for _, rec := range recs {
		if err := repo.AppendPackage(ctx, rec); err != nil {
			return fmt.Errorf("seed station: %w", err)
		}
	}
	return nil
}
