package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	w := cfg.Scoring.Weights
	for name, v := range map[string]float64{
		"title": w.Title, "location": w.Location, "skills": w.Skills,
		"experience": w.Experience, "donor": w.Donor,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("scoring.weights.%s must be in [0,1]", name))
		}
	}
	sum := w.Title + w.Location + w.Skills + w.Experience + w.Donor
	if math.Abs(sum-1.0) > 1e-9 {
		errs = append(errs, fmt.Sprintf("scoring.weights must sum to 1.0, got %.4f", sum))
	}

	th := cfg.Scoring.Thresholds
	if th.Good < 0 || th.Good > 100 || th.High < 0 || th.High > 100 {
		errs = append(errs, "scoring.thresholds must be in 0..100")
	}
	if th.Good > th.High {
		errs = append(errs, "scoring.thresholds.good must not exceed scoring.thresholds.high")
	}

	if cfg.Scoring.ExperienceToleranceYears <= 0 {
		errs = append(errs, "scoring.experience_tolerance_years must be > 0")
	}
	if cfg.Scoring.RescoreSimilarity < 0 || cfg.Scoring.RescoreSimilarity > 1 {
		errs = append(errs, "scoring.rescore_similarity must be in [0,1]")
	}
	for loc, v := range cfg.Scoring.LocationScores {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("scoring.location_scores[%q] must be in [0,1]", loc))
		}
	}

	if cfg.Sources.TimeoutSeconds <= 0 {
		errs = append(errs, "sources.timeout_seconds must be > 0")
	}
	if cfg.Sources.Email.Enabled {
		if cfg.Sources.Email.IMAPHost == "" {
			errs = append(errs, "sources.email.imap_host is required when email source is enabled")
		}
		if cfg.Sources.Email.Username == "" {
			errs = append(errs, "sources.email.username is required when email source is enabled")
		}
	}
	if cfg.Notifier.Enabled && cfg.Notifier.To == "" {
		errs = append(errs, "notifier.to is required when notifier is enabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
