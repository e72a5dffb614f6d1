package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir     string `yaml:"data_dir"`
		ProfilePath string `yaml:"profile_path"`
	} `yaml:"app"`

	Scoring struct {
		Weights struct {
			Title      float64 `yaml:"title"`
			Location   float64 `yaml:"location"`
			Skills     float64 `yaml:"skills"`
			Experience float64 `yaml:"experience"`
			Donor      float64 `yaml:"donor"`
		} `yaml:"weights"`
		Thresholds struct {
			High int `yaml:"high"` // cover-letter eligible
			Good int `yaml:"good"` // digest eligible
		} `yaml:"thresholds"`
		ExperienceToleranceYears int `yaml:"experience_tolerance_years"`
		// RescoreSimilarity is the description-similarity floor below which
		// a merged record is considered materially changed and re-scored.
		RescoreSimilarity float64            `yaml:"rescore_similarity"`
		LocationScores    map[string]float64 `yaml:"location_scores"`
	} `yaml:"scoring"`

	// Donors is the vocabulary used to derive donor tags from description
	// text at the ingestion boundary.
	Donors []string `yaml:"donors"`

	Sources struct {
		ReliefWeb struct {
			Enabled bool     `yaml:"enabled"`
			Feeds   []string `yaml:"feeds"`
		} `yaml:"reliefweb"`
		UNJobs struct {
			Enabled bool     `yaml:"enabled"`
			Pages   []string `yaml:"pages"`
		} `yaml:"unjobs"`
		Devex struct {
			Enabled bool     `yaml:"enabled"`
			Pages   []string `yaml:"pages"`
		} `yaml:"devex"`
		EthioJobs struct {
			Enabled bool     `yaml:"enabled"`
			Pages   []string `yaml:"pages"`
		} `yaml:"ethiojobs"`
		DevelopmentAid struct {
			Enabled bool     `yaml:"enabled"`
			Pages   []string `yaml:"pages"`
		} `yaml:"developmentaid"`
		Email struct {
			Enabled  bool     `yaml:"enabled"`
			IMAPHost string   `yaml:"imap_host"`
			Username string   `yaml:"username"`
			Senders  []string `yaml:"senders"`
			MaxMsgs  int      `yaml:"max_messages"`
		} `yaml:"email"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RequestsPerSec float64 `yaml:"requests_per_sec"`
	} `yaml:"sources"`

	Generator struct {
		Enabled   bool   `yaml:"enabled"`
		Model     string `yaml:"model"`
		MaxPerRun int    `yaml:"max_per_run"`
	} `yaml:"generator"`

	Notifier struct {
		Enabled       bool   `yaml:"enabled"`
		From          string `yaml:"from"`
		To            string `yaml:"to"`
		SubjectPrefix string `yaml:"subject_prefix"`
		MaxPerSection int    `yaml:"max_per_section"`
	} `yaml:"notifier"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default returns the shipped configuration: 30/20/25/15/10 factor weights,
// 70/50 thresholds, and the aid-sector donor vocabulary.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "data"
	cfg.App.ProfilePath = "profile.yml"

	cfg.Scoring.Weights.Title = 0.30
	cfg.Scoring.Weights.Location = 0.20
	cfg.Scoring.Weights.Skills = 0.25
	cfg.Scoring.Weights.Experience = 0.15
	cfg.Scoring.Weights.Donor = 0.10
	cfg.Scoring.Thresholds.High = 70
	cfg.Scoring.Thresholds.Good = 50
	cfg.Scoring.ExperienceToleranceYears = 5
	cfg.Scoring.RescoreSimilarity = 0.90
	cfg.Scoring.LocationScores = map[string]float64{
		"remote": 0.7,
		"global": 0.6,
	}

	cfg.Donors = []string{
		"USAID", "FCDO", "ECHO", "UNICEF", "UNHCR", "WFP",
		"World Bank", "GIZ", "SIDA", "DANIDA", "EU", "Gates Foundation",
	}

	cfg.Sources.TimeoutSeconds = 120
	cfg.Sources.RequestsPerSec = 0.5
	cfg.Sources.Email.MaxMsgs = 50

	cfg.Sources.Devex.Pages = []string{
		"/jobs/search?filter%5Blocation%5D%5B%5D=Ethiopia",
		"/jobs/search?filter%5Blocation%5D%5B%5D=Kenya",
		"/jobs/search?filter%5Bkeyword%5D=program+manager+africa",
	}
	cfg.Sources.EthioJobs.Pages = []string{
		"/jobs/ngo-and-development",
		"/jobs/management",
		"/jobs/project-management",
	}
	cfg.Sources.DevelopmentAid.Pages = []string{
		"/jobs?country[]=Ethiopia",
		"/jobs?country[]=Kenya",
		"/jobs?country[]=Somalia",
		"/jobs?keyword=program+manager",
	}

	cfg.Generator.Model = "gemini-2.5-pro"
	cfg.Generator.MaxPerRun = 10

	cfg.Notifier.From = "aidhunter@noreply.local"
	cfg.Notifier.SubjectPrefix = "[aidhunter]"
	cfg.Notifier.MaxPerSection = 10

	return cfg
}
