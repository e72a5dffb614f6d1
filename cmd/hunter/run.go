package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aidhunter-engine/internal/config"
	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/generator"
	"aidhunter-engine/internal/notifier"
	"aidhunter-engine/internal/pipeline"
	"aidhunter-engine/internal/profile"
	"aidhunter-engine/internal/rank"
	"aidhunter-engine/internal/scheduler"
	"aidhunter-engine/internal/secrets"
	"aidhunter-engine/internal/source"
	"aidhunter-engine/internal/source/board"
	"aidhunter-engine/internal/source/emailalert"
	"aidhunter-engine/internal/source/reliefweb"
	"aidhunter-engine/internal/source/unjobs"
	"aidhunter-engine/internal/store"
)

var (
	runEvery  time.Duration
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, score and persist postings, then notify and draft cover letters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return runMain()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runEvery, "every", 0, "keep running on this interval (e.g. 6h); default is a single run")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "score and report but skip persistence side effects (digest, cover letters)")
}

func runMain() error {
	log := newLogger()
	defer log.Sync()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prof, err := profile.Load(resolvePath(cfg.App.DataDir, cfg.App.ProfilePath))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runEvery > 0 {
		log.Info("starting scheduled runs", zap.Duration("every", runEvery))
		scheduler.Every(ctx, runEvery, "hunt", log, func(ctx context.Context) error {
			return runOnce(ctx, cfg, prof, log)
		})
		return nil
	}
	return runOnce(ctx, cfg, prof, log)
}

func runOnce(ctx context.Context, cfg config.Config, prof *profile.Profile, log *zap.Logger) error {
	st, err := store.Open(filepath.Join(cfg.App.DataDir, "jobs.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	p := &pipeline.Pipeline{
		Collectors: buildCollectors(cfg, log),
		Store:      st,
		Scorer: rank.New(prof, rank.Weights{
			Title:      cfg.Scoring.Weights.Title,
			Location:   cfg.Scoring.Weights.Location,
			Skills:     cfg.Scoring.Weights.Skills,
			Experience: cfg.Scoring.Weights.Experience,
			Donor:      cfg.Scoring.Weights.Donor,
		},
			rank.WithLocationScores(cfg.Scoring.LocationScores),
			rank.WithExperienceTolerance(cfg.Scoring.ExperienceToleranceYears),
		),
		Thresholds: rank.Thresholds{
			High: cfg.Scoring.Thresholds.High,
			Good: cfg.Scoring.Thresholds.Good,
		},
		RescoreSimilarity: cfg.Scoring.RescoreSimilarity,
		SourceTimeout:     time.Duration(cfg.Sources.TimeoutSeconds) * time.Second,
		Logger:            log,
	}

	res, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if runDryRun {
		log.Info("dry run, skipping digest and cover letters",
			zap.Int("high_matches", len(res.HighMatches)),
			zap.Int("digest_eligible", len(res.DigestEligible)))
		return nil
	}

	// digest first, letters second: the letter status is the terminal one
	letters := 0
	if cfg.Notifier.Enabled {
		sendDigest(ctx, cfg, st, res, log)
	}
	if cfg.Generator.Enabled {
		letters = generateLetters(ctx, cfg, *prof, st, res.HighMatches, log)
	}
	log.Info("run complete",
		zap.String("summary", res.Summary.String()),
		zap.Int("cover_letters", letters))
	return nil
}

func buildCollectors(cfg config.Config, log *zap.Logger) []source.Collector {
	lim := source.NewHostLimiter(cfg.Sources.RequestsPerSec, 1)

	var collectors []source.Collector
	if cfg.Sources.ReliefWeb.Enabled {
		collectors = append(collectors, reliefweb.New(reliefweb.Config{
			Feeds:  cfg.Sources.ReliefWeb.Feeds,
			Donors: cfg.Donors,
		}, lim))
	}
	if cfg.Sources.UNJobs.Enabled {
		collectors = append(collectors, unjobs.New(unjobs.Config{
			Pages:  cfg.Sources.UNJobs.Pages,
			Donors: cfg.Donors,
		}, lim))
	}
	if cfg.Sources.Devex.Enabled {
		collectors = append(collectors, board.Devex(board.Config{
			Pages:  cfg.Sources.Devex.Pages,
			Donors: cfg.Donors,
		}, lim))
	}
	if cfg.Sources.EthioJobs.Enabled {
		collectors = append(collectors, board.EthioJobs(board.Config{
			Pages:  cfg.Sources.EthioJobs.Pages,
			Donors: cfg.Donors,
		}, lim))
	}
	if cfg.Sources.DevelopmentAid.Enabled {
		collectors = append(collectors, board.DevelopmentAid(board.Config{
			Pages:  cfg.Sources.DevelopmentAid.Pages,
			Donors: cfg.Donors,
		}, lim))
	}
	if cfg.Sources.Email.Enabled {
		password, err := secrets.IMAPPassword(cfg)
		if err != nil {
			log.Warn("email source disabled", zap.Error(err))
		} else {
			collectors = append(collectors, emailalert.New(emailalert.Config{
				Host:     cfg.Sources.Email.IMAPHost,
				Username: cfg.Sources.Email.Username,
				Password: password,
				Senders:  cfg.Sources.Email.Senders,
				MaxMsgs:  cfg.Sources.Email.MaxMsgs,
				Donors:   cfg.Donors,
			}))
		}
	}
	return collectors
}

func sendDigest(ctx context.Context, cfg config.Config, st *store.Store, res *pipeline.Result, log *zap.Logger) {
	apiKey, err := secrets.SendGridAPIKey()
	if err != nil {
		log.Warn("digest skipped", zap.Error(err))
		return
	}
	n, err := notifier.New(notifier.Config{
		APIKey:        apiKey,
		From:          cfg.Notifier.From,
		To:            cfg.Notifier.To,
		SubjectPrefix: cfg.Notifier.SubjectPrefix,
		MaxPerSection: cfg.Notifier.MaxPerSection,
	}, log)
	if err != nil {
		log.Warn("digest skipped", zap.Error(err))
		return
	}

	high, good := splitByThreshold(res.DigestEligible, cfg.Scoring.Thresholds.High)
	sent, err := n.SendDigest(ctx, high, good, notifier.DigestStats{
		TotalScanned: res.Summary.Fetched,
		HighMatches:  res.Summary.High,
		GoodMatches:  res.Summary.Good,
	})
	if err != nil {
		log.Error("digest send failed", zap.Error(err))
		return
	}
	for _, fp := range sent {
		if err := st.SetStatus(ctx, fp, domain.StatusDigested); err != nil {
			log.Error("marking record digested", zap.String("fingerprint", fp), zap.Error(err))
		}
	}
}

func generateLetters(ctx context.Context, cfg config.Config, prof profile.Profile, st *store.Store, high []domain.JobRecord, log *zap.Logger) int {
	if len(high) == 0 {
		return 0
	}
	apiKey, err := secrets.GeminiAPIKey()
	if err != nil {
		log.Warn("cover letters skipped", zap.Error(err))
		return 0
	}
	gen, err := generator.New(ctx, apiKey, cfg.Generator.Model, prof, cfg.App.DataDir, log)
	if err != nil {
		log.Warn("cover letters skipped", zap.Error(err))
		return 0
	}

	done := gen.GenerateBatch(ctx, high, cfg.Generator.MaxPerRun)
	for _, fp := range done {
		if err := st.SetStatus(ctx, fp, domain.StatusCoverLetter); err != nil {
			log.Error("marking cover letter", zap.String("fingerprint", fp), zap.Error(err))
		}
	}
	return len(done)
}

func splitByThreshold(recs []domain.JobRecord, high int) (top, rest []domain.JobRecord) {
	for _, r := range recs {
		if r.Score >= high {
			top = append(top, r)
		} else {
			rest = append(rest, r)
		}
	}
	return top, rest
}

func resolvePath(dataDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}
