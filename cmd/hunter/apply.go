package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/generator"
	"aidhunter-engine/internal/profile"
	"aidhunter-engine/internal/secrets"
	"aidhunter-engine/internal/store"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Pick a high match interactively and draft its cover letter",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return applyMain()
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func applyMain() error {
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

	st, err := store.Open(filepath.Join(cfg.App.DataDir, "jobs.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	records, err := st.Load(ctx)
	if err != nil {
		return err
	}

	var candidates []domain.JobRecord
	for _, j := range records {
		if j.Score >= cfg.Scoring.Thresholds.High && j.Status != domain.StatusCoverLetter {
			candidates = append(candidates, j)
		}
	}
	if len(candidates) == 0 {
		fmt.Println("No high matches without a cover letter yet. Run `hunter run` first.")
		return nil
	}
	sort.Slice(candidates, func(i, k int) bool { return candidates[i].Score > candidates[k].Score })

	items := make([]string, len(candidates))
	for i, j := range candidates {
		items[i] = fmt.Sprintf("%3d%%  %s — %s (%s)", j.Score, j.Title, j.Organization, j.Location)
	}

	prompt := promptui.Select{
		Label: "Draft a cover letter for",
		Items: items,
		Size:  10,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return nil
		}
		return err
	}
	job := candidates[idx]

	apiKey, err := secrets.GeminiAPIKey()
	if err != nil {
		return err
	}
	gen, err := generator.New(ctx, apiKey, cfg.Generator.Model, *prof, cfg.App.DataDir, log)
	if err != nil {
		return err
	}

	path, err := gen.Generate(ctx, job)
	if err != nil {
		return err
	}
	if err := st.SetStatus(ctx, job.Fingerprint, domain.StatusCoverLetter); err != nil {
		return err
	}

	fmt.Printf("Cover letter written to %s\n", path)
	return nil
}
