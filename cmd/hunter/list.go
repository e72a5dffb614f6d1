package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/store"
)

var (
	listMinScore int
	listStatus   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored postings, best score first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		return listMain()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().IntVar(&listMinScore, "min-score", 0, "only show postings at or above this score")
	listCmd.Flags().StringVar(&listStatus, "status", "", "only show postings with this status (new, scored, skipped, digested, cover_letter_generated)")
}

func listMain() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(filepath.Join(cfg.App.DataDir, "jobs.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Load(context.Background())
	if err != nil {
		return err
	}

	jobs := make([]domain.JobRecord, 0, len(records))
	for _, j := range records {
		if j.Score < listMinScore {
			continue
		}
		if listStatus != "" && string(j.Status) != listStatus {
			continue
		}
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].Score != jobs[k].Score {
			return jobs[i].Score > jobs[k].Score
		}
		return jobs[i].Fingerprint < jobs[k].Fingerprint
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tSTATUS\tTITLE\tORGANIZATION\tLOCATION\tURL")
	for _, j := range jobs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			j.Score, j.Status, j.Title, j.Organization, j.Location, j.URL)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d posting(s)\n", len(jobs))
	return nil
}
