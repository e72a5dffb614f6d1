// Package pipeline sequences one batch run: ingest from all collectors,
// dedup/merge against the store, score the delta, classify, persist
// atomically, and expose the consumer views. Per-source and per-record
// failures are recovered locally; only a persist failure is run-fatal.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aidhunter-engine/internal/domain"
	"aidhunter-engine/internal/rank"
	"aidhunter-engine/internal/source"
	"aidhunter-engine/internal/store"
)

// Storage is the store handle the pipeline needs; the sqlite store satisfies
// it, tests may substitute their own.
type Storage interface {
	AcquireRunLock(ctx context.Context) error
	ReleaseRunLock() error
	Load(ctx context.Context) (map[string]domain.JobRecord, error)
	Persist(ctx context.Context, records map[string]domain.JobRecord) error
}

type Pipeline struct {
	Collectors        []source.Collector
	Store             Storage
	Scorer            *rank.Scorer
	Thresholds        rank.Thresholds
	RescoreSimilarity float64
	SourceTimeout     time.Duration
	Logger            *zap.Logger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Result carries the run summary and the two consumer views.
type Result struct {
	Summary Summary

	// HighMatches is the cover-letter view: high-scoring records the
	// generator has not yet processed.
	HighMatches []domain.JobRecord

	// DigestEligible is the notifier view: good-or-better records not yet
	// digested.
	DigestEligible []domain.JobRecord
}

// Run executes one batch. The returned error is non-nil only for run-fatal
// conditions (store lock, store load, persist).
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	start := now()

	summary := Summary{StartedAt: start}

	incoming := p.ingest(ctx, &summary)
	summary.Fetched = len(incoming)

	if err := p.Store.AcquireRunLock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = p.Store.ReleaseRunLock() }()

	existing, err := p.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store: %w", err)
	}

	mr := store.Merge(existing, incoming, now(), p.RescoreSimilarity)
	summary.New = mr.New
	summary.Updated = mr.Updated

	p.scoreDelta(ctx, mr)
	summary.Scored = len(mr.Changed)

	for _, j := range mr.Records {
		// a row left behind by an interrupted run may still be unscored;
		// counting its zero score as "skipped" would misreport the buckets
		if !j.Scored() {
			continue
		}
		switch rank.Classify(j.Score, p.Thresholds) {
		case rank.BucketHigh:
			summary.High++
		case rank.BucketGood:
			summary.Good++
		default:
			summary.Skipped++
		}
	}

	if err := p.Store.Persist(ctx, mr.Records); err != nil {
		// previous store state remains authoritative
		return nil, fmt.Errorf("persist store: %w", err)
	}

	// only now may collectors consume their upstream input: a commit before
	// this point would drop records on a persist failure
	for _, c := range p.Collectors {
		cm, ok := c.(source.Committer)
		if !ok {
			continue
		}
		if err := cm.Commit(ctx); err != nil {
			p.Logger.Warn("source commit failed",
				zap.String("source", c.Name()), zap.Error(err))
		}
	}

	res := &Result{
		Summary:        summary,
		HighMatches:    p.highView(mr.Records),
		DigestEligible: p.digestView(mr.Records),
	}
	res.Summary.Duration = now().Sub(start)

	p.Logger.Info("run complete",
		zap.Int("sources_ok", summary.SourcesOK),
		zap.Int("sources_failed", summary.SourcesFailed),
		zap.Int("fetched", summary.Fetched),
		zap.Int("new", summary.New),
		zap.Int("updated", summary.Updated),
		zap.Int("scored", summary.Scored),
		zap.Int("high", summary.High),
		zap.Int("good", summary.Good),
		zap.Int("skipped", summary.Skipped),
	)
	return res, nil
}

// ingest fans out over collectors with a per-collector deadline. A failing
// or stalled collector is logged and excluded, never fatal.
func (p *Pipeline) ingest(ctx context.Context, summary *Summary) []domain.JobRecord {
	timeout := p.SourceTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	results := make(chan source.Result, len(p.Collectors))
	var g errgroup.Group

	for _, c := range p.Collectors {
		c := c
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			p.Logger.Debug("collector running", zap.String("source", c.Name()))
			records, err := c.Fetch(cctx)
			results <- source.Result{Source: c.Name(), Records: records, Err: err}
			return nil // best-effort: don't cancel siblings
		})
	}

	_ = g.Wait()
	close(results)

	var out []domain.JobRecord
	for res := range results {
		if res.Err != nil {
			summary.SourcesFailed++
			summary.FailedSources = append(summary.FailedSources, res.Source)
			p.Logger.Warn("collector failed",
				zap.String("source", res.Source), zap.Error(res.Err))
			continue
		}
		summary.SourcesOK++
		p.Logger.Info("collector done",
			zap.String("source", res.Source), zap.Int("records", len(res.Records)))
		out = append(out, res.Records...)
	}
	sort.Strings(summary.FailedSources)
	return out
}

// scoreDelta scores only the new-or-changed records. Factor computations are
// pure functions of (profile, record), so the work parallelizes freely.
func (p *Pipeline) scoreDelta(ctx context.Context, mr store.MergeResult) {
	type scored struct {
		fp        string
		total     int
		breakdown map[string]domain.Factor
		diags     []string
	}

	out := make([]scored, len(mr.Changed))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, fp := range mr.Changed {
		i, fp := i, fp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			total, breakdown, diags := p.Scorer.Score(mr.Records[fp])
			out[i] = scored{fp: fp, total: total, breakdown: breakdown, diags: diags}
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range out {
		if s.fp == "" {
			continue
		}
		rec := mr.Records[s.fp]
		rec.Score = s.total
		rec.Breakdown = s.breakdown
		rec.Diagnostics = s.diags
		if rank.Classify(s.total, p.Thresholds) == rank.BucketSkipped {
			rec.Status = domain.StatusSkipped
		} else {
			rec.Status = domain.StatusScored
		}
		mr.Records[s.fp] = rec

		p.Logger.Debug("scored record",
			zap.String("fingerprint", s.fp),
			zap.String("title", rec.Title),
			zap.Int("score", s.total),
			zap.String("factors", rank.Explain(s.breakdown)))

		for _, d := range s.diags {
			p.Logger.Debug("record degraded",
				zap.String("fingerprint", s.fp), zap.String("diagnostic", d))
		}
	}
}

// highView returns cover-letter-eligible records the generator has not yet
// processed, best score first.
func (p *Pipeline) highView(records map[string]domain.JobRecord) []domain.JobRecord {
	var out []domain.JobRecord
	for _, j := range records {
		if j.Score < p.Thresholds.High {
			continue
		}
		if j.Status == domain.StatusScored || j.Status == domain.StatusDigested {
			out = append(out, j)
		}
	}
	sortByScore(out)
	return out
}

// digestView returns digest-eligible records not yet digested. Digested and
// cover-lettered records are both excluded: cover-letter generation happens
// after the digest send in a run, so that status implies the record has
// already been through a digest batch.
func (p *Pipeline) digestView(records map[string]domain.JobRecord) []domain.JobRecord {
	var out []domain.JobRecord
	for _, j := range records {
		if j.Score < p.Thresholds.Good {
			continue
		}
		if j.Status == domain.StatusScored {
			out = append(out, j)
		}
	}
	sortByScore(out)
	return out
}

func sortByScore(records []domain.JobRecord) {
	sort.Slice(records, func(i, k int) bool {
		if records[i].Score != records[k].Score {
			return records[i].Score > records[k].Score
		}
		return records[i].Fingerprint < records[k].Fingerprint
	})
}
