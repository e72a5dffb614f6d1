// Package source defines the collector boundary. The engine never branches
// on which site produced a record: every collector yields the same
// normalized JobRecord sequence and nothing else.
package source

import (
	"context"

	"aidhunter-engine/internal/domain"
)

// Collector produces job records for one external source. Implementations
// are side-effect free until the pipeline's merge point and must respect ctx
// cancellation; a stalled collector is abandoned at the pipeline's deadline.
type Collector interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.JobRecord, error)
}

// Committer is implemented by collectors that must acknowledge their input
// upstream, such as flagging alert emails seen. The pipeline calls Commit
// only after the run's records have been persisted, so an aborted run leaves
// the input unconsumed and a later run re-reads it.
type Committer interface {
	Commit(ctx context.Context) error
}

// Result is what one collector contributed to a run.
type Result struct {
	Source  string
	Records []domain.JobRecord
	Err     error
}
