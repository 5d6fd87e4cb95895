// Package maintenance holds the background jobs that keep transient state
// tidy. Today that is one periodic job pruning expired session rows.
package maintenance

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

type PruneSessionsArgs struct{}

func (PruneSessionsArgs) Kind() string { return "prune_sessions" }

// SessionPruner is the contract the worker needs from the session store.
type SessionPruner interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type PruneSessionsWorker struct {
	river.WorkerDefaults[PruneSessionsArgs]
	sessions SessionPruner
	log      *slog.Logger
}

func NewPruneSessionsWorker(sessions SessionPruner, log *slog.Logger) *PruneSessionsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &PruneSessionsWorker{sessions: sessions, log: log}
}

func (w *PruneSessionsWorker) Work(ctx context.Context, _ *river.Job[PruneSessionsArgs]) error {
	n, err := w.sessions.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		w.log.Info("pruned expired sessions", "count", n)
	}
	return nil
}
