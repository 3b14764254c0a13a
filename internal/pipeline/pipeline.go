// Package pipeline sequences the daily allocation run: fetch the bank feed,
// upload it to the ledger sink, correlate transactions to acquisition
// identifiers, resolve customers, and request fund allocation. Stages run
// strictly in order; data flows forward only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finops-tools/dailyalloc/internal/allocation"
	"github.com/finops-tools/dailyalloc/internal/bank"
	"github.com/finops-tools/dailyalloc/internal/correlate"
	"github.com/finops-tools/dailyalloc/internal/customer"
	"github.com/finops-tools/dailyalloc/internal/logging"
	"github.com/finops-tools/dailyalloc/internal/notify"
	"github.com/finops-tools/dailyalloc/internal/upload"
)

// Stage names a step of the run. Failed is absorbing: once entered the run
// terminates with the stage's error.
type Stage string

const (
	StageFetching    Stage = "fetching"
	StageUploading   Stage = "uploading"
	StageCorrelating Stage = "correlating"
	StageResolving   Stage = "resolving"
	StageAllocating  Stage = "allocating"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

const defaultResolveLimit = 4

// StageError wraps the error that aborted a run with the stage it occurred
// in. The underlying cause remains reachable through errors.Is/As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Deps carries the collaborators a pipeline run depends on. Production and
// test implementations are interchangeable behind the interfaces.
type Deps struct {
	Feed      bank.Feed
	Sink      upload.Sink
	Customers customer.Resolver
	Allocator allocation.Allocator
	Notifier  notify.Notifier
	Logger    *slog.Logger

	// ResolveLimit bounds concurrent customer resolutions. Zero or negative
	// selects the default.
	ResolveLimit int
}

// Pipeline executes a single daily allocation run.
type Pipeline struct {
	feed         bank.Feed
	sink         upload.Sink
	customers    customer.Resolver
	allocator    allocation.Allocator
	notifier     notify.Notifier
	logger       *slog.Logger
	resolveLimit int
	state        Stage
}

// New validates the collaborator set and constructs a pipeline. A missing
// notifier falls back to the logging stub.
func New(deps Deps) (*Pipeline, error) {
	if deps.Feed == nil {
		return nil, fmt.Errorf("bank feed is required")
	}
	if deps.Sink == nil {
		return nil, fmt.Errorf("upload sink is required")
	}
	if deps.Customers == nil {
		return nil, fmt.Errorf("customer resolver is required")
	}
	if deps.Allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLoggerNotifier(deps.Logger)
	}
	if deps.ResolveLimit <= 0 {
		deps.ResolveLimit = defaultResolveLimit
	}

	return &Pipeline{
		feed:         deps.Feed,
		sink:         deps.Sink,
		customers:    deps.Customers,
		allocator:    deps.Allocator,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		resolveLimit: deps.ResolveLimit,
	}, nil
}

// State reports the stage the most recent run reached. Pipelines execute one
// run at a time; State is not safe against a concurrent Run.
func (p *Pipeline) State() Stage { return p.state }

// Run executes the full allocation flow and returns one outcome per
// allocated transaction. Outcomes with StatusFailed are business-level
// declines and still constitute a successful run. Any stage error aborts the
// run, triggers exactly one failure notification, and is returned wrapped in
// a *StageError.
func (p *Pipeline) Run(ctx context.Context) ([]allocation.Outcome, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	p.state = StageFetching
	txns, err := p.feed.FetchTransactions(ctx)
	if err != nil {
		return nil, p.fail(ctx, logger, runID, StageFetching, err)
	}
	if len(txns) == 0 {
		return nil, p.fail(ctx, logger, runID, StageFetching, errors.New("bank feed returned no transactions"))
	}
	logger.Info("fetched bank transactions", "count", len(txns))

	p.state = StageUploading
	receipt, err := p.sink.Upload(ctx, txns)
	if err != nil {
		return nil, p.fail(ctx, logger, runID, StageUploading, err)
	}
	if receipt.Status != upload.StatusSuccess {
		return nil, p.fail(ctx, logger, runID, StageUploading, fmt.Errorf("upload finished with status %q", receipt.Status))
	}

	p.state = StageCorrelating
	cmap, err := correlate.Transactions(txns)
	if err != nil {
		return nil, p.fail(ctx, logger, runID, StageCorrelating, err)
	}

	p.state = StageResolving
	resolved, err := p.resolveAll(ctx, logger, cmap)
	if err != nil {
		return nil, p.fail(ctx, logger, runID, StageResolving, err)
	}

	submit := cmap.Subset(func(e correlate.Entry) bool { return resolved[e.TransactionID] })
	if submit.Len() == 0 {
		logger.Warn("no resolvable transactions in batch", "skipped", cmap.Len())
		p.state = StageDone
		return nil, nil
	}

	p.state = StageAllocating
	outcomes, err := p.allocator.Allocate(ctx, submit)
	if err != nil {
		return nil, p.fail(ctx, logger, runID, StageAllocating, err)
	}

	p.state = StageDone
	var declined int
	for _, o := range outcomes {
		if o.Status == allocation.StatusFailed {
			declined++
		}
	}
	logger.Info("allocation run complete", "outcomes", len(outcomes), "declined", declined, "skipped", cmap.Len()-submit.Len())
	return outcomes, nil
}

// resolveAll looks up every correlated identifier, fanning calls out across
// resolveLimit goroutines. All resolutions settle before it returns. Absence
// (customer.ErrNotFound) marks the entry unresolved; any other resolver
// error cancels the remaining lookups and fails the stage.
func (p *Pipeline) resolveAll(ctx context.Context, logger *slog.Logger, cmap correlate.Map) (map[string]bool, error) {
	found := make([]bool, cmap.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.resolveLimit)
	for i, entry := range cmap {
		i, entry := i, entry
		g.Go(func() error {
			rec, err := p.customers.Resolve(gctx, entry.AcquisitionID)
			if errors.Is(err, customer.ErrNotFound) {
				logger.Warn("no customer for acquisition id",
					"acquisition_id", entry.AcquisitionID, "transaction_id", entry.TransactionID)
				return nil
			}
			if err != nil {
				return err
			}
			logger.Debug("resolved customer",
				"acquisition_id", entry.AcquisitionID, "customer_id", rec.CustomerID)
			found[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make(map[string]bool, cmap.Len())
	for i, entry := range cmap {
		resolved[entry.TransactionID] = found[i]
	}
	return resolved, nil
}

// fail moves the run to the absorbing Failed state, sends exactly one
// best-effort notification, and returns the original cause wrapped with the
// stage. A notification delivery failure is logged, never returned.
func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, runID string, stage Stage, cause error) error {
	p.state = StageFailed
	logger.Error("pipeline stage failed", "stage", string(stage), "error", cause)

	subject := fmt.Sprintf("Daily allocation run %s failed during %s", runID, stage)
	if nerr := p.notifier.Notify(ctx, subject, cause); nerr != nil {
		logger.Warn("failure notification not fully delivered", "error", nerr)
	}

	return &StageError{Stage: stage, Err: cause}
}
