package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Runner fans digest assembly out across recipients. Recipients share no
// mutable state during a run, so workers proceed without locking beyond the
// result map; one recipient's failure never touches its siblings.
type Runner struct {
	Assembler  Assembler
	Items      *ItemStore
	Recipients *RecipientDirectory
	Workers    int
	Logger     *slog.Logger
}

// NewRunner constructs a Runner over the given stores.
func NewRunner(assembler Assembler, items *ItemStore, recipients *RecipientDirectory, logger *slog.Logger) (*Runner, error) {
	if items == nil {
		return nil, errors.New("pipeline: runner requires an item store")
	}
	if recipients == nil {
		return nil, errors.New("pipeline: runner requires a recipient directory")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		Assembler:  assembler,
		Items:      items,
		Recipients: recipients,
		Workers:    defaultWorkers,
		Logger:     logger,
	}, nil
}

// RunAll assembles a digest per selected recipient and returns the
// recipientID -> rendered text mapping. Ordering between recipients is not
// defined. Cancelling the context stops scheduling further recipients;
// digests already collected remain valid.
func (r *Runner) RunAll(ctx context.Context, recipientIDs []string, windowDays int) (map[string]string, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("pipeline: windowDays must be positive, got %d", windowDays)
	}

	recipients := r.Recipients.Select(recipientIDs)
	corpus := r.Items.All()

	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make(map[string]string, len(recipients))
	var mu sync.Mutex

	var group errgroup.Group
	group.SetLimit(workers)

	for _, recipient := range recipients {
		recipient := recipient
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			text := r.assembleOne(ctx, corpus, recipient, windowDays)
			mu.Lock()
			results[recipient.ID] = text
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failures are substituted per recipient.
	_ = group.Wait()

	return results, nil
}

// assembleOne isolates a single recipient's digest generation. Both returned
// errors and panics degrade to the fixed error notice.
func (r *Runner) assembleOne(ctx context.Context, corpus []Item, recipient Recipient, windowDays int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Error("digest assembly panicked", "recipient", recipient.ID, "panic", rec)
			text = errorNotice
		}
	}()

	digest, err := r.Assembler.Assemble(ctx, corpus, recipient, windowDays)
	if err != nil {
		r.Logger.Error("digest assembly failed", "recipient", recipient.ID, "error", err)
		return errorNotice
	}
	return digest.Text
}
