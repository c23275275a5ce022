package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"magnify/internal/engine"
	"magnify/internal/logging"
	"magnify/internal/services"
)

// Invoker runs the upscaling engine for a single request. engine.Invoker is
// the production implementation; tests substitute fakes.
type Invoker interface {
	Upscale(ctx context.Context, req engine.Request) error
}

// scheduler drives a fixed pool of workers over a plan's items. Dispatch is
// round-robin across directories while preserving each directory's internal
// order, so progress lands evenly instead of draining one directory at a
// time.
type scheduler struct {
	workers int
	invoker Invoker
	rc      RunConfig
	logger  *slog.Logger
}

// interleave flattens the plan into dispatch order: the first item of every
// directory, then the second of every directory, and so on.
func interleave(plan *Plan) []WorkItem {
	out := make([]WorkItem, 0, plan.TotalItems)
	for round := 0; len(out) < plan.TotalItems; round++ {
		for _, dp := range plan.Dirs {
			if round < len(dp.Items) {
				out = append(out, dp.Items[round])
			}
		}
	}
	return out
}

// run dispatches every item exactly once and emits one ItemResult per item
// on results, then closes it. Cancelling ctx stops new launches; items not
// yet started are reported as skipped. In-flight engine processes are left
// to finish on their own.
func (s *scheduler) run(ctx context.Context, plan *Plan, results chan<- ItemResult) {
	queue := make(chan WorkItem)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				results <- s.process(ctx, item)
			}
		}()
	}

	items := interleave(plan)
	sent := 0
dispatch:
	for _, item := range items {
		select {
		case queue <- item:
			sent++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(queue)
	wg.Wait()

	// Anything never handed to a worker is skipped, in dispatch order.
	for _, item := range items[sent:] {
		results <- ItemResult{Item: item, Outcome: OutcomeSkipped, Reason: ReasonCancelled}
	}
	close(results)
}

// process runs one item through the invoker, converting panics and errors
// into terminal results so a single bad item never takes down the pool.
func (s *scheduler) process(ctx context.Context, item WorkItem) (res ItemResult) {
	res = ItemResult{Item: item}
	if ctx.Err() != nil {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonCancelled
		return res
	}

	itemCtx := services.WithDirectory(ctx, item.SourceDir)
	log := logging.WithContext(itemCtx, s.logger)

	started := time.Now()
	defer func() {
		res.Elapsed = time.Since(started)
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Reason = ReasonInvokerCrashed
			res.Message = fmt.Sprintf("invoker panic: %v", r)
			log.Error("invoker panicked",
				logging.FieldItem, item.InputPath,
				"panic", fmt.Sprint(r))
		}
	}()

	err := s.invoker.Upscale(itemCtx, engine.Request{
		InputPath:  item.InputPath,
		OutputPath: item.OutputPath,
		Model:      s.rc.Model,
		Scale:      s.rc.Scale,
		Format:     s.rc.Format,
	})
	if err == nil {
		res.Outcome = OutcomeSucceeded
		log.Info("item upscaled",
			logging.FieldItem, item.InputPath,
			logging.FieldOutcome, string(OutcomeSucceeded))
		return res
	}

	reason, code := failureFor(err)
	if reason == ReasonCancelled {
		res.Outcome = OutcomeSkipped
		res.Reason = ReasonCancelled
		return res
	}
	res.Outcome = OutcomeFailed
	res.Reason = reason
	res.ExitCode = code
	res.Message = err.Error()
	log.Warn("item failed",
		logging.FieldItem, item.InputPath,
		logging.FieldOutcome, string(OutcomeFailed),
		"reason", string(reason),
		"error", err.Error())
	return res
}
