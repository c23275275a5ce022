package assemble

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"magnify/internal/batch"
	"magnify/internal/logging"
	"magnify/internal/naming"
)

// group tracks one directory's outstanding items and its successful output
// paths, kept in discovery-index order regardless of completion order.
type group struct {
	name    string
	pending int
	outputs []string // indexed by WorkItem.Index; empty slot means not succeeded
}

// Aggregator implements batch.Sink. It watches each directory group for
// full resolution and assembles that group's PDF as soon as its last item
// resolves, independently of the other groups. A stop request does not
// affect groups that had already fully resolved.
type Aggregator struct {
	logger   *slog.Logger
	writer   Writer
	parallel int

	mu        sync.Mutex
	enabled   bool
	outputDir string
	groups    map[string]*group
	order     []string
	results   map[string]batch.PDFResult
	eg        *errgroup.Group
}

// NewAggregator builds an aggregator assembling at most parallel PDFs at a
// time. A nil writer selects the pdfcpu-backed default.
func NewAggregator(writer Writer, parallel int, logger *slog.Logger) *Aggregator {
	if writer == nil {
		writer = WritePDF
	}
	if parallel < 1 {
		parallel = 1
	}
	return &Aggregator{
		logger:   logging.NewComponentLogger(logger, "assemble"),
		writer:   writer,
		parallel: parallel,
	}
}

// Begin resets the aggregator for a new run.
func (a *Aggregator) Begin(_ context.Context, plan *batch.Plan, rc batch.RunConfig) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = rc.GeneratePDF
	a.outputDir = rc.OutputDir
	a.groups = make(map[string]*group, len(plan.Dirs))
	a.order = a.order[:0]
	a.results = make(map[string]batch.PDFResult, len(plan.Dirs))
	a.eg = &errgroup.Group{}
	a.eg.SetLimit(a.parallel)
	for _, dp := range plan.Dirs {
		a.order = append(a.order, dp.GroupName)
		a.groups[dp.GroupName] = &group{
			name:    dp.GroupName,
			pending: len(dp.Items),
			outputs: make([]string, len(dp.Items)),
		}
	}
}

// Accept folds one terminal item result into its group. The result that
// brings a group's pending count to zero schedules that group's assembly.
func (a *Aggregator) Accept(_ context.Context, res batch.ItemResult) {
	a.mu.Lock()
	g, ok := a.groups[res.Item.Group]
	if !ok || g.pending == 0 {
		a.mu.Unlock()
		return
	}
	if res.Outcome == batch.OutcomeSucceeded {
		g.outputs[res.Item.Index] = res.Item.OutputPath
	}
	g.pending--
	ready := g.pending == 0
	a.mu.Unlock()

	if ready {
		a.eg.Go(func() error {
			a.finalize(g)
			return nil
		})
	}
}

// Finish waits for in-flight assemblies, settles groups that never reached
// assembly (unreadable or empty directories), and reports one PDFResult per
// group in plan order.
func (a *Aggregator) Finish(_ context.Context) []batch.PDFResult {
	a.mu.Lock()
	var empty []*group
	for _, name := range a.order {
		g := a.groups[name]
		if g.pending == 0 && len(g.outputs) == 0 {
			if _, done := a.results[name]; !done {
				empty = append(empty, g)
			}
		}
	}
	a.mu.Unlock()

	for _, g := range empty {
		a.finalize(g)
	}
	a.eg.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]batch.PDFResult, 0, len(a.order))
	for _, name := range a.order {
		if res, ok := a.results[name]; ok {
			out = append(out, res)
		} else {
			// Group never resolved; only possible if the run ended with
			// pending items, which the scheduler rules out.
			out = append(out, batch.PDFResult{Group: name, Outcome: batch.PDFNoOutput})
		}
	}
	return out
}

// finalize assembles one fully resolved group and records its outcome.
func (a *Aggregator) finalize(g *group) {
	a.mu.Lock()
	enabled := a.enabled
	pdfPath := naming.PDFPath(a.outputDir, g.name)
	pages := make([]string, 0, len(g.outputs))
	for _, p := range g.outputs {
		if p != "" {
			pages = append(pages, p)
		}
	}
	a.mu.Unlock()

	res := batch.PDFResult{Group: g.name}
	switch {
	case !enabled:
		res.Outcome = batch.PDFDisabled
	case len(pages) == 0:
		res.Outcome = batch.PDFNoOutput
		a.logger.Info("no output to assemble", logging.FieldDirectory, g.name)
	default:
		if err := a.writer(pages, pdfPath); err != nil {
			res.Outcome = batch.PDFFailed
			res.Message = err.Error()
			a.logger.Warn("pdf assembly failed",
				logging.FieldDirectory, g.name,
				"pdf", pdfPath,
				"error", err.Error())
		} else {
			res.Outcome = batch.PDFCreated
			res.Path = pdfPath
			res.Pages = len(pages)
			// Prefer the assembled document's own page count when the
			// written file is readable.
			if n, err := PageCount(pdfPath); err == nil {
				res.Pages = n
			}
			a.logger.Info("pdf assembled",
				logging.FieldDirectory, g.name,
				"pdf", pdfPath,
				"pages", res.Pages)
		}
	}

	a.mu.Lock()
	a.results[g.name] = res
	a.mu.Unlock()
}
