package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/internal/seeder/cedict"
	"github.com/heartmarshall/syngdict/internal/seeder/hsk"
	"github.com/heartmarshall/syngdict/pkg/ctxutil"
)

// Fixed phases; sink phases follow in the order sinks were given.
const (
	PhaseParse = "parse"
	PhaseBuild = "build"
)

// Config holds pipeline settings.
type Config struct {
	SourceDir string
	HSKPath   string // optional
	Strict    bool
	Version   string
}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Processed int
	Written   int
	Skipped   int
	Errors    int
	Duration  time.Duration
	Err       error
}

type phase struct {
	name string
	run  func(context.Context) PhaseResult
}

// Pipeline orchestrates parse → build → sinks.
type Pipeline struct {
	log      *slog.Logger
	observer Observer
	cfg      Config
	sinks    []Sink
	now      func() time.Time

	results     map[string]PhaseResult
	order       []string
	entries     []domain.WordEntry
	diagnostics []*domain.LineError
	build       domain.Build
	stats       BuildStats
}

// NewPipeline creates a new Pipeline. A nil observer is replaced by NopObserver.
func NewPipeline(log *slog.Logger, observer Observer, cfg Config, sinks ...Sink) *Pipeline {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Pipeline{
		log:      log,
		observer: observer,
		cfg:      cfg,
		sinks:    sinks,
		now:      time.Now,
		results:  make(map[string]PhaseResult),
	}
}

// Results returns phase results after Run completes.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Phases returns the phases that ran, in order.
func (p *Pipeline) Phases() []string {
	return p.order
}

// Diagnostics returns the malformed lines skipped in lenient mode.
func (p *Pipeline) Diagnostics() []*domain.LineError {
	return p.diagnostics
}

// Build returns the completed build, or a zero Build before the build phase.
func (p *Pipeline) Build() domain.Build {
	return p.build
}

// BuildStats returns statistics of the build phase.
func (p *Pipeline) BuildStats() BuildStats {
	return p.stats
}

// HasErrors returns true if any phase recorded errors.
func (p *Pipeline) HasErrors() bool {
	for _, r := range p.results {
		if r.Err != nil || r.Errors > 0 {
			return true
		}
	}
	return false
}

// Run executes every phase in order and stops at the first failing phase.
// Malformed lines do not fail the parse phase unless Strict is set.
func (p *Pipeline) Run(ctx context.Context) error {
	buildID := uuid.New()
	ctx = ctxutil.WithBuildID(ctx, buildID)
	p.log = p.log.With(slog.String("build_id", buildID.String()))

	phases := []phase{
		{PhaseParse, p.runParse},
		{PhaseBuild, func(context.Context) PhaseResult { return p.runBuild(buildID) }},
	}
	for _, s := range p.sinks {
		phases = append(phases, phase{s.Name(), p.sinkPhase(s)})
	}

	for _, ph := range phases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("before %s: %w", ph.name, err)
		}

		start := time.Now()
		p.observer.PhaseStarted(ph.name)

		result := ph.run(ctxutil.WithPhase(ctx, ph.name))
		result.Duration = time.Since(start)
		p.results[ph.name] = result
		p.order = append(p.order, ph.name)
		p.observer.PhaseFinished(ph.name, result)

		if result.Err != nil {
			return fmt.Errorf("%s: %w", ph.name, result.Err)
		}
	}

	p.log.Info("pipeline completed",
		slog.Int("phases_run", len(p.order)),
		slog.Int("entries", p.stats.Entries),
		slog.Int("diagnostics", len(p.diagnostics)),
	)
	return nil
}

// runParse reads the HSK list, then every source file in name order.
func (p *Pipeline) runParse(_ context.Context) PhaseResult {
	var levels *hsk.List
	if p.cfg.HSKPath != "" {
		l, err := hsk.Parse(p.cfg.HSKPath)
		if err != nil {
			return PhaseResult{Err: fmt.Errorf("load hsk list: %w", err)}
		}
		p.log.Info("hsk list loaded", slog.Int("words", l.Len()))
		levels = l
	}

	parser := &cedict.Parser{
		Levels: levels,
		Strict: p.cfg.Strict,
		OnFile: p.observer.FileParsed,
	}
	res, err := parser.ParseDir(p.cfg.SourceDir)
	if err != nil {
		return PhaseResult{Err: err}
	}

	for _, d := range res.Diagnostics {
		p.observer.LineRejected(d)
	}
	p.entries = res.Entries
	p.diagnostics = res.Diagnostics

	return PhaseResult{
		Processed: res.Stats.ParsedLines,
		Skipped:   res.Stats.CommentLines + res.Stats.BlankLines,
		Errors:    res.Stats.MalformedLines,
	}
}

func (p *Pipeline) runBuild(buildID uuid.UUID) PhaseResult {
	dict, stats, err := BuildDictionary(p.entries)
	if err != nil {
		return PhaseResult{Err: err}
	}
	if err := dict.CheckIntegrity(); err != nil {
		return PhaseResult{Err: fmt.Errorf("integrity: %w", err)}
	}

	p.entries = nil
	p.stats = stats
	p.build = domain.Build{
		ID:         buildID,
		CreatedAt:  p.now().UTC(),
		Version:    p.cfg.Version,
		Dictionary: dict,
	}
	return PhaseResult{Processed: stats.Entries, Written: stats.Refs}
}

func (p *Pipeline) sinkPhase(s Sink) func(context.Context) PhaseResult {
	return func(ctx context.Context) PhaseResult {
		n, err := s.Write(ctx, p.build)
		if err != nil {
			return PhaseResult{Err: err}
		}
		return PhaseResult{Processed: p.stats.Entries, Written: n}
	}
}
