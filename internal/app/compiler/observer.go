package compiler

import (
	"log/slog"

	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/internal/seeder/cedict"
)

// Observer receives progress events from a Pipeline. Calls are made
// synchronously from the goroutine running the pipeline.
type Observer interface {
	PhaseStarted(phase string)
	PhaseFinished(phase string, result PhaseResult)
	FileParsed(path string, stats cedict.Stats)
	LineRejected(err *domain.LineError)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) PhaseStarted(string)               {}
func (NopObserver) PhaseFinished(string, PhaseResult) {}
func (NopObserver) FileParsed(string, cedict.Stats)   {}
func (NopObserver) LineRejected(*domain.LineError)    {}

// LogObserver reports events through a structured logger.
type LogObserver struct {
	log *slog.Logger
}

// NewLogObserver creates an observer that logs to log.
func NewLogObserver(log *slog.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) PhaseStarted(phase string) {
	o.log.Info("starting phase", slog.String("phase", phase))
}

func (o *LogObserver) PhaseFinished(phase string, r PhaseResult) {
	if r.Err != nil {
		o.log.Warn("phase failed",
			slog.String("phase", phase),
			slog.String("error", r.Err.Error()),
			slog.Duration("duration", r.Duration),
		)
		return
	}
	o.log.Info("phase completed",
		slog.String("phase", phase),
		slog.Int("processed", r.Processed),
		slog.Int("written", r.Written),
		slog.Int("skipped", r.Skipped),
		slog.Int("errors", r.Errors),
		slog.Duration("duration", r.Duration),
	)
}

func (o *LogObserver) FileParsed(path string, s cedict.Stats) {
	o.log.Info("source parsed",
		slog.String("path", path),
		slog.Int("total_lines", s.TotalLines),
		slog.Int("entries", s.ParsedLines),
		slog.Int("malformed", s.MalformedLines),
	)
}

func (o *LogObserver) LineRejected(err *domain.LineError) {
	o.log.Warn("line rejected",
		slog.String("path", err.Path),
		slog.Int("line", err.Line),
		slog.String("reason", err.Reason),
		slog.String("text", err.Text),
	)
}
