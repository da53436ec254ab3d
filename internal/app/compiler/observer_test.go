package compiler

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/syngdict/internal/domain"
	"github.com/heartmarshall/syngdict/internal/seeder/cedict"
)

func TestLogObserver(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.PhaseStarted("parse")
	obs.FileParsed("/data/cedict.u8", cedict.Stats{TotalLines: 10, ParsedLines: 8, MalformedLines: 1})
	obs.LineRejected(&domain.LineError{Path: "/data/cedict.u8", Line: 4, Text: "oops", Reason: "missing romanization bracket"})
	obs.PhaseFinished("parse", PhaseResult{Processed: 8, Errors: 1})
	obs.PhaseFinished("write", PhaseResult{Err: errors.New("disk full")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], `msg="starting phase" phase=parse`)
	assert.Contains(t, lines[1], "entries=8")
	assert.Contains(t, lines[2], "level=WARN")
	assert.Contains(t, lines[2], "line=4")
	assert.Contains(t, lines[3], "processed=8")
	assert.Contains(t, lines[4], `msg="phase failed"`)
	assert.Contains(t, lines[4], `error="disk full"`)
}

func TestNopObserver(t *testing.T) {
	t.Parallel()

	var obs Observer = NopObserver{}
	assert.NotPanics(t, func() {
		obs.PhaseStarted("parse")
		obs.PhaseFinished("parse", PhaseResult{})
		obs.FileParsed("x", cedict.Stats{})
		obs.LineRejected(&domain.LineError{})
	})
}
