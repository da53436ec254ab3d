// Package cedict parses CC-CEDICT source files into dictionary entries.
// Pure functions: file paths in, domain structs out. No database dependencies.
package cedict

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/syngdict/internal/domain"
)

const (
	commentPrefix = "#"
	maxLineBytes  = 1 << 20
)

// errSkipLine signals that a line carries no entry (comment or blank).
var errSkipLine = errors.New("skip line")

// Stats holds parser statistics for logging.
type Stats struct {
	Files          int
	TotalLines     int
	CommentLines   int
	BlankLines     int
	ParsedLines    int
	MalformedLines int
	MeasureWords   int
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.TotalLines += o.TotalLines
	s.CommentLines += o.CommentLines
	s.BlankLines += o.BlankLines
	s.ParsedLines += o.ParsedLines
	s.MalformedLines += o.MalformedLines
	s.MeasureWords += o.MeasureWords
}

// ParseResult holds the entries of one or more files in source order.
type ParseResult struct {
	Entries     []domain.WordEntry
	Diagnostics []*domain.LineError
	Stats       Stats
}

// Parser reads source files. With Strict set the first malformed line is
// returned as an error; otherwise it is recorded as a diagnostic and
// parsing continues.
type Parser struct {
	Levels LevelClassifier
	Strict bool
	// OnFile, if set, is called by ParseDir after each file.
	OnFile func(path string, stats Stats)
}

// ParseFile parses a single source file.
func (p *Parser) ParseFile(path string) (ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open %s: %w: %w", path, domain.ErrUnreadableSource, err)
	}
	defer f.Close()

	result := ParseResult{Stats: Stats{Files: 1}}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		result.Stats.TotalLines++

		entry, err := p.parseLine(scanner.Text())
		if errors.Is(err, errSkipLine) {
			if strings.HasPrefix(scanner.Text(), commentPrefix) {
				result.Stats.CommentLines++
			} else {
				result.Stats.BlankLines++
			}
			continue
		}
		if err != nil {
			var le *domain.LineError
			if !errors.As(err, &le) {
				return ParseResult{}, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			le.Path, le.Line = path, lineNo
			if p.Strict {
				return ParseResult{}, le
			}
			result.Stats.MalformedLines++
			result.Diagnostics = append(result.Diagnostics, le)
			continue
		}

		result.Stats.ParsedLines++
		result.Stats.MeasureWords += len(entry.MeasureWords)
		result.Entries = append(result.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{}, fmt.Errorf("read %s: %w: %w", path, domain.ErrUnreadableSource, err)
	}

	return result, nil
}

// ParseDir parses every regular file in dir, in name order, and
// concatenates the results.
func (p *Parser) ParseDir(dir string) (ParseResult, error) {
	files, err := SourceFiles(dir)
	if err != nil {
		return ParseResult{}, err
	}

	var result ParseResult
	for _, path := range files {
		r, err := p.ParseFile(path)
		if err != nil {
			return ParseResult{}, err
		}
		result.Entries = append(result.Entries, r.Entries...)
		result.Diagnostics = append(result.Diagnostics, r.Diagnostics...)
		result.Stats.add(r.Stats)
		if p.OnFile != nil {
			p.OnFile(path, r.Stats)
		}
	}
	return result, nil
}

// SourceFiles lists the regular, non-hidden files of dir sorted by name.
func SourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w: %w", dir, domain.ErrUnreadableSource, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func (p *Parser) parseLine(raw string) (domain.WordEntry, error) {
	line := strings.TrimRight(raw, "\r")
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentPrefix) {
		return domain.WordEntry{}, errSkipLine
	}
	return BuildEntry(line, p.Levels)
}
