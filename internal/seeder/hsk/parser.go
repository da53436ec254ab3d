// Package hsk parses HSK word lists into a level lookup.
// Pure function: file path in, lookup table out. No database dependencies.
package hsk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/heartmarshall/syngdict/internal/domain"
)

const maxLevel = 9

// List maps a simplified word to its HSK level.
type List struct {
	levels map[string]uint8
}

// Parse reads an HSK CSV file: a header row, then "simplified,level" rows.
func Parse(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open HSK file: %w: %w", domain.ErrUnreadableSource, err)
	}
	defer f.Close()

	l, err := parseList(f)
	if err != nil {
		return nil, fmt.Errorf("parse HSK %s: %w", path, err)
	}
	return l, nil
}

func parseList(r io.Reader) (*List, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	l := &List{levels: make(map[string]uint8)}

	// Skip header row.
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return l, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) < 2 {
			continue
		}

		word := strings.TrimSpace(record[0])
		if word == "" {
			continue
		}
		lvl, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil || lvl < 1 || lvl > maxLevel {
			line, _ := reader.FieldPos(1)
			return nil, fmt.Errorf("line %d: level %q: %w", line, record[1], domain.ErrValidation)
		}

		if _, seen := l.levels[word]; !seen {
			l.levels[word] = uint8(lvl)
		}
	}

	return l, nil
}

// Level returns the level of a simplified word. A nil list knows no words.
func (l *List) Level(simplified string) (uint8, bool) {
	if l == nil {
		return 0, false
	}
	lvl, ok := l.levels[simplified]
	return lvl, ok
}

// Len returns the number of distinct words on the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.levels)
}
