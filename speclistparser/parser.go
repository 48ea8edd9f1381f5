// Package speclistparser downloads the UniProt species list and turns it into records and CSV rows.
package speclistparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strings"
	"unicode"

	"github.com/giygas/speclist/logging"
	"github.com/giygas/speclist/speclistparser/entities"
)

// maxLineSize bounds a single speclist line
const maxLineSize = 1 * 1024 * 1024

// ParseStats counts what a pass over the speclist saw
type ParseStats struct {
	Lines                int
	PrimaryLines         int
	SecondaryLines       int
	OrphanSecondaryLines int
	SkippedLines         int
	Records              int
}

// Parser groups speclist lines into records
type Parser struct {
	patterns Patterns
}

// NewParser creates a parser with the default speclist patterns
func NewParser() *Parser {
	return &Parser{patterns: defaultPatterns}
}

// NewParserWithPatterns creates a parser from caller supplied line expressions
func NewParserWithPatterns(primary, secondary string) (*Parser, error) {
	patterns, err := CompilePatterns(primary, secondary)
	if err != nil {
		return nil, err
	}
	return &Parser{patterns: patterns}, nil
}

// Columns returns the output columns derived from the patterns' named groups
func (p *Parser) Columns() []string {
	return p.patterns.Columns()
}

// Records returns the records found in r, in input order.
// A record is yielded when the next primary line starts or when the input ends.
// A read error is yielded once and ends the sequence. stats may be nil.
func (p *Parser) Records(r io.Reader, stats *ParseStats) iter.Seq2[entities.Record, error] {
	if stats == nil {
		stats = &ParseStats{}
	}

	return func(yield func(entities.Record, error) bool) {
		*stats = ParseStats{}

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		var pending *entities.Record

		for scanner.Scan() {
			stats.Lines++
			line := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)

			if match := p.patterns.Primary.FindStringSubmatch(line); match != nil {
				stats.PrimaryLines++

				if pending != nil {
					stats.Records++
					if !yield(*pending, nil) {
						return
					}
				}

				pending = &entities.Record{}
				p.merge(pending, p.patterns.Primary.SubexpNames(), match)
				continue
			}

			if pending == nil {
				if p.patterns.Secondary.MatchString(line) {
					stats.OrphanSecondaryLines++
				} else {
					stats.SkippedLines++
				}
				continue
			}

			if match := p.patterns.Secondary.FindStringSubmatch(line); match != nil {
				stats.SecondaryLines++
				p.merge(pending, p.patterns.Secondary.SubexpNames(), match)
				continue
			}

			stats.SkippedLines++
		}

		if err := scanner.Err(); err != nil {
			yield(entities.Record{}, fmt.Errorf("failed to read speclist at line %d: %w", stats.Lines+1, err))
			return
		}

		// Flush the last record, nothing follows it
		if pending != nil {
			stats.Records++
			yield(*pending, nil)
		}
	}
}

// RecordsFromFile returns the records of the speclist at path.
// Each iteration opens the file again and closes it when the iteration ends.
func (p *Parser) RecordsFromFile(path string, stats *ParseStats) iter.Seq2[entities.Record, error] {
	return func(yield func(entities.Record, error) bool) {
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("%w: %s: %w", ErrSourceNotFound, path, err)
			} else {
				err = fmt.Errorf("failed to open %s: %w", path, err)
			}
			yield(entities.Record{}, err)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				logging.Warn("Failed to close speclist file", "path", path, "error", err)
			}
		}()

		for record, err := range p.Records(file, stats) {
			if !yield(record, err) {
				return
			}
		}
	}
}

// merge copies the non-empty captures of match into record
func (p *Parser) merge(record *entities.Record, names []string, match []string) {
	for i, name := range names {
		if name == "" || i >= len(match) {
			continue
		}

		value := strings.TrimSpace(match[i])
		if value == "" {
			continue
		}

		// Names are checked against the record columns when the patterns are compiled
		_ = record.Set(name, value)
	}
}
