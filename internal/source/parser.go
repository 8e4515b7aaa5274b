// Package source discovers and parses JSON Lines transaction imports.
//
// Each line is an object such as
//
//	{"type":"expense","ref":"bank-0042","project":"Casa Moderna Laureles","amount":"2.500.000","description":"Material delivery","date":"2024-03-04"}
//
// project falls back to the name encoded in the file name.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/archifinance/internal/cli"
	"github.com/theirongolddev/archifinance/internal/model"
)

var errNoAmount = errors.New("missing amount")

// ParseResult holds the output of parsing one file.
type ParseResult struct {
	File        DiscoveredFile
	Entries     []Entry
	Skipped     int // blank, comment and non-transaction lines
	Duplicates  int // earlier lines replaced by a later line with the same ref
	ParseErrors int
	Errors      []error // one per parse error, with the line number
	Err         error
}

// ParseFile reads one import file. Entries sharing a ref keep only the last
// occurrence, at the position of the first.
func ParseFile(df DiscoveredFile) ParseResult {
	res := ParseResult{File: df}

	f, err := os.Open(df.Path)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() { _ = f.Close() }()

	byRef := make(map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			res.Skipped++
			continue
		}

		e, ok, err := parseLine(line, df.Project)
		if err != nil {
			res.ParseErrors++
			res.Errors = append(res.Errors, fmt.Errorf("%s:%d: %w", df.Path, lineNo, err))
			continue
		}
		if !ok {
			res.Skipped++
			continue
		}
		e.Line = lineNo

		if e.Ref != "" {
			if i, dup := byRef[e.Ref]; dup {
				res.Entries[i] = e
				res.Duplicates++
				continue
			}
			byRef[e.Ref] = len(res.Entries)
		}
		res.Entries = append(res.Entries, e)
	}

	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

// parseLine decodes one line. ok is false for valid lines that are not
// transactions.
func parseLine(line []byte, defaultProject string) (Entry, bool, error) {
	var raw RawEntry
	if err := json.Unmarshal(line, &raw); err != nil {
		return Entry{}, false, fmt.Errorf("decoding line: %w", err)
	}
	kind := model.TxKind(strings.ToLower(strings.TrimSpace(raw.Type)))
	if !kind.Valid() {
		return Entry{}, false, nil
	}

	amount, err := parseAmount(raw.Amount)
	if err != nil {
		return Entry{}, false, err
	}
	date, err := parseDate(raw.Date)
	if err != nil {
		return Entry{}, false, err
	}

	project := strings.TrimSpace(raw.Project)
	if project == "" {
		project = defaultProject
	}
	return Entry{
		Ref:         strings.TrimSpace(raw.Ref),
		Project:     project,
		Kind:        kind,
		Amount:      amount,
		Description: strings.TrimSpace(raw.Description),
		Date:        date,
	}, true, nil
}

// parseAmount accepts a JSON number or a string in the CLI amount syntax
// ("2.500.000", "$ 1,200", "3.5M").
func parseAmount(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errNoAmount
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("amount: %w", err)
		}
		return cli.ParseAmount(s)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return 0, fmt.Errorf("amount %s: %w", raw, err)
	}
	return d.Round(0).IntPart(), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// ParseAll parses files with at most workers running at once. Results keep
// the order of files; per-file failures are reported in ParseResult.Err.
func ParseAll(ctx context.Context, files []DiscoveredFile, workers int) ([]ParseResult, error) {
	if workers <= 0 {
		workers = 4
	}
	results := make([]ParseResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, df := range files {
		i, df := i, df // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ParseFile(df)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
