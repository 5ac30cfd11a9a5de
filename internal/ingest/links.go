// Package ingest reads post links from user-supplied files.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadLinks reads links from a .txt file (one per line) or a .csv file
// (first column, header row skipped). Blank entries are ignored and order
// is preserved.
func LoadLinks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(stripBOM(f))
	case ".txt", "":
		return readLines(stripBOM(f))
	default:
		return nil, fmt.Errorf("unsupported link file %s: want .txt or .csv", path)
	}
}

// Merge appends file links after inline links, skipping blanks.
func Merge(inline []string, fromFile ...[]string) []string {
	var out []string
	for _, l := range inline {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	for _, links := range fromFile {
		out = append(out, links...)
	}
	return out
}

func readLines(r io.Reader) ([]string, error) {
	var links []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			links = append(links, l)
		}
	}
	return links, sc.Err()
}

func readCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var links []string
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++
		if line == 1 {
			continue
		}
		if len(rec) == 0 {
			continue
		}
		if l := strings.TrimSpace(rec[0]); l != "" {
			links = append(links, l)
		}
	}
	return links, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	ch, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if ch != '\uFEFF' {
		_ = br.UnreadRune()
	}
	return br
}
