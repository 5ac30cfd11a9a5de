package storage

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// ErrUnknownFormat is returned for files whose extension has no reader.
var ErrUnknownFormat = errors.New("unknown table format")

// FindTable returns the first existing file for table in dir, trying csv,
// jsonl and json in that order.
func FindTable(dir, table string) (string, error) {
	for _, ext := range []string{".csv", ".jsonl", ".json"} {
		path := filepath.Join(dir, table+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("table %q not found in %s: %w", table, dir, os.ErrNotExist)
}

// ReadPosts loads a posts table written by any file backend.
func ReadPosts(path string) ([]types.PostRecord, error) {
	return readTable(path, func(row map[string]string) (types.PostRecord, error) {
		return postFromRow(row)
	})
}

// ReadComments loads a comments table.
func ReadComments(path string) ([]types.CommentRecord, error) {
	return readTable(path, func(row map[string]string) (types.CommentRecord, error) {
		return types.CommentRecord{URL: row[types.ColURL], CommentText: row[types.ColCommentText]}, nil
	})
}

// ReadCleanPosts loads a cleaned posts table.
func ReadCleanPosts(path string) ([]types.CleanPost, error) {
	return readTable(path, func(row map[string]string) (types.CleanPost, error) {
		p, err := postFromRow(row)
		if err != nil {
			return types.CleanPost{}, err
		}
		total, err := intField(row, types.ColTotalEngagement)
		if err != nil {
			return types.CleanPost{}, err
		}
		return types.CleanPost{PostRecord: p, TotalEngagement: total}, nil
	})
}

// ReadCleanComments loads a cleaned comments table.
func ReadCleanComments(path string) ([]types.CleanComment, error) {
	return readTable(path, func(row map[string]string) (types.CleanComment, error) {
		return types.CleanComment{URL: row[types.ColURL], Comment: row[types.ColComment]}, nil
	})
}

// ReadLabeledComments loads a labelled comments table.
func ReadLabeledComments(path string) ([]types.LabeledComment, error) {
	return readTable(path, func(row map[string]string) (types.LabeledComment, error) {
		return types.LabeledComment{
			URL:       row[types.ColURL],
			Comment:   row[types.ColComment],
			Sentiment: row[types.ColSentiment],
		}, nil
	})
}

func postFromRow(row map[string]string) (types.PostRecord, error) {
	p := types.PostRecord{
		URL:     row[types.ColURL],
		Author:  row[types.ColAuthor],
		Content: row[types.ColContent],
		Error:   row[types.ColError],
	}
	var err error
	if p.ReactionsCount, err = intField(row, types.ColReactionsCount); err != nil {
		return p, err
	}
	if p.CommentsCount, err = intField(row, types.ColCommentsCount); err != nil {
		return p, err
	}
	if p.SharesCount, err = intField(row, types.ColSharesCount); err != nil {
		return p, err
	}
	if p.TotalCommentsCrawled, err = intField(row, types.ColTotalCommentsCrawled); err != nil {
		return p, err
	}
	return p, nil
}

func intField(row map[string]string, col string) (int, error) {
	v := strings.TrimSpace(row[col])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}

// readTable decodes every row of path into a column->value map and
// converts it with fn.
func readTable[T any](path string, fn func(map[string]string) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []map[string]string
	switch {
	case strings.HasSuffix(path, ".csv"):
		rows, err = csvRows(f)
	case strings.HasSuffix(path, ".jsonl"):
		rows, err = jsonlRows(f)
	case strings.HasSuffix(path, ".json"):
		rows, err = jsonRows(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		rec, err := fn(row)
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", path, i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func csvRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func jsonRows(r io.Reader) ([]map[string]string, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}
	rows := make([]map[string]string, len(raw))
	for i, obj := range raw {
		rows[i] = stringify(obj)
	}
	return rows, nil
}

func jsonlRows(r io.Reader) ([]map[string]string, error) {
	var rows []map[string]string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, err
		}
		rows = append(rows, stringify(obj))
	}
	return rows, sc.Err()
}

func stringify(obj map[string]any) map[string]string {
	row := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			row[k] = val
		case float64:
			row[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
		default:
			b, _ := json.Marshal(val)
			row[k] = string(b)
		}
	}
	return row
}
