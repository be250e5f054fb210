// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/bibcite/pkg/types"
)

// QueryOptions holds parameters for library searches.
type QueryOptions struct {
	// Query matches title, author, key, or abstract as a substring
	// (case-insensitive for ASCII).
	Query string

	// Type filters by entry type.
	Type string

	// Year filters by exact year.
	Year string

	// Source filters by source name.
	Source string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the options have no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Type == "" && q.Year == "" && q.Source == ""
}

// Result is a stored record with the source it came from.
type Result struct {
	Source       string `json:"source" yaml:"source"`
	types.Record `yaml:",inline"`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns records matching opts, ordered by source and then by
// position in the source, so results keep source order.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Result, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT source, key, type, fields FROM records WHERE 1=1`)

	if opts.Query != "" {
		pattern := "%" + likeEscaper.Replace(opts.Query) + "%"
		qb.WriteString(` AND (title LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'
			OR key LIKE ? ESCAPE '\' OR abstract LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if opts.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, strings.ToLower(opts.Type))
	}
	if opts.Year != "" {
		qb.WriteString(` AND year = ?`)
		args = append(args, opts.Year)
	}
	if opts.Source != "" {
		qb.WriteString(` AND source = ?`)
		args = append(args, opts.Source)
	}

	qb.WriteString(` ORDER BY source, position LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r          Result
			fieldsJSON string
		)
		if err := rows.Scan(&r.Source, &r.Key, &r.EntryType, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := r.Fields.UnmarshalJSON([]byte(fieldsJSON)); err != nil {
			return nil, fmt.Errorf("decoding fields of %s: %w", r.Key, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Records returns the records of results in order.
func Records(results []Result) []types.Record {
	out := make([]types.Record, len(results))
	for i, r := range results {
		out[i] = r.Record
	}
	return out
}
