// Package stats computes per-category attendance counts against the
// configured requirements for one student and term.
package stats

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Row is one category's aggregate.
type Row struct {
	Category       string `json:"category"`
	AttendedCount  int    `json:"attended_count"`
	TotalSessions  int    `json:"total_sessions"`
	RequiredCount  *int   `json:"required_count"`
	MetRequirement bool   `json:"met_requirement"`
}

// Overview is a full aggregate for one (student, term), stamped with the
// student's statistics version at computation time.
type Overview struct {
	Term    string `json:"term"`
	Version int64  `json:"version"`
	Rows    []Row  `json:"rows"`
}

// Source provides the three aggregation inputs.
type Source interface {
	Requirements(ctx context.Context, term string) (map[string]int, error)
	SlotCategories(ctx context.Context, term string) ([]string, error)
	SessionCategories(ctx context.Context, term string) ([]string, error)
	AttendedCategories(ctx context.Context, term, studentID string) ([]string, error)
}

// VersionSource reads the student's statistics version counter.
type VersionSource interface {
	Current(ctx context.Context, studentID string) (int64, error)
}

// Service recomputes aggregates from scratch on every call; there is no
// incremental update. The version counter only tells callers when a
// recompute is worthwhile.
type Service struct {
	source   Source
	versions VersionSource
	collator *collate.Collator
}

// NewService creates a service sorting categories with locale-aware,
// case-insensitive collation. versions may be nil.
func NewService(source Source, versions VersionSource, locale string) *Service {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Service{
		source:   source,
		versions: versions,
		collator: collate.New(tag, collate.IgnoreCase),
	}
}

// Compute builds the per-category aggregate for one student and term.
// The three fetches run concurrently; combination is sequential.
func (s *Service) Compute(ctx context.Context, studentID, term string) (Overview, error) {
	var (
		requirements map[string]int
		slotCats     []string
		sessionCats  []string
		attendedCats []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requirements, err = s.source.Requirements(gctx, term)
		return
	})
	g.Go(func() (err error) {
		slotCats, err = s.source.SlotCategories(gctx, term)
		return
	})
	g.Go(func() (err error) {
		sessionCats, err = s.source.SessionCategories(gctx, term)
		return
	})
	g.Go(func() (err error) {
		attendedCats, err = s.source.AttendedCategories(gctx, term, studentID)
		return
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	// categories exist through any of the three sources: a requirement
	// with no sessions yet, or sessions with no requirement configured
	categories := make(map[string]struct{})
	for c := range requirements {
		categories[c] = struct{}{}
	}
	for _, c := range slotCats {
		categories[c] = struct{}{}
	}
	for _, c := range sessionCats {
		categories[c] = struct{}{}
	}

	attended := make(map[string]int)
	for _, c := range attendedCats {
		attended[c]++
	}
	// capacity comes from scheduled slots, not sessions actually opened
	total := make(map[string]int)
	for _, c := range slotCats {
		total[c]++
	}

	rows := make([]Row, 0, len(categories))
	for c := range categories {
		row := Row{
			Category:      c,
			AttendedCount: attended[c],
			TotalSessions: total[c],
		}
		if req, ok := requirements[c]; ok {
			req := req
			row.RequiredCount = &req
			row.MetRequirement = row.AttendedCount >= req
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return s.collator.CompareString(rows[i].Category, rows[j].Category) < 0
	})

	out := Overview{Term: term, Rows: rows}
	if s.versions != nil {
		v, err := s.versions.Current(ctx, studentID)
		if err == nil {
			out.Version = v
		}
	}
	return out, nil
}
