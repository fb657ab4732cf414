package waste

import (
	"fmt"
	"sort"
	"strings"

	lo "github.com/samber/lo"
)

const DefaultPageSize = 10

// TableQuery drives the searchable, sortable records table.
type TableQuery struct {
	Search   string // case-insensitive substring of remarks
	SortKey  string // date, totalWaste, plastic, paper, glass, metal, ewaste, others, remarks
	Desc     bool
	Page     int // 1-based
	PageSize int
}

type TablePage struct {
	Page       int      `json:"page"`
	TotalPages int      `json:"totalPages"`
	TotalRows  int      `json:"totalRows"`
	Rows       []Record `json:"rows"`
}

var tableKeys = []string{"date", "totalWaste", "plastic", "paper", "glass", "metal", "ewaste", "others", "remarks"}

// Table filters, sorts and paginates records for display.
func Table(records []Record, q TableQuery) (TablePage, error) {
	if q.SortKey == "" {
		q.SortKey = "date"
	}
	if !lo.Contains(tableKeys, q.SortKey) {
		return TablePage{}, fmt.Errorf("unknown sort key %q", q.SortKey)
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	needle := strings.ToLower(q.Search)
	rows := lo.Filter(records, func(r Record, _ int) bool {
		return strings.Contains(strings.ToLower(r.Remarks), needle)
	})

	less := tableLess(q.SortKey)
	sort.SliceStable(rows, func(i, j int) bool {
		if q.Desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})

	totalPages := (len(rows) + q.PageSize - 1) / q.PageSize
	page := q.Page
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	start := (page - 1) * q.PageSize
	end := min(start+q.PageSize, len(rows))
	if start > end {
		start = end
	}
	return TablePage{Page: page, TotalPages: totalPages, TotalRows: len(rows), Rows: rows[start:end]}, nil
}

func tableLess(key string) func(a, b Record) bool {
	switch key {
	case "date":
		return func(a, b Record) bool {
			ta, _ := a.Day()
			tb, _ := b.Day()
			return ta.Before(tb)
		}
	case "totalWaste":
		return func(a, b Record) bool { return a.TotalWaste < b.TotalWaste }
	case "remarks":
		return func(a, b Record) bool { return strings.ToLower(a.Remarks) < strings.ToLower(b.Remarks) }
	}
	m := Material(key)
	return func(a, b Record) bool { return a.MaterialTotal(m) < b.MaterialTotal(m) }
}
