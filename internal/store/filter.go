package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"residence-occupancy-backend/internal/occupancy"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// Shorter search terms are ignored.
	MinSearchLength = 3
)

// sortColumns whitelists the sortBy values accepted from callers.
var sortColumns = map[string]string{
	"createdAt":      "created_at",
	"stateChangedAt": "state_changed_at",
	"status":         "state",
	"subjectName":    "subject_name",
	"unit":           "unit",
	"entryTime":      "entry_time",
	"exitTime":       "exit_time",
	"scheduledDate":  "window_date",
}

// Filter narrows a record list. DateFrom and DateTo are inclusive calendar
// days; for bookings they apply to the scheduled date, otherwise to the
// creation time.
type Filter struct {
	Statuses  []occupancy.State
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// Normalize applies paging defaults and bounds.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if _, ok := sortColumns[f.SortBy]; !ok {
		f.SortBy = "createdAt"
	}
	if !strings.EqualFold(f.SortOrder, "asc") {
		f.SortOrder = "desc"
	} else {
		f.SortOrder = "asc"
	}
	return f
}

// SearchTerm returns the effective search term, empty when too short.
func (f Filter) SearchTerm() string {
	q := strings.TrimSpace(f.Search)
	if len([]rune(q)) < MinSearchLength {
		return ""
	}
	return q
}

// compiledFilter is the WHERE clause shared by the page and aggregate queries.
type compiledFilter struct {
	sql  string
	args []any
}

// compile turns the filter into a single WHERE clause for family.
func (f Filter) compile(family occupancy.Family) (compiledFilter, error) {
	where := squirrel.And{squirrel.Eq{"family": string(family)}}

	if len(f.Statuses) > 0 {
		states := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			states[i] = string(s)
		}
		where = append(where, squirrel.Eq{"state": states})
	}

	if family == occupancy.FamilyBooking {
		if f.DateFrom != nil {
			where = append(where, squirrel.GtOrEq{"window_date": f.DateFrom.Format("2006-01-02")})
		}
		if f.DateTo != nil {
			where = append(where, squirrel.LtOrEq{"window_date": f.DateTo.Format("2006-01-02")})
		}
	} else {
		if f.DateFrom != nil {
			where = append(where, squirrel.GtOrEq{"created_at": f.DateFrom.UTC()})
		}
		if f.DateTo != nil {
			where = append(where, squirrel.Lt{"created_at": f.DateTo.AddDate(0, 0, 1).UTC()})
		}
	}

	if q := f.SearchTerm(); q != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		where = append(where, squirrel.Or{
			squirrel.Expr(`LOWER(subject_name) LIKE ? ESCAPE '\'`, like),
			squirrel.Expr(`LOWER(unit) LIKE ? ESCAPE '\'`, like),
		})
	}

	sql, args, err := where.ToSql()
	if err != nil {
		return compiledFilter{}, fmt.Errorf("compile filter: %w", err)
	}
	return compiledFilter{sql: sql, args: args}, nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// orderBy returns the ORDER BY clause of a normalized filter.
func (f Filter) orderBy() string {
	col := sortColumns[f.SortBy]
	dir := strings.ToUpper(f.SortOrder)
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}
