package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/vacancybot/vacancy/catalog"
	"github.com/m3rciful/vacancybot/vacancy/conversation"
)

const (
	// FilterLimit caps filtered searches.
	FilterLimit = 7
	// TopLimit caps the top listings query.
	TopLimit = 5
)

// Shape names the query variant.
type Shape string

const (
	// ShapeRemote filters by the Schedule field.
	ShapeRemote Shape = "remote"
	// ShapeRegion filters by the Area field.
	ShapeRegion Shape = "region"
	// ShapeTop has no filters and orders by maximum salary.
	ShapeTop Shape = "top"
)

var (
	// ErrIncompleteSelection is returned when language, band or region is missing.
	ErrIncompleteSelection = errors.New("search: incomplete selection")
	// ErrInvalidSalaryBand is returned for a band label missing from the catalog.
	ErrInvalidSalaryBand = errors.New("search: invalid salary band")
)

// Query is a parameterized statement ready for the store.
type Query struct {
	Shape Shape
	SQL   string
	Args  []any
	Limit int
}

func field(name string) string {
	return fmt.Sprintf("vaccancy#>>'{%s}'", name)
}

// numeric casts a textual field to numeric, yielding NULL for anything
// that is not a plain decimal so one malformed document cannot fail the query.
func numeric(name string) string {
	f := field(name)
	return fmt.Sprintf(`(CASE WHEN %[1]s ~ '^[0-9]+(\.[0-9]+)?$' THEN (%[1]s)::numeric END)`, f)
}

var columns = []struct{ key, alias string }{
	{"URL", "URL"},
	{"Area", "Area"},
	{"Lang", "Lang"},
	{"Name", "Name"},
	{"Schedule", "Schedule"},
	{"Currency", "Currency"},
	{"Published", "Published"},
	{"Salary Max", "SalaryMax"},
	{"Salary Min", "SalaryMin"},
	{"Requirement", "Requirement"},
}

func selectClause() string {
	var b strings.Builder
	b.WriteString("SELECT\n")
	for i, c := range columns {
		fmt.Fprintf(&b, "\tCOALESCE(%s, '') AS %q", field(c.key), c.alias)
		if i < len(columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("FROM jobs")
	return b.String()
}

func filterSQL(placeField string) string {
	return selectClause() + `
WHERE ` + field("Lang") + ` = $1
  AND ` + field(placeField) + ` = $2
  AND ` + numeric("Salary Min") + ` >= $3::numeric
  AND ` + numeric("Salary Max") + ` <= $4::numeric
ORDER BY ` + field("Published") + ` DESC NULLS LAST
LIMIT $5`
}

var (
	remoteSQL = filterSQL("Schedule")
	regionSQL = filterSQL("Area")
	topSQL    = selectClause() + `
ORDER BY ` + numeric("Salary Max") + ` DESC NULLS LAST
LIMIT $1`
)

// BuildFilterQuery turns a complete selection into one of two query shapes.
// The remote region filters on Schedule; any other region filters on Area.
// Text parameters are lowercased to match how postings are stored.
//
// Salaries are stored as text but compared as numbers: a posting matches
// when SalaryMin >= band min and SalaryMax <= band max, numerically. A plain
// text comparison would order "500000" after "1000000000" and drop
// postings from the top band. The bounds are kept literal, so a posting
// whose range straddles a band edge matches neither band.
func BuildFilterQuery(cat *catalog.Catalog, sel conversation.Selection) (Query, error) {
	if !sel.Complete() {
		return Query{}, ErrIncompleteSelection
	}
	band, ok := cat.Band(sel.SalaryBand)
	if !ok {
		return Query{}, fmt.Errorf("%w: %q", ErrInvalidSalaryBand, sel.SalaryBand)
	}

	q := Query{Shape: ShapeRegion, SQL: regionSQL, Limit: FilterLimit}
	if cat.IsRemote(sel.Region) {
		q.Shape, q.SQL = ShapeRemote, remoteSQL
	}
	q.Args = []any{
		strings.ToLower(sel.Language),
		strings.ToLower(sel.Region),
		band.MinParam(),
		band.MaxParam(),
		FilterLimit,
	}
	return q, nil
}

// TopQuery returns the unfiltered top postings by maximum salary.
func TopQuery() Query {
	return Query{Shape: ShapeTop, SQL: topSQL, Args: []any{TopLimit}, Limit: TopLimit}
}
