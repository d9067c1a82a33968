// Package search builds and runs vacancy queries against the jobs table.
package search

// Posting is one job posting as read from the jobs table. Every field is
// the raw text stored in the JSON document; missing keys read as "".
type Posting struct {
	URL         string `db:"URL"`
	Area        string `db:"Area"`
	Lang        string `db:"Lang"`
	Name        string `db:"Name"`
	Schedule    string `db:"Schedule"`
	Currency    string `db:"Currency"`
	Published   string `db:"Published"`
	SalaryMax   string `db:"SalaryMax"`
	SalaryMin   string `db:"SalaryMin"`
	Requirement string `db:"Requirement"`
}

// SalaryUnspecified is the SalaryMax value meaning "no upper bound given".
const SalaryUnspecified = "0"
