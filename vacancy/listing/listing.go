// Package listing renders job postings as Telegram Markdown messages.
package listing

import (
	"strings"

	"github.com/m3rciful/vacancybot/core/telegram/format"
	"github.com/m3rciful/vacancybot/vacancy/search"
)

// OpenLabel captions the link button attached to every listing.
const OpenLabel = "Перейти"

// Listing is one posting ready to send: Markdown text plus its link.
type Listing struct {
	Text string
	URL  string
}

// DisplaySalaryMax returns SalaryMax, or SalaryMin when SalaryMax is the
// unspecified sentinel.
func DisplaySalaryMax(p search.Posting) string {
	if p.SalaryMax == search.SalaryUnspecified {
		return p.SalaryMin
	}
	return p.SalaryMax
}

// Format renders p. Empty fields render as empty values.
func Format(p search.Posting) Listing {
	lines := []string{
		line("Локация", p.Area),
		line("Язык программирования", p.Lang),
		line("Специализация", p.Name),
		line("Возможный формат работы", p.Schedule),
		line("Валюта", p.Currency),
		line("Зарплатная вилка", "от "+p.SalaryMin+" до "+DisplaySalaryMax(p)),
		line("Требования", p.Requirement),
	}
	return Listing{Text: strings.Join(lines, "\n\n"), URL: p.URL}
}

// FormatAll renders postings in order.
func FormatAll(ps []search.Posting) []Listing {
	out := make([]Listing, len(ps))
	for i, p := range ps {
		out[i] = Format(p)
	}
	return out
}

func line(caption, value string) string {
	return "*" + caption + ":* " + format.Escape(value)
}
