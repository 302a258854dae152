package render

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers and timestamps for one locale.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

func (f Formatter) Number(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Share renders "n (p%)" where p is n's share of total with one decimal.
func (f Formatter) Share(n, total int) string {
	pct := 0.0
	if total > 0 {
		pct = float64(n) / float64(total) * 100
	}
	return f.printer.Sprintf("%d (%.1f%%)", n, pct)
}

func (f Formatter) UpdatedAt(t time.Time) string {
	return fmt.Sprintf("Updated at %s", t.Format("15:04"))
}

// WeekLabel turns a YYYY-MM-DD week start into "Jan 2006". Unparseable
// values are shown as sent.
func (f Formatter) WeekLabel(week string) string {
	t, err := time.Parse("2006-01-02", week)
	if err != nil {
		return week
	}
	return t.Format("Jan 2006")
}
