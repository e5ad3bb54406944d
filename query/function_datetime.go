package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date/Time Functions

const (
	invalidDateID = "Ongeldige datum-ID"
	invalidDate   = "Ongeldige datum"
)

var dutchWeekdays = [...]string{
	time.Sunday:    "Zondag",
	time.Monday:    "Maandag",
	time.Tuesday:   "Dinsdag",
	time.Wednesday: "Woensdag",
	time.Thursday:  "Donderdag",
	time.Friday:    "Vrijdag",
	time.Saturday:  "Zaterdag",
}

var dutchMonths = [...]string{
	time.January:   "januari",
	time.February:  "februari",
	time.March:     "maart",
	time.April:     "april",
	time.May:       "mei",
	time.June:      "juni",
	time.July:      "juli",
	time.August:    "augustus",
	time.September: "september",
	time.October:   "oktober",
	time.November:  "november",
	time.December:  "december",
}

// monthAbbreviations maps the month part of a dd-mmm-yyyy cell, Dutch or
// English, to its month.
var monthAbbreviations = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mrt": time.March,
	"mar": time.March,
	"apr": time.April,
	"mei": time.May,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"okt": time.October,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

var (
	dateID        = regexp.MustCompile(`^\d{6}$`)
	leadingNumber = regexp.MustCompile(`^-?\d+`)
)

// dateOnly truncates t to midnight UTC of its calendar day.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// ParseDutchDate parses dd-mmm-yyyy with a Dutch or English month
// abbreviation, e.g. "05-mrt-2025" or "5-Mar-2025".
func ParseDutchDate(s string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	month, ok := monthAbbreviations[strings.ToLower(parts[1])]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 || len(parts[0]) > 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 0 || len(parts[2]) > 4 {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// DateDescriptionFunc turns a YYMMDD date ID into "Weekday D month" in Dutch
type DateDescriptionFunc struct{}

func (f *DateDescriptionFunc) Name() string        { return "date_description" }
func (f *DateDescriptionFunc) Description() string { return "Converts a date-id into a readable date." }
func (f *DateDescriptionFunc) Evaluate(arg string, now time.Time) string {
	if !dateID.MatchString(arg) {
		return invalidDateID
	}
	yy, _ := strconv.Atoi(arg[0:2])
	month, _ := strconv.Atoi(arg[2:4])
	day, _ := strconv.Atoi(arg[4:6])

	year := 1900 + yy
	if yy <= now.Year()%100 {
		year = 2000 + yy
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return invalidDate
	}
	return fmt.Sprintf("%s %d %s", dutchWeekdays[d.Weekday()], d.Day(), dutchMonths[d.Month()])
}

// DaysPlusFunc adds a number of days to today and returns the date as YYMMDD
type DaysPlusFunc struct{}

func (f *DaysPlusFunc) Name() string { return "days_plus" }
func (f *DaysPlusFunc) Description() string {
	return "Adds a number of days to the current date and returns the new date in yymmdd format."
}
func (f *DaysPlusFunc) Evaluate(arg string, now time.Time) string {
	if arg == "" || (!isDigits(arg) && arg[0] != '-') {
		return ""
	}
	days := 0
	if m := leadingNumber.FindString(arg); m != "" {
		days, _ = strconv.Atoi(m)
	}
	return now.AddDate(0, 0, days).Format("060102")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
