package drugquery

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fdatools/openfda-mcp/orangebook/entities"
)

// fdaDateLayouts covers the date spellings seen across Orange Book files.
// Older publications use "Jan 2, 2006", newer extracts use compact or ISO
// forms.
var fdaDateLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02",
	"20060102",
	"01/02/2006",
}

// parseFDADate parses a date string from the source files. Unparseable or
// empty values report ok=false and are left out of the analysis.
func parseFDADate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range fdaDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// datedValue pairs a parsed date with the source string it came from, so the
// analysis can compare real dates but report the data's own spelling.
type datedValue struct {
	text string
	when time.Time
}

func sortedDates(values []datedValue) {
	sort.Slice(values, func(i, j int) bool { return values[i].when.Before(values[j].when) })
}

// analyzeCliff computes the loss-of-exclusivity picture for one application.
// Generic entry is blocked by both the patent estate and regulatory
// exclusivity, so the entry estimate is whichever of {latest patent
// expiration, earliest exclusivity expiration} falls later. The estimate is
// null when neither set yields a usable date. yearsAhead is carried through
// unchanged.
func analyzeCliff(patents []entities.Patent, exclusivity []entities.Exclusivity, yearsAhead int, now time.Time) CliffAnalysis {
	analysis := CliffAnalysis{YearsAhead: yearsAhead}

	var patentDates []datedValue
	for _, p := range patents {
		if when, ok := parseFDADate(p.PatentExpireDate); ok {
			patentDates = append(patentDates, datedValue{text: p.PatentExpireDate, when: when})
		}
	}
	sortedDates(patentDates)

	var exclusivityDates []datedValue
	for _, e := range exclusivity {
		if when, ok := parseFDADate(e.ExclusivityDate); ok {
			exclusivityDates = append(exclusivityDates, datedValue{text: e.ExclusivityDate, when: when})
		}
	}
	sortedDates(exclusivityDates)

	var latestPatent, earliestExclusivity *datedValue
	if len(patentDates) > 0 {
		earliest := patentDates[0]
		latest := patentDates[len(patentDates)-1]
		analysis.EarliestPatentExpiration = &earliest.text
		analysis.LatestPatentExpiration = &latest.text
		latestPatent = &latest
	}
	if len(exclusivityDates) > 0 {
		earliest := exclusivityDates[0]
		analysis.EarliestExclusivityExpiration = &earliest.text
		earliestExclusivity = &earliest
	}

	estimate := laterOf(latestPatent, earliestExclusivity)
	if estimate == nil {
		return analysis
	}

	analysis.GenericEntryEstimate = &estimate.text
	years := roundToTenth(estimate.when.Sub(now).Hours() / (24 * 365.25))
	analysis.YearsUntilLossOfExclusivity = &years
	return analysis
}

func laterOf(a, b *datedValue) *datedValue {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.when.After(a.when):
		return b
	default:
		return a
	}
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
