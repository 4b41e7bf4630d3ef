// Package pubdate normalizes publication dates found in RSS/Atom feeds.
// English mail-style dates are parsed directly, Portuguese variants
// ("Qua, nov 26 2025 08:25:00") are transliterated to English first and
// anything else goes through a permissive parser. Results are always UTC.
package pubdate

import (
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ptMonths maps portuguese month names and abbreviations, without diacritics, to english abbreviations
var ptMonths = map[string]string{
	"jan": "Jan", "janeiro": "Jan",
	"fev": "Feb", "fevereiro": "Feb",
	"mar": "Mar", "marco": "Mar",
	"abr": "Apr", "abril": "Apr",
	"mai": "May", "maio": "May",
	"jun": "Jun", "junho": "Jun",
	"jul": "Jul", "julho": "Jul",
	"ago": "Aug", "agosto": "Aug",
	"set": "Sep", "setembro": "Sep",
	"out": "Oct", "outubro": "Oct",
	"nov": "Nov", "novembro": "Nov",
	"dez": "Dec", "dezembro": "Dec",
}

// mailLayouts are tried after net/mail for the looser shapes seen in feeds.
// Layouts without a zone parse as UTC.
var mailLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04",
	"Mon, Jan 2 2006 15:04:05 -0700",
	"Mon, Jan 2 2006 15:04:05",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04",
	"Jan 2 2006 15:04:05 -0700",
	"Jan 2 2006 15:04:05 MST",
	"Jan 2 2006 15:04:05",
	"Jan 2, 2006 15:04:05 -0700",
	"Jan 2, 2006 15:04:05",
	"Jan 2 2006 15:04",
}

var (
	leadingWordRe = regexp.MustCompile(`^([a-z]{2,9}),?\s*`)
	monthsRe      = buildMonthsRe()
	trailZoneRe   = regexp.MustCompile(`(?i)(\d:\d{2}(?::\d{2})?)\s+([a-z]{1,5})$`)
	spacesRe      = regexp.MustCompile(`\s+`)
)

// obsZones are RFC 2822 zone names with their offsets, any other trailing name is taken as UTC
var obsZones = map[string]string{
	"UT": "+0000", "UTC": "+0000", "GMT": "+0000", "Z": "+0000",
	"EST": "-0500", "EDT": "-0400",
	"CST": "-0600", "CDT": "-0500",
	"MST": "-0700", "MDT": "-0600",
	"PST": "-0800", "PDT": "-0700",
}

// buildMonthsRe makes a whole-word alternation with longer keys first,
// so "marco" is matched before "mar" and "setembro" before "set"
func buildMonthsRe() *regexp.Regexp {
	keys := make([]string, 0, len(ptMonths))
	for k := range ptMonths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return regexp.MustCompile(`(?i)\b(` + strings.Join(keys, "|") + `)\b`)
}

// Normalize parses raw into a UTC instant. It returns false when no strategy
// could parse the value, the caller must drop the entry in that case.
func Normalize(raw string) (time.Time, bool) {
	ts, ok := normalize(raw)
	if !ok {
		return time.Time{}, false
	}
	// whole seconds, the same instant must compare equal to its stored watermark
	return ts.Truncate(time.Second), true
}

func normalize(raw string) (time.Time, bool) {
	raw = numericZone(strings.TrimSpace(raw))
	if raw == "" {
		return time.Time{}, false
	}

	if ts, ok := parseMailDate(raw); ok {
		return ts, true
	}

	translated := Transliterate(raw)
	if ts, ok := parseMailDate(translated); ok {
		return ts, true
	}

	// lowercasing breaks ISO-8601 "T" and "Z" for the permissive parser, raw value goes first
	for _, s := range []string{raw, translated} {
		if ts, ok := parsePermissive(s); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parsePermissive tries month first, then day first for dates like 26/11/2025
func parsePermissive(s string) (time.Time, bool) {
	if ts, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return ts.UTC(), true
	}
	if ts, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false)); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}

// numericZone replaces a zone name following the time with its numeric offset,
// "08:25:00 EST" -> "08:25:00 -0500". Unknown names become "+0000", AM/PM is left alone.
func numericZone(s string) string {
	m := trailZoneRe.FindStringSubmatchIndex(s)
	if m == nil {
		return s
	}
	zone := strings.ToUpper(s[m[4]:m[5]])
	if zone == "AM" || zone == "PM" {
		return s
	}
	offset, ok := obsZones[zone]
	if !ok {
		offset = "+0000"
	}
	return s[:m[4]] + offset
}

// Transliterate rewrites a portuguese date string into an english one: diacritics are
// stripped, text is lowercased, a leading weekday is dropped and whole-word month
// names are replaced by english abbreviations, e.g. "Qua, nov 26 2025" -> "Nov 26 2025".
func Transliterate(s string) string {
	s = strings.ToLower(stripAccents(strings.TrimSpace(s)))
	if s == "" {
		return s
	}

	// a leading month name is kept, "nov 26 2025" has no weekday to drop
	if m := leadingWordRe.FindStringSubmatch(s); m != nil {
		if _, isMonth := ptMonths[m[1]]; !isMonth {
			s = s[len(m[0]):]
		}
	}

	s = monthsRe.ReplaceAllStringFunc(s, func(word string) string {
		if en, ok := ptMonths[strings.ToLower(word)]; ok {
			return en
		}
		return word
	})
	if m := trailZoneRe.FindStringSubmatchIndex(s); m != nil {
		s = s[:m[4]] + strings.ToUpper(s[m[4]:m[5]])
	}
	return spacesRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// parseMailDate parses an internet-mail style date, missing zone means UTC
func parseMailDate(s string) (time.Time, bool) {
	if ts, err := mail.ParseDate(s); err == nil {
		return ts.UTC(), true
	}
	for _, layout := range mailLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// stripAccents removes combining marks after NFD decomposition, "março" -> "marco"
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return res
}
