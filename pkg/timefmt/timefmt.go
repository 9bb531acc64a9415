// Package timefmt converts between ledger timestamps and the strings shown to users.
package timefmt

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Lang selects the display language. Only English and German are supported.
type Lang string

const (
	EN Lang = "en"
	DE Lang = "de"
)

// ParseLang maps a BCP 47 tag to a supported language. Anything that is not
// German falls back to English.
func ParseLang(tag string) Lang {
	if tag == "" {
		return EN
	}
	t, err := language.Parse(tag)
	if err != nil {
		return EN
	}
	if base, _ := t.Base(); base.String() == "de" {
		return DE
	}
	return EN
}

// German reports whether l is German.
func (l Lang) German() bool { return l == DE }

// FromMillis converts epoch milliseconds to a time.Time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

// ToMillis converts t to epoch milliseconds.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// DateTime renders t in local time as "Mon Jan 02 2006-15:04:05 GMT+0100",
// the date-time string without a trailing zone explanation.
func DateTime(t time.Time) string {
	lt := t.Local()
	return lt.Format("Mon Jan 02 2006") + "-" + lt.Format("15:04:05") + " GMT" + lt.Format("-0700")
}

// InputStamp renders t in local time as YYYY-MM-DDThh:mm.
func InputStamp(t time.Time) string {
	return t.Local().Format("2006-01-02T15:04")
}

// ParseInputStamp parses a YYYY-MM-DDThh:mm string in local time.
func ParseInputStamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timefmt.ParseInputStamp: %w", err)
	}
	return t, nil
}

type unit struct {
	en, enPlural string
	de, dePlural string
}

var (
	unitYear   = unit{"year", "years", "Jahr", "Jahre"}
	unitDay    = unit{"day", "days", "Tag", "Tage"}
	unitHour   = unit{"hour", "hours", "Stunde", "Stunden"}
	unitMinute = unit{"minute", "minutes", "Minute", "Minuten"}
	unitSecond = unit{"second", "seconds", "Sekunde", "Sekunden"}
	unitMilli  = unit{"millisecond", "milliseconds", "Millisekunde", "Millisekunden"}
)

func (u unit) name(n int64, lang Lang) string {
	switch {
	case lang.German() && n > 1:
		return u.dePlural
	case lang.German():
		return u.de
	case n > 1:
		return u.enPlural
	default:
		return u.en
	}
}

// Duration renders a millisecond span as "1 year 2 days 3 hours", skipping
// zero components. Years are 365 days. Zero renders as an empty string.
func Duration(ms int64, lang Lang) string {
	if ms < 0 {
		ms = -ms
	}
	secs := ms / 1000
	parts := []struct {
		n int64
		u unit
	}{
		{secs / 31536000, unitYear},
		{secs % 31536000 / 86400, unitDay},
		{secs % 86400 / 3600, unitHour},
		{secs % 3600 / 60, unitMinute},
		{secs % 60, unitSecond},
		{ms % 1000, unitMilli},
	}

	var out []string
	for _, p := range parts {
		if p.n == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("%d %s", p.n, p.u.name(p.n, lang)))
	}
	return strings.Join(out, " ")
}

// Minutes renders a whole number of minutes the way booking reports show them.
func Minutes(n int64, lang Lang) string {
	return Duration(n*int64(time.Minute/time.Millisecond), lang)
}
