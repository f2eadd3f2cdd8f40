package moc

import (
	"strconv"
	"strings"
	"time"
)

// MicrosPerDay is the number of Time-quantity ticks (microseconds) in one
// Julian day, per spec.md §1's T-MOC domain: [0, 2^61) microseconds since
// Julian Date 0.
const MicrosPerDay = 86400_000_000

// mjdOffset is JD - MJD, the fixed offset spec.md §6.4 defines MJD by.
const mjdOffset = 2400000.5

// ParseTime accepts any of the five input forms spec.md §6.4 names and
// normalises to u64 microseconds since Julian Date 0:
//
//	"jd:<float>"    decimal Julian Date
//	"mjd:<float>"   decimal Modified Julian Date (JD - 2400000.5)
//	"usec:<uint>"   unsigned microseconds since JD 0, already normalised
//	RFC3339         e.g. "2021-09-01T12:00:00Z"
//	"YYYY-MM-DDTHH:MM:SS" (no offset, assumed UTC)
func ParseTime(s string) (uint64, error) {
	switch {
	case strings.HasPrefix(s, "jd:"):
		jd, err := strconv.ParseFloat(strings.TrimPrefix(s, "jd:"), 64)
		if err != nil {
			return 0, NewError(FormatError, "invalid JD value", err)
		}
		return jdToMicros(jd)
	case strings.HasPrefix(s, "mjd:"):
		mjd, err := strconv.ParseFloat(strings.TrimPrefix(s, "mjd:"), 64)
		if err != nil {
			return 0, NewError(FormatError, "invalid MJD value", err)
		}
		return jdToMicros(mjd + mjdOffset)
	case strings.HasPrefix(s, "usec:"):
		u, err := strconv.ParseUint(strings.TrimPrefix(s, "usec:"), 10, 64)
		if err != nil {
			return 0, NewError(FormatError, "invalid microsecond value", err)
		}
		return u, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return timeToMicros(t)
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return timeToMicros(t)
	}
	return 0, NewError(FormatError, "unrecognised time format: "+s, nil)
}

func timeToMicros(t time.Time) (uint64, error) {
	jd := gregorianToJD(t.Year(), int(t.Month()), t.Day())
	fractionOfDay := float64(t.Hour())/24 + float64(t.Minute())/1440 + float64(t.Second())/86400
	return jdToMicros(float64(jd) + fractionOfDay - 0.5)
}

// gregorianToJD computes the Julian Day Number (an integer, for the noon
// instant of the given civil date) via the Fliegel & Van Flandern integer
// formula, per spec.md §6.4's "Gregorian->JD uses integer arithmetic".
func gregorianToJD(year, month, day int) int64 {
	y, m, d := int64(year), int64(month), int64(day)
	a := (14 - m) / 12
	y2 := y + 4800 - a
	m2 := m + 12*a - 3
	return d + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}

// jdToMicros converts a (possibly fractional) Julian Date to u64
// microseconds since JD 0, rejecting values outside the Time quantity's
// representable domain.
func jdToMicros(jd float64) (uint64, error) {
	if jd < 0 {
		return 0, NewError(OutOfRange, "time value precedes Julian Date 0", nil)
	}
	micros := jd * MicrosPerDay
	if micros >= float64(uint64(1)<<61) {
		return 0, NewError(OutOfRange, "time value exceeds the Time quantity's representable domain", nil)
	}
	return uint64(micros + 0.5), nil
}

// MicrosToJD converts u64 microseconds since JD 0 back to a decimal
// Julian Date, the inverse of ParseTime's "jd:" form.
func MicrosToJD(micros uint64) float64 {
	return float64(micros) / MicrosPerDay
}

// MicrosToMJD converts u64 microseconds since JD 0 to a decimal Modified
// Julian Date.
func MicrosToMJD(micros uint64) float64 {
	return MicrosToJD(micros) - mjdOffset
}
