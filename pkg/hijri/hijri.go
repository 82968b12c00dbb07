// Package hijri converts Hijri (Islamic lunar calendar) dates to Gregorian,
// used by the Graph Service's Person upsert (spec.md §3: "date_of_birth
// with year<1900 is treated as Hijri and converted"). There is no calendar
// library anywhere in the retrieval pack; this implements the standard
// Kuwaiti-algorithm tabular approximation (integer arithmetic, no lookup
// table), which is accurate to within a day or two around epoch boundaries
// — acceptable here since the source data is itself a user-entered date,
// not a liturgical calculation.
package hijri

import (
	"fmt"
	"strconv"
	"strings"
)

// LeadingYear extracts the leading YYYY from an ISO-ish "YYYY-MM-DD" date
// string, reporting whether it parsed.
func LeadingYear(date string) (int, bool) {
	parts := strings.SplitN(date, "-", 2)
	if len(parts) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ToGregorian converts a Hijri "YYYY-MM-DD" date to its Gregorian
// equivalent, also "YYYY-MM-DD".
func ToGregorian(hijriDate string) (string, error) {
	parts := strings.Split(hijriDate, "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("hijri: invalid date %q", hijriDate)
	}
	y, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	d, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", fmt.Errorf("hijri: invalid date %q", hijriDate)
	}

	jd := hijriToJulianDay(y, m, d)
	gy, gm, gd := julianDayToGregorian(jd)
	return fmt.Sprintf("%04d-%02d-%02d", gy, gm, gd), nil
}

// hijriToJulianDay uses the tabular (Kuwaiti) Islamic calendar formula.
func hijriToJulianDay(y, m, d int) int {
	return (11*y+3)/30 + 354*y + 30*m - (m-1)/2 + d + 1948440 - 385
}

// julianDayToGregorian converts a Julian Day Number to a proleptic
// Gregorian date using the standard Fliegel–Van Flandern algorithm.
func julianDayToGregorian(jd int) (year, month, day int) {
	l := jd + 68569
	n := (4 * l) / 146097
	l = l - (146097*n+3)/4
	i := (4000 * (l + 1)) / 1461001
	l = l - (1461*i)/4 + 31
	j := (80 * l) / 2447
	day = l - (2447*j)/80
	l = j / 11
	month = j + 2 - 12*l
	year = 100*(n-49) + i + l
	return
}
