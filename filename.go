// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pmu

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseFilename extracts the sampling metadata from a signal filename of the
// form YYYYMMDD,HHMMSS[.fraction],FREQUENCY,DATATYPE[.signal]. Fields after
// the fourth are ignored.
func ParseFilename(name string) (Descriptor, error) {
	base := strings.TrimSuffix(name, Extension)

	parts := strings.Split(base, ",")
	if len(parts) < 4 {
		return Descriptor{}, newError(KindMalformedName, base,
			fmt.Errorf("expected YYYYMMDD,HHMMSS.fraction,frequency,datatype%s", Extension))
	}

	desc := Descriptor{
		Date:     strings.TrimSpace(parts[0]),
		Time:     strings.TrimSpace(parts[1]),
		DataType: strings.TrimSpace(parts[3]),
	}

	if len(desc.Date) != 8 || !isDigits(desc.Date) {
		return Descriptor{}, newError(KindInvalidDate, desc.Date, fmt.Errorf("expected YYYYMMDD"))
	}

	freqStr := strings.TrimSpace(parts[2])
	freq, err := strconv.Atoi(freqStr)
	if err != nil {
		return Descriptor{}, newError(KindInvalidFrequency, freqStr, err)
	}
	if freq <= 0 {
		return Descriptor{}, newError(KindInvalidFrequency, freqStr, fmt.Errorf("frequency must be positive"))
	}
	desc.Frequency = freq

	clock, _, _ := strings.Cut(desc.Time, ".")
	if len(clock) != 6 || !isDigits(clock) {
		return Descriptor{}, newError(KindInvalidTime, clock, fmt.Errorf("expected HHMMSS"))
	}

	return desc, nil
}

// StartTime returns the time of the first sample. The optional fraction
// after the decimal point is read as a decimal fraction of a second and
// truncated (never rounded) to microsecond resolution, using the same
// float64 arithmetic that produced historical exports.
func StartTime(date, clock string) (time.Time, error) {
	// Parse start date
	day, err := time.Parse("20060102", date)
	if err != nil {
		return time.Time{}, newError(KindInvalidDate, date, err)
	}

	// Parse start time of day
	parts := strings.Split(clock, ".")
	hms := parts[0]
	if len(hms) != 6 || !isDigits(hms) {
		return time.Time{}, newError(KindInvalidTime, clock, fmt.Errorf("time component must be 6 digits (HHMMSS)"))
	}

	hours, _ := strconv.Atoi(hms[0:2])
	minutes, _ := strconv.Atoi(hms[2:4])
	seconds, _ := strconv.Atoi(hms[4:6])

	// Fractional seconds, truncated to microseconds
	var micros int64
	if len(parts) > 1 {
		frac := parts[1]
		if !isDigits(frac) {
			return time.Time{}, newError(KindInvalidTime, clock, fmt.Errorf("fractional seconds must be digits, got %q", frac))
		}
		f, err := strconv.ParseFloat("0."+frac, 64)
		if err != nil {
			return time.Time{}, newError(KindInvalidTime, clock, err)
		}
		micros = int64(f * 1e6)
		if micros >= 1e6 {
			return time.Time{}, newError(KindInvalidTime, clock, fmt.Errorf("fractional seconds out of range"))
		}
	}

	// Validate time values
	switch {
	case hours > 23:
		return time.Time{}, newError(KindInvalidTime, clock, fmt.Errorf("hours must be 0-23, got %d", hours))
	case minutes > 59:
		return time.Time{}, newError(KindInvalidTime, clock, fmt.Errorf("minutes must be 0-59, got %d", minutes))
	case seconds > 59:
		return time.Time{}, newError(KindInvalidTime, clock, fmt.Errorf("seconds must be 0-59, got %d", seconds))
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		hours, minutes, seconds, int(micros)*int(time.Microsecond), time.UTC), nil
}

// FormatFilename builds the conventional filename for a capture starting at
// start. The fraction is written with nanosecond precision.
func FormatFilename(start time.Time, frequency int, dt DataType) string {
	start = start.UTC()
	return fmt.Sprintf("%s,%s.%09d,%d,%s%s",
		start.Format("20060102"), start.Format("150405"), start.Nanosecond(),
		frequency, dt, Extension)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
