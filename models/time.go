// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// DayLayout is the canonical partition day format.
const DayLayout = "2006-01-02"

// HoursPerDay is the number of hourly partitions in a day.
const HoursPerDay = 24

// Partition maps an instant to its UTC (day, hour) key.
func Partition(t time.Time) (day string, hour int) {
	u := t.UTC()
	return u.Format(DayLayout), u.Hour()
}

// ValidDay reports whether s is a YYYY-MM-DD calendar date.
func ValidDay(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}
