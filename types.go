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
	"strconv"
	"time"
)

// Extension is the suffix of PMU signal files.
const Extension = ".signal"

// DataType is the fixed-width sample encoding named by a signal filename.
type DataType int

const (
	Float32 DataType = iota
	Float64
	Int32
	Int16
	UInt32
	UInt16
)

// DefaultDataType is assumed when a filename carries an unknown tag.
const DefaultDataType = Float32

var dataTypeTags = [...]string{
	Float32: "Float32",
	Float64: "Float64",
	Int32:   "Int32",
	Int16:   "Int16",
	UInt32:  "UInt32",
	UInt16:  "UInt16",
}

// ParseDataType maps a filename tag to its encoding. The boolean is false
// for unknown tags, in which case DefaultDataType is returned.
func ParseDataType(tag string) (DataType, bool) {
	for dt, s := range dataTypeTags {
		if s == tag {
			return DataType(dt), true
		}
	}
	return DefaultDataType, false
}

func (dt DataType) String() string {
	if dt < 0 || int(dt) >= len(dataTypeTags) {
		return "DataType(?)"
	}
	return dataTypeTags[dt]
}

// Size returns the number of bytes per sample.
func (dt DataType) Size() int {
	switch dt {
	case Float64:
		return 8
	case Int16, UInt16:
		return 2
	default:
		return 4
	}
}

// FormatValue formats a decoded sample at the precision of its encoding, so
// Float32 samples print without float64 widening noise and integer samples
// never switch to exponent form.
func (dt DataType) FormatValue(v float64) string {
	switch dt {
	case Float32:
		return strconv.FormatFloat(v, 'g', -1, 32)
	case Float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

// Descriptor holds the fields encoded in a signal filename.
type Descriptor struct {
	Date      string // YYYYMMDD
	Time      string // HHMMSS[.fraction]
	Frequency int    // Sampling frequency in Hz
	DataType  string // Sample encoding tag, e.g. Float32
}

// Sample is a single timestamped value.
type Sample struct {
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of samples.
type Series []Sample

// FileInfo summarises a signal file without decoding its payload.
type FileInfo struct {
	FilePath                 string    `json:"file_path"`
	Filename                 string    `json:"filename"`
	FileSizeBytes            int64     `json:"file_size_bytes"`
	Date                     string    `json:"date"`
	Time                     string    `json:"time"`
	StartTime                time.Time `json:"start_datetime"`
	FrequencyHz              int       `json:"frequency_hz"`
	DataType                 string    `json:"data_type"`
	EstimatedDataPoints      int64     `json:"estimated_data_points"`
	EstimatedDurationSeconds float64   `json:"estimated_duration_seconds"`
	BytesPerPoint            int       `json:"bytes_per_point"`
}
