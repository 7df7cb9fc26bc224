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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reader reads PMU signal files. It holds no state between calls and is
// safe for concurrent use.
type Reader struct {
	logger *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader returns a Reader. Without WithLogger, diagnostics are discarded.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate checks that path exists, carries the signal extension and is not
// empty.
func Validate(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(KindNotFound, path, nil)
		}
		return newError(KindUnexpected, path, err)
	}

	if !strings.HasSuffix(path, Extension) {
		return newError(KindInvalidExtension, filepath.Base(path),
			fmt.Errorf("file must have %s extension", Extension))
	}

	if fi.Size() == 0 {
		return newError(KindEmpty, path, nil)
	}

	return nil
}

// Read decodes the signal file at path into a timestamped series.
func (r *Reader) Read(path string) (Series, error) {
	series, err := r.read(path)
	if err != nil {
		return nil, classify(path, err)
	}
	return series, nil
}

func (r *Reader) read(path string) (Series, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}
	r.logger.Info("Processing PMU signal file", slog.String("path", path))

	// Sampling metadata comes from the filename
	desc, err := ParseFilename(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	r.logger.Info("Parsed metadata",
		slog.String("date", desc.Date),
		slog.String("time", desc.Time),
		slog.Int("frequency_hz", desc.Frequency),
		slog.String("data_type", desc.DataType))

	// Parse start date and time
	start, err := StartTime(desc.Date, desc.Time)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Start time", slog.Time("start", start))

	// Decode the whole payload
	values, err := r.Decode(path, desc.DataType)
	if err != nil {
		return nil, err
	}

	// Pair every sample with its timestamp
	timestamps, err := Timestamps(start, len(values), desc.Frequency)
	if err != nil {
		return nil, err
	}

	series := make(Series, len(values))
	for i, v := range values {
		series[i] = Sample{Time: timestamps[i], Value: v}
	}

	// Log summary statistics
	sum := series.Summary()
	r.logger.Info("Read samples",
		slog.Int("count", sum.Count),
		slog.Float64("min", sum.Min),
		slog.Float64("max", sum.Max))
	r.logger.Info("Series created",
		slog.Int("zero_values", sum.Zero),
		slog.Int("non_zero_values", sum.NonZero),
		slog.Int("nan_values", sum.NaN))
	if sum.NonZero > sum.NaN {
		r.logger.Info("Non-zero value range",
			slog.Float64("min", sum.NonZeroMin),
			slog.Float64("max", sum.NonZeroMax))
	}

	return series, nil
}

// ReadSafe is like Read but logs failures instead of returning them. The
// boolean reports whether a series was produced.
func (r *Reader) ReadSafe(path string) (Series, bool) {
	series, err := r.Read(path)
	if err != nil {
		r.logger.Error("PMU processing error",
			slog.String("path", path),
			slog.Any("error", err))
		return nil, false
	}
	return series, true
}

// Inspect summarises a signal file without decoding its payload.
func (r *Reader) Inspect(path string) (FileInfo, error) {
	if err := Validate(path); err != nil {
		return FileInfo{}, err
	}

	filename := filepath.Base(path)
	desc, err := ParseFilename(filename)
	if err != nil {
		return FileInfo{}, err
	}

	start, err := StartTime(desc.Date, desc.Time)
	if err != nil {
		return FileInfo{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, newError(KindUnexpected, path, err)
	}

	dt, _ := ParseDataType(desc.DataType)
	size := fi.Size()
	points := size / int64(dt.Size())

	return FileInfo{
		FilePath:                 path,
		Filename:                 filename,
		FileSizeBytes:            size,
		Date:                     desc.Date,
		Time:                     desc.Time,
		StartTime:                start,
		FrequencyHz:              desc.Frequency,
		DataType:                 desc.DataType,
		EstimatedDataPoints:      points,
		EstimatedDurationSeconds: float64(points) / float64(desc.Frequency),
		BytesPerPoint:            dt.Size(),
	}, nil
}

// Decode reads every sample in the file at path using the encoding named by
// tag. Unknown tags fall back to DefaultDataType with a warning.
func (r *Reader) Decode(path, tag string) ([]float64, error) {
	dt, ok := ParseDataType(tag)
	if !ok {
		r.logger.Warn("Unknown data type, using default",
			slog.String("data_type", tag),
			slog.String("default", DefaultDataType.String()))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindDecodeError, path, err)
	}
	defer f.Close()

	values, err := DecodeSamples(f, dt)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && pe.Value == "" {
			pe.Value = path
		}
		return nil, err
	}
	return values, nil
}

// DecodeSamples reads r to EOF as a flat array of little-endian samples.
// Trailing bytes that do not form a whole sample are ignored.
func DecodeSamples(r io.Reader, dt DataType) ([]float64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(KindDecodeError, "", err)
	}

	size := dt.Size()
	n := len(b) / size
	if n == 0 {
		return nil, newError(KindEmptyDecode, "", nil)
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = decodeSample(b[i*size:(i+1)*size], dt)
	}
	return values, nil
}

func decodeSample(b []byte, dt DataType) float64 {
	switch dt {
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case UInt32:
		return float64(binary.LittleEndian.Uint32(b))
	case UInt16:
		return float64(binary.LittleEndian.Uint16(b))
	default:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
}

// Timestamps returns count timestamps spaced 1/frequency seconds apart,
// starting at start. Each offset is computed from the sample index so
// rounding does not accumulate.
func Timestamps(start time.Time, count, frequency int) ([]time.Time, error) {
	if frequency <= 0 {
		return nil, newError(KindInvalidFrequency, fmt.Sprint(frequency), fmt.Errorf("frequency must be positive"))
	}
	if count <= 0 {
		return nil, newError(KindInvalidCount, fmt.Sprint(count), fmt.Errorf("number of points must be positive"))
	}

	f := int64(frequency)
	ts := make([]time.Time, count)
	for i := range ts {
		n := int64(i)
		offset := time.Duration(n/f)*time.Second + time.Duration(n%f)*time.Second/time.Duration(f)
		ts[i] = start.Add(offset)
	}
	return ts, nil
}

// classify passes named failures through and wraps anything else.
func classify(path string, err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return newError(KindUnexpected, path, err)
}
