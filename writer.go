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
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Writer writes signal payloads.
type Writer struct {
	w       *bufio.Writer
	dt      DataType
	samples int // Number of samples written so far.
}

// Create returns a Writer that encodes samples as dt.
func Create(w io.Writer, dt DataType) *Writer {
	return &Writer{w: bufio.NewWriter(w), dt: dt}
}

// Write appends samples to the payload. Values are converted to the
// writer's encoding, so integer encodings truncate toward zero.
func (sw *Writer) Write(values []float64) error {
	buf := make([]byte, sw.dt.Size())
	for _, v := range values {
		encodeSample(buf, sw.dt, v)
		if _, err := sw.w.Write(buf); err != nil {
			return fmt.Errorf("error writing sample: %w", err)
		}
		sw.samples++
	}
	return nil
}

// Samples returns the number of samples written.
func (sw *Writer) Samples() int {
	return sw.samples
}

// Close flushes buffered samples to the underlying writer.
func (sw *Writer) Close() error {
	if err := sw.w.Flush(); err != nil {
		return fmt.Errorf("error flushing samples: %w", err)
	}
	return nil
}

// WriteFile writes values to a new signal file in dir, named after its
// start time, frequency and encoding. It returns the path of the file.
func WriteFile(dir string, start time.Time, frequency int, dt DataType, values []float64) (string, error) {
	if frequency <= 0 {
		return "", newError(KindInvalidFrequency, fmt.Sprint(frequency), fmt.Errorf("frequency must be positive"))
	}

	path := filepath.Join(dir, FormatFilename(start, frequency, dt))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating signal file: %w", err)
	}

	sw := Create(f, dt)
	if err := sw.Write(values); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := sw.Close(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("error closing signal file: %w", err)
	}

	return path, nil
}

func encodeSample(b []byte, dt DataType, v float64) {
	switch dt {
	case Float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	case Int32:
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	case Int16:
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case UInt32:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case UInt16:
		binary.LittleEndian.PutUint16(b, uint16(v))
	default:
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	}
}
