// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pmu

import "fmt"

// Kind classifies a signal file failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindInvalidExtension
	KindEmpty
	KindMalformedName
	KindInvalidDate
	KindInvalidTime
	KindInvalidFrequency
	KindInvalidCount
	KindEmptyDecode
	KindDecodeError
)

var kindNames = [...]string{
	KindUnexpected:       "unexpected error",
	KindNotFound:         "signal file not found",
	KindInvalidExtension: "invalid extension",
	KindEmpty:            "signal file is empty",
	KindMalformedName:    "malformed filename",
	KindInvalidDate:      "invalid date",
	KindInvalidTime:      "invalid time",
	KindInvalidFrequency: "invalid frequency",
	KindInvalidCount:     "invalid sample count",
	KindEmptyDecode:      "no samples decoded",
	KindDecodeError:      "error decoding samples",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is returned by every operation in this package.
type Error struct {
	Kind  Kind
	Value string // Offending path, filename or field
	Err   error  // Underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Value != "" {
		msg += ": " + e.Value
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnexpected       = &Error{Kind: KindUnexpected}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInvalidExtension = &Error{Kind: KindInvalidExtension}
	ErrEmpty            = &Error{Kind: KindEmpty}
	ErrMalformedName    = &Error{Kind: KindMalformedName}
	ErrInvalidDate      = &Error{Kind: KindInvalidDate}
	ErrInvalidTime      = &Error{Kind: KindInvalidTime}
	ErrInvalidFrequency = &Error{Kind: KindInvalidFrequency}
	ErrInvalidCount     = &Error{Kind: KindInvalidCount}
	ErrEmptyDecode      = &Error{Kind: KindEmptyDecode}
	ErrDecode           = &Error{Kind: KindDecodeError}
)

func newError(kind Kind, value string, err error) *Error {
	return &Error{Kind: kind, Value: value, Err: err}
}
