// Copyright 2024 The HoraeDB Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Status codes carried in the storage service response header.
const (
	CodeOK              uint32 = 200
	CodeInvalidArgument uint32 = 400
	CodeNotFound        uint32 = 404
	CodeTooManyRequests uint32 = 429
	CodeInternal        uint32 = 500
)

var (
	ErrNoDatabase = errors.New("database is not set in either client config or request")

	ErrEmptyTables = errors.New("tables can't be empty in route based mode")
	ErrNoRoute     = errors.New("table has no corresponding endpoint")
	ErrEmptyPoints = errors.New("write request contains no points")

	ErrEmptyPointTable = errors.New("table name must be set")
	ErrNoTimestamp     = errors.New("timestamp must be set")
	ErrEmptyFields     = errors.New("fields can't be empty")
	ErrReservedColumn  = errors.New("tag or field uses a reserved column name")
	ErrNullValue       = errors.New("null value is not allowed in tags or fields")
)

func IsOK(code uint32) bool {
	return code == CodeOK
}

// ServerError is returned when the storage service answers with a non-ok
// code in the response header.
type ServerError struct {
	Code uint32
	Msg  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error, code: %d, msg: %s", e.Code, e.Msg)
}

// ShouldClearRoute reports whether err indicates that the cached route of a
// table is outdated on the server side.
// TODO: match a structured code once the server exposes one for stale routes.
func ShouldClearRoute(err error) bool {
	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		return false
	}
	return serverErr.Code == CodeInvalidArgument &&
		strings.Contains(serverErr.Msg, "Table") &&
		strings.Contains(serverErr.Msg, "not found")
}

// TableError records the failure of the tables routed to one endpoint.
type TableError struct {
	Tables []string
	Err    error
}

// PartialWriteError reports a multi-shard write in which part of the tables
// failed. The write response returned alongside it covers the succeeded
// part only.
type PartialWriteError struct {
	Failures []TableError
}

func (e *PartialWriteError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("tables %v: %s", f.Tables, f.Err))
	}
	return "partial write failure: " + strings.Join(parts, "; ")
}

func (e *PartialWriteError) Unwrap() []error {
	unwrapped := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		unwrapped = append(unwrapped, f.Err)
	}
	return unwrapped
}
