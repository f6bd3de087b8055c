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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldClearRoute(t *testing.T) {
	require.True(t, ShouldClearRoute(&ServerError{
		Code: CodeInvalidArgument,
		Msg:  "Table test_table not found",
	}))
	require.True(t, ShouldClearRoute(fmt.Errorf("write failed: %w", &ServerError{
		Code: CodeInvalidArgument,
		Msg:  "Table test_table not found",
	})))

	require.False(t, ShouldClearRoute(&ServerError{
		Code: CodeInternal,
		Msg:  "Table test_table not found",
	}))
	require.False(t, ShouldClearRoute(&ServerError{
		Code: CodeInvalidArgument,
		Msg:  "invalid sql",
	}))
	require.False(t, ShouldClearRoute(errors.New("Table test_table not found")))
	require.False(t, ShouldClearRoute(nil))
}

func TestPartialWriteError(t *testing.T) {
	cause := &ServerError{Code: CodeInternal, Msg: "flush failed"}
	err := &PartialWriteError{
		Failures: []TableError{
			{Tables: []string{"t1", "t2"}, Err: cause},
			{Tables: []string{"t3"}, Err: ErrNoRoute},
		},
	}

	require.Contains(t, err.Error(), "t1")
	require.Contains(t, err.Error(), "flush failed")

	require.ErrorIs(t, err, ErrNoRoute)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, CodeInternal, serverErr.Code)
}
