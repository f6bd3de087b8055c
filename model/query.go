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

package model

import (
	"errors"
	"fmt"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
)

// SQLQueryRequest is one sql statement. Tables lists the tables the sql
// touches, the route based client uses them as routing keys.
type SQLQueryRequest struct {
	// Database overrides the default database of the client when set.
	Database string
	Tables   []string
	SQL      string
}

// SQLQueryResponse holds either the affected row count of a ddl/dml
// statement or the result rows of a select.
type SQLQueryResponse struct {
	AffectedRows uint32
	Rows         []Row
}

func SQLQueryResponseFromPb(pb *storagepb.SqlQueryResponse) (*SQLQueryResponse, error) {
	switch output := pb.GetOutput().(type) {
	case *storagepb.SqlQueryResponse_AffectedRows:
		return &SQLQueryResponse{AffectedRows: output.AffectedRows}, nil
	case *storagepb.SqlQueryResponse_Arrow:
		rows, err := rowsFromArrowPayload(output.Arrow)
		if err != nil {
			return nil, fmt.Errorf("decode arrow payload: %w", err)
		}
		return &SQLQueryResponse{Rows: rows}, nil
	case nil:
		return nil, errors.New("output is empty in sql query response")
	default:
		return nil, fmt.Errorf("unknown output type %T in sql query response", output)
	}
}
