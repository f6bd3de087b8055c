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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
)

// Endpoint is the grpc address of one storage node.
type Endpoint struct {
	Addr string
	Port uint32
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}

func ParseEndpoint(s string) (Endpoint, error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: missing ':'", s)
	}

	addr, rawPort := s[:idx], s[idx+1:]
	if addr == "" {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: empty addr", s)
	}

	port, err := strconv.ParseUint(rawPort, 10, 32)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: parse port: %w", s, err)
	}
	if port > math.MaxUint16 {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: port out of range", s)
	}

	return Endpoint{Addr: addr, Port: uint32(port)}, nil
}

func EndpointFromPb(pb *storagepb.Endpoint) Endpoint {
	return Endpoint{Addr: pb.GetIp(), Port: pb.GetPort()}
}
