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

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/cubefs/cubefs/blobstore/common/config"
	"github.com/cubefs/cubefs/blobstore/common/trace"
	"github.com/cubefs/cubefs/blobstore/util/log"

	"github.com/apache/horaedb-client-go/client"
	"github.com/apache/horaedb-client-go/model"
)

// Config cli config
type Config struct {
	client.Config

	// Tables the sql touches, used as routing keys in direct mode.
	Tables   []string  `json:"tables"`
	LogLevel log.Level `json:"log_level"`
}

func main() {
	config.Init("f", "", "client.json")

	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		log.Fatalf("load config failed: %s", err)
	}
	log.SetOutputLevel(cfg.LogLevel)

	sql := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if sql == "" {
		log.Fatal("usage: horaedb-cli -f client.json <sql>")
	}

	cli, err := client.New(&cfg.Config)
	if err != nil {
		log.Fatalf("create client failed: %s", err)
	}
	defer cli.Close()

	span, ctx := trace.StartSpanFromContext(context.Background(), "horaedb-cli")
	resp, err := cli.SQLQuery(ctx, &model.SQLQueryRequest{
		Tables: cfg.Tables,
		SQL:    sql,
	})
	if err != nil {
		span.Fatalf("query failed: %s", err)
	}

	if len(resp.Rows) == 0 {
		fmt.Printf("affected rows: %d\n", resp.AffectedRows)
		return
	}
	for i, row := range resp.Rows {
		columns := make([]string, 0, len(row.Columns()))
		for _, column := range row.Columns() {
			columns = append(columns, fmt.Sprintf("%s:%s", column.Name, column.Value))
		}
		fmt.Printf("row[%d]: %s\n", i, strings.Join(columns, ", "))
	}
}
