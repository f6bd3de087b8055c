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
	"sort"

	"github.com/apache/incubator-horaedb-proto/golang/pkg/storagepb"
)

// WriteRequest carries points grouped by table.
type WriteRequest struct {
	// Database overrides the default database of the client when set.
	Database string
	// PointGroups maps a table name to its points.
	PointGroups map[string][]Point
}

func NewWriteRequest(points ...Point) *WriteRequest {
	r := &WriteRequest{PointGroups: make(map[string][]Point)}
	return r.Add(points...)
}

func (r *WriteRequest) Add(points ...Point) *WriteRequest {
	for _, p := range points {
		r.PointGroups[p.Table] = append(r.PointGroups[p.Table], p)
	}
	return r
}

// Tables returns the written tables in a stable order.
func (r *WriteRequest) Tables() []string {
	tables := make([]string, 0, len(r.PointGroups))
	for table := range r.PointGroups {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

func (r *WriteRequest) PointCount() int {
	n := 0
	for _, points := range r.PointGroups {
		n += len(points)
	}
	return n
}

// ToTableRequestPbs encodes the request into per-table wire requests. Points
// of one table are grouped into series entries by their tag set, the field
// values of one series are grouped by timestamp, and tag and field names are
// interned into per-table name dictionaries.
func (r *WriteRequest) ToTableRequestPbs() []*storagepb.WriteTableRequest {
	tableRequestPbs := make([]*storagepb.WriteTableRequest, 0, len(r.PointGroups))
	for _, table := range r.Tables() {
		tableRequestPbs = append(tableRequestPbs, buildTableRequestPb(table, r.PointGroups[table]))
	}
	return tableRequestPbs
}

type seriesEntry struct {
	tags map[string]Value
	// tsFields maps a timestamp to the fields measured at that time.
	tsFields map[int64]map[string]Value
}

func buildTableRequestPb(table string, points []Point) *storagepb.WriteTableRequest {
	// Partition points into series by their tag sets, keeping the first
	// seen order of series stable.
	entriesByKey := make(map[string]*seriesEntry, len(points))
	entries := make([]*seriesEntry, 0, len(points))
	for _, point := range points {
		key := seriesKey(point.Tags)
		entry, ok := entriesByKey[key]
		if !ok {
			entry = &seriesEntry{
				tags:     point.Tags,
				tsFields: make(map[int64]map[string]Value),
			}
			entriesByKey[key] = entry
			entries = append(entries, entry)
		}
		entry.tsFields[point.Timestamp] = point.Fields
	}

	tagsDict := newNameDict()
	fieldsDict := newNameDict()
	entryPbs := make([]*storagepb.WriteSeriesEntry, 0, len(entries))
	for _, entry := range entries {
		entryPbs = append(entryPbs, &storagepb.WriteSeriesEntry{
			Tags:        buildTagPbs(tagsDict, entry.tags),
			FieldGroups: buildFieldGroupPbs(fieldsDict, entry.tsFields),
		})
	}

	return &storagepb.WriteTableRequest{
		Table:      table,
		TagNames:   tagsDict.ordered(),
		FieldNames: fieldsDict.ordered(),
		Entries:    entryPbs,
	}
}

func buildTagPbs(tagsDict *nameDict, tags map[string]Value) []*storagepb.Tag {
	tagPbs := make([]*storagepb.Tag, 0, len(tags))
	for _, name := range sortedColumnNames(tags) {
		tagPbs = append(tagPbs, &storagepb.Tag{
			NameIndex: tagsDict.insert(name),
			Value:     tags[name].pbValue(),
		})
	}
	return tagPbs
}

func buildFieldGroupPbs(fieldsDict *nameDict, tsFields map[int64]map[string]Value) []*storagepb.FieldGroup {
	timestamps := make([]int64, 0, len(tsFields))
	for ts := range tsFields {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	groupPbs := make([]*storagepb.FieldGroup, 0, len(timestamps))
	for _, ts := range timestamps {
		fields := tsFields[ts]
		fieldPbs := make([]*storagepb.Field, 0, len(fields))
		for _, name := range sortedColumnNames(fields) {
			fieldPbs = append(fieldPbs, &storagepb.Field{
				NameIndex: fieldsDict.insert(name),
				Value:     fields[name].pbValue(),
			})
		}
		groupPbs = append(groupPbs, &storagepb.FieldGroup{
			Timestamp: ts,
			Fields:    fieldPbs,
		})
	}
	return groupPbs
}

// nameDict interns tag and field names, so every entry of a table request
// refers to its columns by index.
type nameDict struct {
	idx   map[string]uint32
	names []string
}

func newNameDict() *nameDict {
	return &nameDict{idx: make(map[string]uint32)}
}

func (d *nameDict) insert(name string) uint32 {
	if i, ok := d.idx[name]; ok {
		return i
	}
	i := uint32(len(d.names))
	d.idx[name] = i
	d.names = append(d.names, name)
	return i
}

func (d *nameDict) ordered() []string {
	return d.names
}

// seriesKey builds the identity of the series a point belongs to from its
// tags, traversed in a definite order.
func seriesKey(tags map[string]Value) string {
	buf := make([]byte, 0, 64)
	for _, name := range sortedColumnNames(tags) {
		buf = append(buf, name...)
		buf = tags[name].appendTo(buf)
	}
	return string(buf)
}

func sortedColumnNames(columns map[string]Value) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteResponse reports how many points a write stored and rejected.
type WriteResponse struct {
	Success uint32
	Failed  uint32
}

func WriteResponseFromPb(pb *storagepb.WriteResponse) *WriteResponse {
	return &WriteResponse{
		Success: pb.GetSuccess(),
		Failed:  pb.GetFailed(),
	}
}
