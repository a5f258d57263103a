// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/retrievit/core"
)

// snapshotFormatVersion guards against loading snapshots written by an
// incompatible release.
const snapshotFormatVersion = 1

// SnapshotRecord is one persisted corpus entry: a document together with
// its embedding, so a restore never has to re-embed.
type SnapshotRecord struct {
	Doc    core.Document
	Vector []float32
}

// MarshalSnapshot serializes corpus records to bytes in MUS format.
func MarshalSnapshot(records []SnapshotRecord) []byte {
	size := varint.Int.Size(snapshotFormatVersion) + varint.Int.Size(len(records))
	for i := range records {
		size += sizeSnapshotRecord(&records[i])
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(snapshotFormatVersion, buf)
	n += varint.Int.Marshal(len(records), buf[n:])
	for i := range records {
		n += marshalSnapshotRecord(&records[i], buf[n:])
	}
	return buf
}

// UnmarshalSnapshot deserializes corpus records from bytes.
// Returns ErrSerializationFailed (wrapped) for malformed input.
func UnmarshalSnapshot(data []byte) ([]SnapshotRecord, error) {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if version != snapshotFormatVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrSerializationFailed, version)
	}

	count, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += m
	if count < 0 || count > len(data) {
		return nil, fmt.Errorf("%w: implausible record count %d", ErrTruncatedData, count)
	}

	records := make([]SnapshotRecord, 0, count)
	for i := 0; i < count; i++ {
		record, m, err := unmarshalSnapshotRecord(data[n:])
		if err != nil {
			return nil, err
		}
		n += m
		records = append(records, record)
	}
	return records, nil
}

func sizeSnapshotRecord(r *SnapshotRecord) (size int) {
	size = ord.String.Size(r.Doc.ID)
	size += ord.String.Size(r.Doc.Content)
	size += ord.String.Size(r.Doc.Meta.Title)
	size += ord.String.Size(r.Doc.Meta.Type)
	size += ord.String.Size(r.Doc.Meta.Package)
	size += ord.String.Size(r.Doc.Meta.Function)
	size += ord.String.Size(r.Doc.Meta.Task)
	size += varint.Int.Size(len(r.Doc.Meta.Extra))
	for k, v := range r.Doc.Meta.Extra {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	size += varint.Int.Size(len(r.Vector))
	for _, f := range r.Vector {
		size += varint.Float32.Size(f)
	}
	return size
}

func marshalSnapshotRecord(r *SnapshotRecord, buf []byte) (n int) {
	n = ord.String.Marshal(r.Doc.ID, buf)
	n += ord.String.Marshal(r.Doc.Content, buf[n:])
	n += ord.String.Marshal(r.Doc.Meta.Title, buf[n:])
	n += ord.String.Marshal(r.Doc.Meta.Type, buf[n:])
	n += ord.String.Marshal(r.Doc.Meta.Package, buf[n:])
	n += ord.String.Marshal(r.Doc.Meta.Function, buf[n:])
	n += ord.String.Marshal(r.Doc.Meta.Task, buf[n:])

	// Extra map in sorted key order so byte output is deterministic.
	n += varint.Int.Marshal(len(r.Doc.Meta.Extra), buf[n:])
	keys := make([]string, 0, len(r.Doc.Meta.Extra))
	for k := range r.Doc.Meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, buf[n:])
		n += ord.String.Marshal(r.Doc.Meta.Extra[k], buf[n:])
	}

	n += varint.Int.Marshal(len(r.Vector), buf[n:])
	for _, f := range r.Vector {
		n += varint.Float32.Marshal(f, buf[n:])
	}
	return n
}

func unmarshalSnapshotRecord(data []byte) (r SnapshotRecord, n int, err error) {
	fail := func(e error) (SnapshotRecord, int, error) {
		return SnapshotRecord{}, 0, fmt.Errorf("%w: %w", ErrSerializationFailed, e)
	}

	var m int
	if r.Doc.ID, n, err = ord.String.Unmarshal(data); err != nil {
		return fail(err)
	}
	if r.Doc.Content, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return fail(err)
	}
	n += m
	if r.Doc.Meta.Title, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return fail(err)
	}
	n += m
	if r.Doc.Meta.Type, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return fail(err)
	}
	n += m
	if r.Doc.Meta.Package, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return fail(err)
	}
	n += m
	if r.Doc.Meta.Function, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return fail(err)
	}
	n += m
	if r.Doc.Meta.Task, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return fail(err)
	}
	n += m

	extraCount, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return fail(err)
	}
	n += m
	if extraCount < 0 || extraCount > len(data) {
		return SnapshotRecord{}, 0, fmt.Errorf("%w: implausible metadata count %d", ErrTruncatedData, extraCount)
	}
	if extraCount > 0 {
		r.Doc.Meta.Extra = make(map[string]string, extraCount)
		for i := 0; i < extraCount; i++ {
			var k, v string
			if k, m, err = ord.String.Unmarshal(data[n:]); err != nil {
				return fail(err)
			}
			n += m
			if v, m, err = ord.String.Unmarshal(data[n:]); err != nil {
				return fail(err)
			}
			n += m
			r.Doc.Meta.Extra[k] = v
		}
	}

	vecLen, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return fail(err)
	}
	n += m
	if vecLen < 0 || vecLen > len(data) {
		return SnapshotRecord{}, 0, fmt.Errorf("%w: implausible vector length %d", ErrTruncatedData, vecLen)
	}
	if vecLen > 0 {
		r.Vector = make([]float32, vecLen)
		for i := 0; i < vecLen; i++ {
			if r.Vector[i], m, err = varint.Float32.Unmarshal(data[n:]); err != nil {
				return fail(err)
			}
			n += m
		}
	}

	return r, n, nil
}
