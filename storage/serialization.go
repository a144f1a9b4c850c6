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

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/dealflow/core"
)

// Layout: signal id, model, content hash, vector length, vector elements.
// Integers are varint encoded, vector elements are raw little-endian float32.

// MarshalSignalEmbedding serializes a SignalEmbedding to bytes.
func MarshalSignalEmbedding(e *core.SignalEmbedding) []byte {
	buf := make([]byte, signalEmbeddingSize(e))
	n := varint.Int64.Marshal(e.SignalID, buf)
	n += ord.String.Marshal(e.Model, buf[n:])
	n += varint.Uint64.Marshal(e.ContentHash, buf[n:])
	n += varint.Int.Marshal(len(e.Vector), buf[n:])
	for _, v := range e.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalSignalEmbedding deserializes a SignalEmbedding from bytes.
func UnmarshalSignalEmbedding(data []byte) (*core.SignalEmbedding, error) {
	var (
		e   core.SignalEmbedding
		n   int
		off int
		err error
	)

	if e.SignalID, n, err = varint.Int64.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: signal id: %w", ErrSerializationFailed, err)
	}
	off += n
	if e.Model, n, err = ord.String.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: model: %w", ErrSerializationFailed, err)
	}
	off += n
	if e.ContentHash, n, err = varint.Uint64.Unmarshal(data[off:]); err != nil {
		return nil, fmt.Errorf("%w: content hash: %w", ErrSerializationFailed, err)
	}
	off += n

	length, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	off += n
	if length < 0 || length*4 > len(data)-off {
		return nil, fmt.Errorf("%w: vector of %d elements in %d bytes", ErrTruncatedData, length, len(data)-off)
	}

	e.Vector = make([]float32, length)
	for i := range e.Vector {
		if e.Vector[i], n, err = raw.Float32.Unmarshal(data[off:]); err != nil {
			return nil, fmt.Errorf("%w: vector[%d]: %w", ErrSerializationFailed, i, err)
		}
		off += n
	}

	return &e, nil
}

func signalEmbeddingSize(e *core.SignalEmbedding) int {
	size := varint.Int64.Size(e.SignalID) +
		ord.String.Size(e.Model) +
		varint.Uint64.Size(e.ContentHash) +
		varint.Int.Size(len(e.Vector))
	for _, v := range e.Vector {
		size += raw.Float32.Size(v)
	}
	return size
}
