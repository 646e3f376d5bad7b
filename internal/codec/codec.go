// Package codec serialises segments and metadata. Every persisted file —
// segment blobs, the metadata vectors, the id counter — goes through the same
// self-describing msgpack encoding, so a read_meta/write_meta round-trip is
// the identity. Element values are opaque to the engine; msgpack encodes
// whatever element type a container is instantiated with.
package codec

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/iamNilotpal/bigcoll/pkg/errors"
)

// Marshal encodes v into the canonical binary form.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeInternal, "Failed to encode payload",
		)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into v. Decode failures surface as corruption: the
// bytes on disk are not a valid encoding of the expected shape.
func Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return errors.NewStorageError(
			err, errors.ErrorCodeCorruptDatabase, "Failed to decode persisted payload",
		)
	}
	return nil
}
