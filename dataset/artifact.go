package dataset

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes a Dataset into the opaque artifact blob written by the
// assembly stage and read by the trainer. Numeric content round-trips
// exactly.
func Encode(ds *Dataset) ([]byte, error) {
	data, err := msgpack.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dataset artifact: %w", err)
	}
	return data, nil
}

// Decode deserializes a dataset artifact blob.
func Decode(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := msgpack.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset artifact: %w", err)
	}
	return &ds, nil
}
