package types

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Vector is an embedding encoded as little-endian IEEE-754 float32 values.
type Vector []byte

// EncodeVector packs a float32 slice into a Vector.
func EncodeVector(values []float32) Vector {
	out := make(Vector, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// DecodeVector unpacks a Vector. The length must be a multiple of 4.
func DecodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out, nil
}

// Dimensions returns the number of float32 values in the vector.
func (v Vector) Dimensions() int {
	return len(v) / 4
}

// Floats decodes the vector, ignoring a trailing partial value.
func (v Vector) Floats() []float32 {
	values, err := DecodeVector(v[:len(v)-len(v)%4])
	if err != nil {
		return nil
	}
	return values
}
