package cache

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encode writes a little-endian uint32 length followed by the float32 values.
func encode(vec []float32) []byte {
	buf := make([]byte, 4+len(vec)*4)
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(vec)))
	off := 4
	for _, v := range vec {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
		off += 4
	}
	return buf
}

func decode(data []byte) ([]float32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("cached vector too small: %d bytes", len(data))
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	data = data[4:]
	if len(data) != length*4 {
		return nil, fmt.Errorf("cached vector length mismatch: header %d, payload %d bytes", length, len(data))
	}
	vec := make([]float32, length)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4 : (i+1)*4]))
	}
	return vec, nil
}
