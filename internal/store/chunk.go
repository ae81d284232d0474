package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/prometheus/prometheus/tsdb/chunkenc"
)

var (
	ErrInvalidChecksum = errors.New("checksum mismatch: data is corrupted")
	ErrTooSmall        = errors.New("object too small to be a valid chunk")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Point is one sample of a series. T is a monotonically increasing integer
// (path count for convergence traces).
type Point struct {
	T int64
	V float64
}

// EncodeSeries compresses points into an XOR chunk framed as
// [encoding byte][chunk bytes][crc32c big-endian].
func EncodeSeries(points []Point) ([]byte, error) {
	c := chunkenc.NewXORChunk()
	app, err := c.Appender()
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		app.Append(p.T, p.V)
	}
	return wrapChunk(c), nil
}

// DecodeSeries validates and decompresses a framed chunk.
func DecodeSeries(data []byte) ([]Point, error) {
	c, err := readAndValidateChunk(data)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, c.NumSamples())
	it := c.Iterator(nil)
	for it.Next() != chunkenc.ValNone {
		t, v := it.At()
		points = append(points, Point{T: t, V: v})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk: %w", err)
	}
	return points, nil
}

func wrapChunk(c chunkenc.Chunk) []byte {
	raw := c.Bytes()
	res := make([]byte, 1+len(raw)+4)
	res[0] = byte(c.Encoding())
	copy(res[1:], raw)
	binary.BigEndian.PutUint32(res[1+len(raw):], crc32.Checksum(res[:1+len(raw)], castagnoli))
	return res
}

func readAndValidateChunk(data []byte) (chunkenc.Chunk, error) {
	if len(data) < 5 {
		return nil, ErrTooSmall
	}

	payload := data[:len(data)-4]
	want := binary.BigEndian.Uint32(data[len(data)-4:])
	if crc32.Checksum(payload, castagnoli) != want {
		return nil, ErrInvalidChecksum
	}

	encoding := chunkenc.Encoding(payload[0])
	if encoding != chunkenc.EncXOR {
		return nil, fmt.Errorf("unsupported encoding type: %d", encoding)
	}

	c := chunkenc.NewXORChunk()
	c.Reset(payload[1:])
	return c, nil
}
