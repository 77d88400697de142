package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	gomath "math"
	"os"
)

// Curvature cache errors.
var (
	ErrInvalidCurvatureMagic = errors.New("invalid curvature cache magic: expected 'CURV'")
	ErrUnsupportedCurvature  = errors.New("unsupported curvature cache version")
	ErrTruncatedCurvature    = errors.New("truncated curvature cache")
	ErrCurvatureCountChanged = errors.New("curvature cache vertex count does not match mesh")
)

// CurvatureCacheVersion is the version written by CurvatureCache.Bytes.
const CurvatureCacheVersion uint16 = 1

// CurvatureCache holds per-vertex mean curvature and its validity flag.
//
// Layout (little endian): "CURV", uint16 version, uint32 count, then count
// records of float64 curvature followed by one validity byte.
type CurvatureCache struct {
	Mean  []float64
	Valid []bool
}

// ParseCurvatureCache parses a cache from raw bytes.
func ParseCurvatureCache(data []byte) (*CurvatureCache, error) {
	if len(data) < 10 {
		return nil, ErrTruncatedCurvature
	}
	if string(data[0:4]) != "CURV" {
		return nil, ErrInvalidCurvatureMagic
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != CurvatureCacheVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCurvature, version)
	}
	count := int(binary.LittleEndian.Uint32(data[6:10]))

	const record = 9
	body := data[10:]
	if len(body) < count*record {
		return nil, fmt.Errorf("%w: %d bytes for %d vertices", ErrTruncatedCurvature, len(body), count)
	}

	c := &CurvatureCache{
		Mean:  make([]float64, count),
		Valid: make([]bool, count),
	}
	for i := 0; i < count; i++ {
		rec := body[i*record:]
		c.Mean[i] = gomath.Float64frombits(binary.LittleEndian.Uint64(rec[0:8]))
		c.Valid[i] = rec[8] != 0
	}
	return c, nil
}

// ReadCurvatureCacheFile reads a cache from disk and checks it covers
// exactly vertexCount vertices.
func ReadCurvatureCacheFile(path string, vertexCount int) (*CurvatureCache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curvature cache: %w", err)
	}
	c, err := ParseCurvatureCache(data)
	if err != nil {
		return nil, err
	}
	if len(c.Mean) != vertexCount {
		return nil, fmt.Errorf("%w: cache has %d, mesh has %d", ErrCurvatureCountChanged, len(c.Mean), vertexCount)
	}
	return c, nil
}

// Bytes encodes the cache.
func (c *CurvatureCache) Bytes() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(10 + len(c.Mean)*9)
	buf.WriteString("CURV")
	binary.Write(buf, binary.LittleEndian, CurvatureCacheVersion)
	binary.Write(buf, binary.LittleEndian, uint32(len(c.Mean)))
	for i, h := range c.Mean {
		binary.Write(buf, binary.LittleEndian, gomath.Float64bits(h))
		if i < len(c.Valid) && c.Valid[i] {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes()
}

// WriteFile writes the cache to disk.
func (c *CurvatureCache) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.Write(c.Bytes()); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
