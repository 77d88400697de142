package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/toothseg/pkg/math"
)

// OFF format errors.
var (
	ErrInvalidOFFHeader = errors.New("invalid OFF header: expected 'OFF'")
	ErrTruncatedOFFData = errors.New("truncated OFF data")
	ErrInvalidOFFFace   = errors.New("invalid OFF face")
)

// OFF is a parsed Object File Format mesh. Polygons with more than three
// corners are fan-triangulated on load.
type OFF struct {
	Positions []math.Vec3
	Faces     [][3]int
}

// offTokens yields whitespace separated tokens, skipping '#' comments.
type offTokens struct {
	sc     *bufio.Scanner
	fields []string
	line   int
}

func newOFFTokens(r io.Reader) *offTokens {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &offTokens{sc: sc}
}

// nextLine returns the fields of the next non-empty line.
func (t *offTokens) nextLine() ([]string, error) {
	for t.sc.Scan() {
		t.line++
		text := t.sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) > 0 {
			return fields, nil
		}
	}
	if err := t.sc.Err(); err != nil {
		return nil, err
	}
	return nil, ErrTruncatedOFFData
}

// ParseOFF parses an OFF mesh from raw bytes.
func ParseOFF(data []byte) (*OFF, error) {
	return ReadOFF(bytes.NewReader(data))
}

// ReadOFF parses an OFF mesh from a reader.
func ReadOFF(r io.Reader) (*OFF, error) {
	t := newOFFTokens(r)

	header, err := t.nextLine()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header", err)
	}
	if !strings.HasSuffix(header[0], "OFF") {
		return nil, ErrInvalidOFFHeader
	}

	// Counts may share the header line.
	counts := header[1:]
	if len(counts) == 0 {
		if counts, err = t.nextLine(); err != nil {
			return nil, fmt.Errorf("%w: reading counts", err)
		}
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("%w: line %d: expected vertex and face counts", ErrTruncatedOFFData, t.line)
	}
	nv, err := strconv.Atoi(counts[0])
	if err != nil || nv < 0 {
		return nil, fmt.Errorf("invalid OFF vertex count %q", counts[0])
	}
	nf, err := strconv.Atoi(counts[1])
	if err != nil || nf < 0 {
		return nil, fmt.Errorf("invalid OFF face count %q", counts[1])
	}

	off := &OFF{
		Positions: make([]math.Vec3, nv),
		Faces:     make([][3]int, 0, nf),
	}

	for i := 0; i < nv; i++ {
		fields, err := t.nextLine()
		if err != nil {
			return nil, fmt.Errorf("%w: reading vertex %d", err, i)
		}
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: line %d: vertex %d has %d coordinates", ErrTruncatedOFFData, t.line, i, len(fields))
		}
		var xyz [3]float64
		for k := 0; k < 3; k++ {
			if xyz[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
				return nil, fmt.Errorf("line %d: vertex %d: %w", t.line, i, err)
			}
		}
		off.Positions[i] = math.FromArray(xyz)
	}

	for i := 0; i < nf; i++ {
		fields, err := t.nextLine()
		if err != nil {
			return nil, fmt.Errorf("%w: reading face %d", err, i)
		}
		corners, err := parseOFFFace(fields, nv)
		if err != nil {
			return nil, fmt.Errorf("line %d: face %d: %w", t.line, i, err)
		}
		for k := 1; k+1 < len(corners); k++ {
			off.Faces = append(off.Faces, [3]int{corners[0], corners[k], corners[k+1]})
		}
	}

	return off, nil
}

// parseOFFFace parses "n i0 i1 ... [color]".
func parseOFFFace(fields []string, nv int) ([]int, error) {
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 3 {
		return nil, fmt.Errorf("%w: corner count %q", ErrInvalidOFFFace, fields[0])
	}
	if len(fields) < n+1 {
		return nil, fmt.Errorf("%w: %d corners listed, want %d", ErrInvalidOFFFace, len(fields)-1, n)
	}
	corners := make([]int, n)
	for k := 0; k < n; k++ {
		idx, err := strconv.Atoi(fields[k+1])
		if err != nil || idx < 0 || idx >= nv {
			return nil, fmt.Errorf("%w: corner %q out of range", ErrInvalidOFFFace, fields[k+1])
		}
		corners[k] = idx
	}
	return corners, nil
}

// ParseOFFFile parses an OFF mesh from disk.
func ParseOFFFile(path string) (*OFF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading OFF file: %w", err)
	}
	defer f.Close()
	return ReadOFF(bufio.NewReader(f))
}

// Write encodes the mesh as ASCII OFF.
func (o *OFF) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "OFF\n%d %d 0\n", len(o.Positions), len(o.Faces))
	for _, p := range o.Positions {
		bw.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Z, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	for _, f := range o.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	return bw.Flush()
}

// WriteFile writes the mesh to disk.
func (o *OFF) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := o.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing OFF file: %w", err)
	}
	return f.Close()
}
