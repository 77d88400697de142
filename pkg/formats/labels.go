package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteLabels writes one "index label" line per vertex.
func WriteLabels(w io.Writer, labels []string) error {
	bw := bufio.NewWriter(w)
	for i, l := range labels {
		fmt.Fprintf(bw, "%d %s\n", i, l)
	}
	return bw.Flush()
}

// WriteLabelsFile writes a label file to disk.
func WriteLabelsFile(path string, labels []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteLabels(f, labels); err != nil {
		f.Close()
		return fmt.Errorf("writing labels: %w", err)
	}
	return f.Close()
}
