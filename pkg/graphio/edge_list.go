package graphio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lintang/astarx/pkg/datastructure"
	"lintang/astarx/pkg/graph"

	"github.com/DataDog/zstd"
)

var ErrMalformedRow = errors.New("malformed edge list row")

var header = []string{"from", "to", "weight"}

// ReadEdgeList baca csv from,to,weight. baris diawali '#' di skip, header boleh ada di baris pertama.
func ReadEdgeList(r io.Reader) (*graph.AdjacencyList[string], error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	g := graph.NewAdjacencyList[string]()
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) != 3 {
			return nil, fmt.Errorf("%w: line %d: want 3 fields, got %d", ErrMalformedRow, line, len(record))
		}

		from, to := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if from == "" || to == "" {
			return nil, fmt.Errorf("%w: line %d: empty vertex", ErrMalformedRow, line)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: weight %q", ErrMalformedRow, line, record[2])
		}
		if err := g.AddEdge(from, to, weight); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, line, err)
		}
	}
	return g, nil
}

func isHeader(record []string) bool {
	if len(record) != len(header) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(record[i]), h) {
			return false
		}
	}
	return true
}

// LoadEdgeListFile file berakhiran .zst di decompress dulu
func LoadEdgeListFile(path string) (*graph.AdjacencyList[string], error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edge list %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".zst") {
		bb, err = Decompress(bb)
		if err != nil {
			return nil, fmt.Errorf("decompress edge list %s: %w", path, err)
		}
	}
	return ReadEdgeList(bytes.NewReader(bb))
}

func WriteEdgeList(w io.Writer, edges []datastructure.WeightedEdge[string]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range edges {
		if err := cw.Write([]string{e.From, e.To, strconv.FormatFloat(e.Weight, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
