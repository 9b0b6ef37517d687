package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Load reads an edge table from a whitespace-separated text file.
func Load(path string) (*EdgeSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge file: %w", err)
	}
	defer f.Close()

	es, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", path, err)
	}
	return es, nil
}

// Read parses one edge per line: "day origin destination timestamp".
// Blank lines and lines starting with '#' are skipped. Commas are accepted as separators.
func Read(r io.Reader) (*EdgeSet, error) {
	var rows [][]float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) != Columns {
			return nil, fmt.Errorf("line %d has %d columns: %w", lineNo, len(fields), ErrShapeMismatch)
		}
		row := make([]float64, Columns)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return FromRows(rows)
}

// Write serializes es in the format accepted by Read.
func Write(w io.Writer, es *EdgeSet) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < es.Len(); i++ {
		_, err := fmt.Fprintf(bw, "%d %d %d %s\n",
			es.Days[i], es.Origins[i], es.Destinations[i],
			strconv.FormatFloat(es.Times[i], 'f', -1, 64))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}
