package network

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// baseGrid is the raw base-network input before country filtering.
type baseGrid struct {
	buses []builtinBus
	lines []builtinLine
}

// loadBase reads the base network from dir (buses.csv, lines.csv) or falls
// back to the built-in grid when dir is empty.
func loadBase(dir string) (*baseGrid, error) {
	if dir == "" {
		return &baseGrid{buses: builtinBuses, lines: builtinLines}, nil
	}

	busRecords, err := readCSV(filepath.Join(dir, "buses.csv"), 5)
	if err != nil {
		return nil, err
	}
	lineRecords, err := readCSV(filepath.Join(dir, "lines.csv"), 4)
	if err != nil {
		return nil, err
	}

	grid := &baseGrid{}
	for i, rec := range busRecords {
		x, err1 := strconv.ParseFloat(rec[2], 64)
		y, err2 := strconv.ParseFloat(rec[3], 64)
		peak, err3 := strconv.ParseFloat(rec[4], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("buses.csv row %d: malformed numeric field", i+2)
		}
		grid.buses = append(grid.buses, builtinBus{
			id: rec[0], country: rec[1], x: x, y: y, peakLoad: peak,
		})
	}
	for i, rec := range lineRecords {
		sNom, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("lines.csv row %d: malformed s_nom: %w", i+2, err)
		}
		grid.lines = append(grid.lines, builtinLine{
			id: rec[0], from: rec[1], to: rec[2], sNom: sNom,
		})
	}
	return grid, nil
}

// readCSV reads a headered CSV file and enforces a column count.
func readCSV(path string, wantCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = wantCols
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	return records[1:], nil
}
