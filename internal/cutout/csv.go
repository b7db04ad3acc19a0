package cutout

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vk/gridcap/internal/scenario"
)

// CSVProvider builds cutouts from pre-retrieved gridded data on disk. The
// layout is one directory per cutout holding one file per variable
// (wnd100m.csv, influx.csv, temperature.csv) with rows of
// x,y,depth,v(t0),v(t1),... — the retrieval interface's site×time schema.
type CSVProvider struct {
	// DataDir is the root directory holding one subdirectory per cutout.
	DataDir string
}

// Available reports whether gridded files exist for the named cutout.
func (p CSVProvider) Available(name string) bool {
	info, err := os.Stat(filepath.Join(p.DataDir, name))
	return err == nil && info.IsDir()
}

// Build reads all variable files for one cutout.
func (p CSVProvider) Build(name string, spec scenario.CutoutSpec) (*Cutout, error) {
	times := hourlyTimes(spec.Time)
	cut := &Cutout{
		Name:   name,
		Spec:   spec,
		Times:  times,
		values: map[string][][]float64{},
	}

	for _, variable := range []string{VarWind, VarInflux, VarTemperature} {
		path := filepath.Join(p.DataDir, name, variable+".csv")
		sites, data, err := readVariableFile(path, len(times))
		if err != nil {
			return nil, fmt.Errorf("cutout %q: %w", name, err)
		}
		if cut.Sites == nil {
			cut.Sites = sites
		} else if len(sites) != len(cut.Sites) {
			return nil, fmt.Errorf("cutout %q: variable %q has %d sites, expected %d",
				name, variable, len(sites), len(cut.Sites))
		}
		cut.values[variable] = data
	}
	return cut, nil
}

// readVariableFile parses one site×time variable file.
func readVariableFile(path string, wantSteps int) ([]Site, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("%s: no data rows", path)
	}

	var sites []Site
	var data [][]float64
	for i, record := range records[1:] { // skip header
		if len(record) != 3+wantSteps {
			return nil, nil, fmt.Errorf("%s row %d: got %d columns, want %d",
				path, i+2, len(record), 3+wantSteps)
		}
		fields := make([]float64, len(record))
		for j, raw := range record {
			if fields[j], err = strconv.ParseFloat(raw, 64); err != nil {
				return nil, nil, fmt.Errorf("%s row %d col %d: %w", path, i+2, j+1, err)
			}
		}
		sites = append(sites, Site{X: fields[0], Y: fields[1], Depth: fields[2]})
		data = append(data, fields[3:])
	}
	return sites, data, nil
}
