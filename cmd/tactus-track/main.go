// Command tactus-track runs the tracker over a recorded onset
// sequence and writes a textual dump and/or CSV report.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/m2march/tactus/tactus"
)

func main() {
	onsetsPath := flag.String("onsets", "", "Path to an onset file (.json array of ms, or .csv with one onset per line)")
	configPath := flag.String("config", "", "Optional JSON or TOML config overlay")
	dumpPath := flag.String("dump", "", "Path to write the textual tracker dump (default: stdout)")
	csvPath := flag.String("csv", "", "Optional path to write a CSV report")
	flag.Parse()

	if *onsetsPath == "" {
		die("--onsets is required")
	}

	onsets, err := loadOnsets(*onsetsPath)
	if err != nil {
		die("failed to read onsets: %v", err)
	}
	if len(onsets) < 2 {
		die("need at least two onsets, got %d", len(onsets))
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		die("failed to load config: %v", err)
	}

	engine, err := tactus.NewEngine(cfg)
	if err != nil {
		die("invalid configuration: %v", err)
	}
	pool := engine.Run(onsets)

	out := os.Stdout
	if *dumpPath != "" {
		f, err := os.Create(*dumpPath)
		if err != nil {
			die("failed to create dump file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := tactus.Dump(out, pool); err != nil {
		die("failed to write dump: %v", err)
	}

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			die("failed to create csv file: %v", err)
		}
		defer f.Close()
		if err := tactus.WriteCSV(f, pool, onsets); err != nil {
			die("failed to write csv: %v", err)
		}
	}

	fmt.Fprintf(os.Stderr, "tracked %d onsets, %d surviving hypotheses\n", len(onsets), len(pool))
}

func loadConfig(path string) (tactus.Config, error) {
	if path == "" {
		return tactus.DefaultConfig(), nil
	}
	if strings.HasSuffix(path, ".toml") {
		return tactus.LoadConfigTOML(path)
	}
	return tactus.LoadConfigJSON(path)
}

func loadOnsets(path string) ([]float64, error) {
	if strings.HasSuffix(path, ".csv") {
		return loadOnsetsCSV(path)
	}
	return loadOnsetsJSON(path)
}

func loadOnsetsJSON(path string) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var onsets []float64
	if err := json.Unmarshal(b, &onsets); err != nil {
		return nil, err
	}
	return onsets, nil
}

func loadOnsetsCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	onsets := make([]float64, 0, len(records))
	for _, rec := range records {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad onset value %q: %w", rec[0], err)
		}
		onsets = append(onsets, v)
	}
	return onsets, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
