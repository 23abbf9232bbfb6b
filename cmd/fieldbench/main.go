// Package main times the field sampler under every scheduler and partition
// and writes the results as CSV.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/vehicles/config"
	"github.com/pthm-cable/vehicles/systems"
)

var (
	schedulers = []string{"serial", "pool", "group"}
	partitions = []systems.Partition{systems.PartitionColumn, systems.PartitionRow, systems.PartitionCell}
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	frames := flag.Int("frames", 200, "Timed frames per case")
	agentList := flag.String("agents", "1,50,200", "Comma-separated vehicle counts")
	seed := flag.Int64("seed", 42, "Scene RNG seed")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *frames < 1 {
		log.Fatal("--frames must be at least 1")
	}
	agentCounts, err := parseCounts(*agentList)
	if err != nil {
		log.Fatalf("bad --agents: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	rng := rand.New(rand.NewSource(*seed))
	startTime := time.Now()

	var results []Result
	for _, n := range agentCounts {
		in := scene(rng, cfg, n)

		var baseline []systems.Tile
		var baseMean float64
		for _, sched := range schedulers {
			for _, part := range partitions {
				res, tiles, err := runCase(cfg, sched, part, in, *frames)
				if err != nil {
					log.Fatalf("case failed: %v", err)
				}
				if baseline == nil {
					baseline = append([]systems.Tile(nil), tiles...)
					baseMean = res.MeanUS
				}
				res.Identical = identical(baseline, tiles)
				if res.MeanUS > 0 {
					res.Speedup = baseMean / res.MeanUS
				}
				results = append(results, res)

				fmt.Printf("agents=%-4d %-6s %-6s mean=%8.1fus p90=%8.1fus speedup=%.2fx identical=%v\n",
					res.Agents, res.Scheduler, res.Partition, res.MeanUS, res.P90US, res.Speedup, res.Identical)
			}
		}
	}

	resultsPath := filepath.Join(*outputDir, "fieldbench.csv")
	f, err := os.Create(resultsPath)
	if err != nil {
		log.Fatalf("failed to create results file: %v", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&results, f); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}

	if err := cfg.WriteYAML(filepath.Join(*outputDir, "config.yaml")); err != nil {
		log.Printf("failed to write config: %v", err)
	}

	fmt.Printf("\n%d cases in %s, results saved to: %s\n", len(results), formatDuration(time.Since(startTime)), resultsPath)
}

// parseCounts parses a comma-separated list of non-negative integers.
func parseCounts(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %d", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no counts in %q", s)
	}
	return out, nil
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
