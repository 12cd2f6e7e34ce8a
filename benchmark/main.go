// Package main provides a performance benchmarking tool for the SafePath CLI.
// It generates synthetic segment datasets of increasing size, times the scores
// and route commands on each one, treating the first successful run as cold and
// averaging the rest as warm, and writes the results as CSV.
//
// Prerequisites:
// - safepath binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where the synthetic datasets are written
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir string
	Timeout time.Duration
	Runs    int
	Sizes   []int
	Seed    uint64
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    4,
		Sizes:   []int{100, 1_000, 10_000, 100_000},
		Seed:    42,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the safepath binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("safepath"); err != nil {
		return fmt.Errorf("safepath binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// generateDataset writes a CSV of n segments along a random walk and returns its path.
func generateDataset(config BenchmarkConfig, n int) (string, error) {
	path := filepath.Join(config.WorkDir, fmt.Sprintf("segments_%d.csv", n))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(config.Seed, uint64(n)))
	writer := csv.NewWriter(file)
	header := []string{
		"route_id", "latitude", "longitude", "crime_density", "lighting_density", "surveillance_score",
		"police_proximity", "emergency_services", "population_density", "user_feedback",
		"public_transport_nearby", "weather_conditions",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	lat, lon := 28.6139, 77.2090
	for id := 1; id <= n; id++ {
		lat += (rng.Float64() - 0.5) * 0.002
		lon += (rng.Float64() - 0.5) * 0.002
		row := []string{
			strconv.Itoa(id),
			strconv.FormatFloat(lat, 'f', 6, 64),
			strconv.FormatFloat(lon, 'f', 6, 64),
		}
		for range len(header) - 3 {
			// Keep every score above zero so no edge is rejected
			row = append(row, strconv.FormatFloat(1+rng.Float64()*9, 'f', 2, 64))
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// runBenchmarks executes all benchmark tests across the generated datasets
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs\n", len(config.Sizes), config.Timeout, config.Runs)

	for _, n := range config.Sizes {
		dataset, err := generateDataset(config, n)
		if err != nil {
			return nil, fmt.Errorf("failed to generate dataset of %d segments: %w", n, err)
		}
		name := fmt.Sprintf("%d segments", n)
		fmt.Printf("Benchmarking %s\n", name)

		results = append(results, runBenchmarkSuite(config, name, "scores", dataset))
		results = append(results, runBenchmarkSuite(config, name, "route", dataset, "1", strconv.Itoa(n)))
	}
	return results, nil
}

// runBenchmarkSuite times one command on one dataset
func runBenchmarkSuite(config BenchmarkConfig, name, command, dataset string, extraArgs ...string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, name)

	args := append([]string{command}, extraArgs...)
	args = append(args, "--input", dataset, "--max-id", "0", "--cache-backend", "none", "--output", "json")

	coldTime, warmTimes := runBenchmark(config, args)

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmAvg := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)
	return BenchmarkResult{Dataset: name, Command: command, ColdTime: coldTimeStr, WarmTime: warmAvg}
}

// runBenchmark executes a safepath command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("safepath", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.Output()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output holds scored segments
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), `"safety_score"`)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/safepath_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	printCommandSummary(results, "scores", "Scores:")
	printCommandSummary(results, "route", "Route:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-16s: Cold: %s, Warm: %s\n", result.Dataset, result.ColdTime, result.WarmTime)
		}
	}
}
