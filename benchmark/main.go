// Package main provides a performance benchmarking tool for the prodscore CLI.
// It generates synthetic product tables of several sizes, scores each one
// repeatedly without and with the score cache, treating the first cached run
// as cold and averaging the rest as warm, and writes the timings to CSV.
//
// Prerequisites:
// - prodscore binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated tables, config and cache files
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Table       string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	TableSizes  []int
	MinScore    string
}

// benchmarkConfigYAML scores every factor with two bands.
const benchmarkConfigYAML = `weights:
  cost: 0.3
  margin: 0.25
  cac: 0.2
  return_rate: 0.15
  stock_status: 0.1
bands:
  cost:
    - {min: 0, max: 50, score: 90}
    - {min: 50, max: 500, score: 40}
  margin:
    - {min: 0, max: 30, score: 30}
    - {min: 30, max: 100, score: 85}
  cac:
    - {min: 0, max: 10, score: 80}
    - {min: 10, max: 100, score: 20}
  return_rate:
    - {min: 0, max: 0.1, score: 90}
    - {min: 0.1, max: 1, score: 10}
  stock_status:
    - {min: 1, max: 1, score: 100}
    - {min: 0, max: 0, score: 0}
`

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TableSizes:  []int{1_000, 10_000, 100_000},
		MinScore:    "20",
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

// checkPrerequisites verifies that the prodscore binary exists and prepares the work directory.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("prodscore"); err != nil {
		return fmt.Errorf("prodscore binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return os.WriteFile(configPath(config), []byte(benchmarkConfigYAML), 0o644)
}

func configPath(config BenchmarkConfig) string {
	return filepath.Join(config.WorkDir, "benchmark.yaml")
}

func cachePath(config BenchmarkConfig) string {
	return filepath.Join(config.WorkDir, "benchmark_cache.db")
}

// generateTable writes a product table with random factor values.
func generateTable(path string, rows int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"Name", "Cost", "Margin", "CAC", "Return Rate", "Stock Status"}); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(uint64(rows), 42))
	for i := range rows {
		record := []string{
			"Product " + strconv.Itoa(i+1),
			strconv.FormatFloat(rng.Float64()*400, 'f', 2, 64),
			strconv.FormatFloat(rng.Float64()*100, 'f', 1, 64),
			strconv.FormatFloat(rng.Float64()*60, 'f', 2, 64),
			strconv.FormatFloat(rng.Float64()*0.5, 'f', 3, 64),
			strconv.Itoa(rng.IntN(2)),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// runBenchmarks executes the score and check commands for every table size.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d tables, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.TableSizes), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, size := range config.TableSizes {
		name := fmt.Sprintf("rows_%d", size)
		tablePath := filepath.Join(config.WorkDir, name+".csv")
		fmt.Printf("Generating %s\n", tablePath)
		if err := generateTable(tablePath, size); err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", tablePath, err)
		}

		results = append(results,
			runBenchmarkSuite(config, name, []string{"score", tablePath, "--output", "csv", "--output-file", os.DevNull}),
			runBenchmarkSuite(config, name, []string{"check", tablePath, "--min-score", config.MinScore, "--output", "json"}),
		)
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, table string, args []string) BenchmarkResult {
	command := args[0]
	fmt.Printf("Running %s on %s\n", command, table)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, args, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs, starting from an empty cache
	_ = os.Remove(cachePath(config))
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Table:       table,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a prodscore command multiple times with the given cache backend
// and returns the cold time and warm times. The check command counts as successful
// even when rows fall below the minimum, since it still scored the whole table.
func runBenchmark(config BenchmarkConfig, args []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	fullArgs := append([]string{}, args...)
	fullArgs = append(fullArgs,
		"--config", configPath(config),
		"--cache-backend", cacheBackend,
		"--cache-db-connect", cachePath(config),
	)

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("prodscore", fullArgs...)
		cmd.Dir = config.WorkDir

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if isSuccess(err, args[0]) {
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
	return coldTime, warmTimes
}

// isSuccess checks whether a run completed. A check run exiting with code 1 scored every row.
func isSuccess(err error, command string) bool {
	if err == nil {
		return true
	}
	exitErr, ok := err.(*exec.ExitError)
	return ok && command == "check" && exitErr.ExitCode() == 1
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("prodscore_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"table", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Table, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	printCommandSummary(results, "score", "Score:")
	printCommandSummary(results, "check", "Check:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Table, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
