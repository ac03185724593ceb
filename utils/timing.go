package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether progress and timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where progress and timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// Logf prints a progress line to Output when Verbose is set.
func Logf(format string, args ...any) {
	if !Verbose {
		return
	}
	fmt.Fprintf(Output, format, args...)
}

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime        time.Duration
	BuildTime        time.Duration
	HEInitTime       time.Duration
	ModelInitTime    time.Duration
	ForwardPassTime  time.Duration
	EncryptionTime   time.Duration
	DecryptionTime   time.Duration
	ServerLinearTime time.Duration
}

func percent(part, whole time.Duration) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// PrintTimingStats prints detailed timing statistics for a run of the given
// number of samples.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, samples int) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Samples: %d\n", samples)
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Graph build: %v (%.1f%%)\n", stats.BuildTime, percent(stats.BuildTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, percent(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  HE initialization: %v (%.1f%%)\n", stats.HEInitTime, percent(stats.HEInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Forward pass: %v (%.1f%%)\n", stats.ForwardPassTime, percent(stats.ForwardPassTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Encryption: %v (%.1f%%)\n", stats.EncryptionTime, percent(stats.EncryptionTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Server head: %v (%.1f%%)\n", stats.ServerLinearTime, percent(stats.ServerLinearTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Decryption: %v (%.1f%%)\n", stats.DecryptionTime, percent(stats.DecryptionTime, stats.TotalTime))
	if samples > 0 {
		fmt.Fprintln(Output, "\nPerformance metrics:")
		fmt.Fprintf(Output, "  Average forward pass time: %v\n", stats.ForwardPassTime/time.Duration(samples))
		fmt.Fprintf(Output, "  Average encryption time: %v\n", stats.EncryptionTime/time.Duration(samples))
		fmt.Fprintf(Output, "  Average decryption time: %v\n", stats.DecryptionTime/time.Duration(samples))
	}
}

// Add accumulates other into s.
func (s *TimingStats) Add(other TimingStats) {
	s.TotalTime += other.TotalTime
	s.BuildTime += other.BuildTime
	s.HEInitTime += other.HEInitTime
	s.ModelInitTime += other.ModelInitTime
	s.ForwardPassTime += other.ForwardPassTime
	s.EncryptionTime += other.EncryptionTime
	s.DecryptionTime += other.DecryptionTime
	s.ServerLinearTime += other.ServerLinearTime
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
