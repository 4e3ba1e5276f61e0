package student

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/ValentinKolb/roster/lib/common"
	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the roster store",
		Long:    "Runs micro benchmarks against a scratch store of the configured backend. The roster itself is never modified.",
		Args:    cobra.NoArgs,
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfRecords = 1000
	perfSkip    = make([]string, 0)
)

// perfTests lists the benchmarks in the order they are run
var perfTests = []string{"add", "find", "find-miss", "list", "remove", "save", "load"}

func init() {
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString(fmt.Sprintf("Benchmarks to skip (comma separated - any of %s)", strings.Join(perfTests, ","))))
	key = "records"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How many students the roster holds during the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfRecords = viper.GetInt("records")
	if perfRecords < 1 {
		return fmt.Errorf("records must be at least 1, got %d", perfRecords)
	}
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	perfConfig, cleanup, err := scratchConfig(config)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintln(out, "Performance testing tool for the roster store")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, perfConfig.String())
	fmt.Fprintf(out, "Records: %d\n", perfRecords)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "starting tests...")

	results := make(map[string]testing.BenchmarkResult)

	for _, test := range perfTests {
		if shouldSkip(test) {
			results[test] = testing.BenchmarkResult{}
			printResult(cmd, test, results[test])
			continue
		}

		s, err := util.OpenStore(perfConfig)
		if err != nil {
			return err
		}
		if err := fill(s, perfRecords); err != nil {
			_ = s.Close()
			return err
		}

		var benchErr error
		results[test] = testing.Benchmark(func(b *testing.B) {
			benchErr = perfBenchmarks[test](b, s)
		})
		_ = s.Close()

		if benchErr != nil {
			return fmt.Errorf("(%s) - %w", test, benchErr)
		}
		printResult(cmd, test, results[test])
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Fprintf(out, "\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, perfConfig); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Fprintln(out, "Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// perfBenchmarks run against a store holding perfRecords students.
// The first error aborts the benchmark and is returned.
var perfBenchmarks = map[string]func(b *testing.B, s store.IStore) error{
	"add": func(b *testing.B, s store.IStore) error {
		for i := 0; i < b.N; i++ {
			if err := s.Add(perfStudent(perfRecords + i)); err != nil {
				return err
			}
		}
		return nil
	},
	"find": func(b *testing.B, s store.IStore) error {
		for i := 0; i < b.N; i++ {
			if _, _, err := s.FindByRollNumber(perfRollNumber(i % perfRecords)); err != nil {
				return err
			}
		}
		return nil
	},
	"find-miss": func(b *testing.B, s store.IStore) error {
		for i := 0; i < b.N; i++ {
			if _, _, err := s.FindByRollNumber("__missing"); err != nil {
				return err
			}
		}
		return nil
	},
	"list": func(b *testing.B, s store.IStore) error {
		for i := 0; i < b.N; i++ {
			if _, err := s.ListAll(); err != nil {
				return err
			}
		}
		return nil
	},
	"remove": func(b *testing.B, s store.IStore) error {
		// removing an unknown roll number scans the whole roster without shrinking it
		for i := 0; i < b.N; i++ {
			if err := s.Remove("__missing"); err != nil {
				return err
			}
		}
		return nil
	},
	"save": func(b *testing.B, s store.IStore) error {
		var buf bytes.Buffer
		for i := 0; i < b.N; i++ {
			buf.Reset()
			if err := s.Save(&buf); err != nil {
				return err
			}
		}
		return nil
	},
	"load": func(b *testing.B, s store.IStore) error {
		var buf bytes.Buffer
		if err := s.Save(&buf); err != nil {
			return err
		}
		data := buf.Bytes()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := s.Load(bytes.NewReader(data)); err != nil {
				return err
			}
		}
		return nil
	},
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// scratchConfig returns a configuration that never touches the users data.
// The returned function removes all temporary files.
func scratchConfig(c *common.Config) (*common.Config, func(), error) {
	scratch := *c
	switch c.Backend {
	case common.BackendMemory:
		return &scratch, func() {}, nil
	case common.BackendSQLite:
		dir, err := os.MkdirTemp("", "roster-perf-*")
		if err != nil {
			return nil, nil, err
		}
		scratch.DSN = filepath.Join(dir, "perf.db")
		return &scratch, func() { _ = os.RemoveAll(dir) }, nil
	default:
		return nil, nil, store.NewError(store.RetCUnsupportedOperation, "perf is not supported for backend "+c.Backend)
	}
}

func perfRollNumber(i int) string {
	return fmt.Sprintf("P%06d", i)
}

func perfStudent(i int) roster.Student {
	return roster.New(fmt.Sprintf("Student %d", i), perfRollNumber(i), string(rune('A'+i%5)))
}

func fill(s store.IStore, n int) error {
	for i := 0; i < n; i++ {
		if err := s.Add(perfStudent(i)); err != nil {
			return err
		}
	}
	return nil
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(cmd *cobra.Command, test string, result testing.BenchmarkResult) {
	if result.N == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Fprintf(cmd.OutOrStdout(), "%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Backend", "Serializer", "Records",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range perfTests {
		result := results[test]

		var nsPerOp float64
		var opsPerSec float64
		skipped := "true"

		if result.N > 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Backend,
			config.Serializer,
			strconv.Itoa(perfRecords),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
