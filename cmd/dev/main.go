package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"olstudio/adapters/stats/descriptive"
	"olstudio/adapters/stats/regression"
	"olstudio/domain/core"
	"olstudio/domain/dataset"
	"olstudio/internal/cleaning"
	"olstudio/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "olstudio-dev",
		Short: "OLS Studio development tools",
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var dir string
	var rows int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate sample CSV datasets for manual testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSeedData(dir, rows, seed)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "testdata", "output directory")
	cmd.Flags().IntVar(&rows, "rows", 200, "rows per dataset")
	cmd.Flags().Int64Var(&seed, "seed", 1, "generator seed")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Run the analysis pipeline end to end in-process",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTest()
		},
	}
}

// generateSeedData writes one CSV per generator scenario, including a copy
// with missing cells for exercising the cleaning endpoint by hand.
func generateSeedData(dir string, rows int, seed int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	gen := testkit.NewGenerator(seed)

	datasets := map[string]dataset.Dataset{
		"linear.csv":          gen.LinearDataset(rows, 1.0),
		"heteroscedastic.csv": gen.HeteroscedasticDataset(rows),
		"collinear.csv":       gen.CollinearDataset(rows),
		"linear_holes.csv":    gen.WithMissing(gen.LinearDataset(rows, 1.0), "x1", 0.1),
	}

	for name, ds := range datasets {
		path := filepath.Join(dir, name)
		if err := writeCSV(path, ds); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Printf("wrote %s (%d rows)\n", path, ds.RowCount())
	}
	return nil
}

func writeCSV(path string, ds dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.ColumnNames()); err != nil {
		return err
	}
	for i := 0; i < ds.RowCount(); i++ {
		record := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			cell := col.Cells[i]
			if cell.IsMissing() {
				continue
			}
			if cell.IsNumeric() {
				record[j] = strconv.FormatFloat(cell.AsFloat64(), 'g', -1, 64)
			} else {
				record[j] = cell.AsString()
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// runSmokeTest drives clean → describe → fit against generated data and
// checks the degenerate cases surface the right errors.
func runSmokeTest() error {
	gen := testkit.NewGenerator(1)

	ds := cleaning.Apply(gen.WithMissing(gen.LinearDataset(200, 1.0), "x1", 0.1),
		[]cleaning.Step{{Column: "x1", Policy: cleaning.PolicyDeleteRows}})

	records, err := descriptive.Compute(ds, []string{"y", "x1", "x2"})
	if err != nil {
		return fmt.Errorf("descriptive stats: %w", err)
	}
	for _, name := range []string{"y", "x1", "x2"} {
		rec, ok := records[name]
		if !ok {
			return fmt.Errorf("descriptive stats missing %s", name)
		}
		fmt.Printf("%-3s mean=%8.3f std=%7.3f outliers=%d\n", name, rec.Mean, rec.StdDev, rec.OutliersCount)
	}

	model, err := regression.Fit(ds, "y", []string{"x1", "x2"}, "smoke")
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	fmt.Printf("fit  R²=%.4f adjR²=%.4f F=%.2f warnings=%d\n",
		model.RSquared, model.AdjRSquared, model.FStatistic, len(model.Warnings))
	for term, c := range model.Coefficients {
		fmt.Printf("  %-5s b=%8.4f se=%.4f p=%.4g\n", term, c.Coefficient, c.StdError, c.PValue)
	}

	if _, err := regression.Fit(gen.CollinearDataset(50), "y", []string{"x1", "x2"}, "bad"); !errors.Is(err, core.ErrSingularMatrix) {
		return fmt.Errorf("collinear design: expected singular-matrix error, got %v", err)
	}
	fmt.Println("collinear design rejected as expected")
	return nil
}
