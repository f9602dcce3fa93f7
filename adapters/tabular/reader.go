// Package tabular reads uploaded CSV and Excel files into datasets.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"olstudio/domain/dataset"
	"olstudio/internal/errors"
)

// Read dispatches on the uploaded filename's extension
func Read(filename string, r io.Reader) (dataset.Dataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx", ".xls":
		return ReadExcel(r)
	default:
		return dataset.Dataset{}, errors.New(errors.CodeInvalidUpload,
			fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)))
	}
}

// ReadCSV parses CSV content into a dataset. The first record is the header;
// short rows are padded with missing cells and empty fields become missing.
func ReadCSV(r io.Reader) (dataset.Dataset, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return dataset.Dataset{}, errors.Wrap(err, "failed to parse CSV content")
	}
	if len(records) == 0 {
		return dataset.Dataset{}, errors.New(errors.CodeInvalidUpload, "file has no header row")
	}

	header := records[0]
	ds, err := fromRows(header, records[1:])
	if err != nil {
		return dataset.Dataset{}, err
	}

	log.Printf("[TabularReader] Parsed CSV: %d columns, %d rows in %.2fms",
		len(ds.Columns), ds.RowCount(), float64(time.Since(start).Nanoseconds())/1e6)
	return ds, nil
}

// ReadExcel parses the first sheet of an Excel workbook into a dataset
func ReadExcel(r io.Reader) (dataset.Dataset, error) {
	start := time.Now()

	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataset.Dataset{}, errors.Wrap(err, "failed to open Excel content")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.Dataset{}, errors.New(errors.CodeInvalidUpload, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataset.Dataset{}, errors.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	if len(rows) == 0 {
		return dataset.Dataset{}, errors.New(errors.CodeInvalidUpload, "file has no header row")
	}

	ds, err := fromRows(rows[0], rows[1:])
	if err != nil {
		return dataset.Dataset{}, err
	}

	log.Printf("[TabularReader] Parsed Excel sheet %s: %d columns, %d rows in %.2fms",
		sheets[0], len(ds.Columns), ds.RowCount(), float64(time.Since(start).Nanoseconds())/1e6)
	return ds, nil
}

func fromRows(header []string, rows [][]string) (dataset.Dataset, error) {
	names := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = name
	}

	columns := make([]dataset.Column, len(names))
	for i, name := range names {
		cells := make([]dataset.Value, len(rows))
		for rowIdx, row := range rows {
			if i < len(row) {
				cells[rowIdx] = dataset.NewStringValue(strings.TrimSpace(row[i]))
			} else {
				cells[rowIdx] = dataset.NewMissingValue()
			}
		}
		columns[i] = dataset.Column{Name: name, Cells: cells}
	}

	ds, err := dataset.FromColumns(columns)
	if err != nil {
		return dataset.Dataset{}, errors.Wrap(err, "failed to assemble dataset")
	}
	return ds, nil
}
