package speclistparser

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/giygas/speclist/speclistparser/entities"
)

// CSVWriter writes records as CSV rows with a fixed column order
type CSVWriter struct {
	writer  *csv.Writer
	columns []string
	row     []string
	rows    int
}

// NewCSVWriter creates a writer emitting the given columns
func NewCSVWriter(w io.Writer, columns []string) *CSVWriter {
	return &CSVWriter{
		writer:  csv.NewWriter(w),
		columns: columns,
		row:     make([]string, len(columns)),
	}
}

// WriteHeader writes the column names
func (cw *CSVWriter) WriteHeader() error {
	if err := cw.writer.Write(cw.columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	return nil
}

// Write writes one record, missing fields become empty cells
func (cw *CSVWriter) Write(record entities.Record) error {
	for i, column := range cw.columns {
		value, err := record.Get(column)
		if err != nil {
			return err
		}
		cw.row[i] = value
	}

	if err := cw.writer.Write(cw.row); err != nil {
		return fmt.Errorf("failed to write csv row for %s: %w", record.Code, err)
	}
	cw.rows++
	return nil
}

// Rows returns the number of records written
func (cw *CSVWriter) Rows() int {
	return cw.rows
}

// Flush flushes buffered rows and reports any earlier write error
func (cw *CSVWriter) Flush() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the header and every record of seq to path, replacing the file.
// Rows go to <path>.part first; path is only replaced once every row is written,
// so a failed run leaves the previous file untouched.
// onRecord, when set, is called for each record after it has been written.
func WriteCSVFile(path string, columns []string, seq iter.Seq2[entities.Record, error], onRecord func(entities.Record)) (int, error) {
	cleanPath := filepath.Clean(path)

	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmpPath := cleanPath + ".part"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", tmpPath, err)
	}

	rows, err := writeCSV(outFile, columns, seq, onRecord)
	if err != nil {
		_ = outFile.Close()
		_ = os.Remove(tmpPath)
		return rows, err
	}

	if err := outFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return rows, fmt.Errorf("failed to close file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, cleanPath); err != nil {
		_ = os.Remove(tmpPath)
		return rows, fmt.Errorf("failed to replace %s: %w", cleanPath, err)
	}

	return rows, nil
}

func writeCSV(w io.Writer, columns []string, seq iter.Seq2[entities.Record, error], onRecord func(entities.Record)) (int, error) {
	cw := NewCSVWriter(w, columns)
	if err := cw.WriteHeader(); err != nil {
		return 0, err
	}

	for record, err := range seq {
		if err != nil {
			return cw.Rows(), err
		}
		if err := cw.Write(record); err != nil {
			return cw.Rows(), err
		}
		if onRecord != nil {
			onRecord(record)
		}
	}

	if err := cw.Flush(); err != nil {
		return cw.Rows(), err
	}

	return cw.Rows(), nil
}
