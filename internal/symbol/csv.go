// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package symbol

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/gocarina/gocsv"
)

// ReadCSV decodes a delimited table with a header row. Lines may carry extra
// or missing trailing fields; the published text ends each line with a
// dangling delimiter. Unknown columns are ignored.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var rows []SymbolRow
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return Table{}, nil
		}
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}
	return Table(rows), nil
}

// WriteCSV encodes t with a header row in Columns order.
func WriteCSV(w io.Writer, t Table) error {
	rows := []SymbolRow(t)
	if rows == nil {
		rows = []SymbolRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}
	return nil
}

// LoadFile reads a cached table from disk as-is.
func LoadFile(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read master file: %w", err)
	}
	return ReadCSV(bytes.NewReader(b))
}

// SaveFile writes t to path. The table is written to a sibling temp file which
// is then renamed over path.
func SaveFile(path string, t Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create master directory: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()

	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace master file: %w", err)
	}

	log.Debugf("wrote %d rows to %s", len(t), path)
	return nil
}
