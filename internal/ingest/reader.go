// Package ingest turns exported herd-test and herd-master CSV files into the
// normalized row types the indicator engine consumes. It is the upstream
// file-to-table adapter; the engine itself never reads files.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/herdwatch/herdwatch-go/internal/errors"
	"github.com/herdwatch/herdwatch-go/internal/herd"
)

// Column name candidates per test-row field, case-insensitive. Chinese names
// first, they are what the supported source systems export.
var (
	idColumns        = []string{"牛号", "管理号", "id", "animal_id", "cow_id"}
	dateColumns      = []string{"采样日期", "测定日期", "sample_date", "test_date", "date"}
	lactationColumns = []string{"泌乳天数", "产奶天数", "dim", "lactation_days", "days_in_milk"}
	parityColumns    = []string{"胎次", "parity"}
	sccColumns       = []string{"体细胞数", "体细胞", "scc", "somatic_cell_count"}

	earTagColumns = []string{"耳号", "牛号", "ear_tag", "tag"}
)

// findColumn returns the index of the first header matching one of the
// candidates, -1 when none does.
func findColumn(header, candidates []string) int {
	for _, candidate := range candidates {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), candidate) {
				return i
			}
		}
	}
	return -1
}

// ReadTestRows parses a herd-test CSV export into normalized test rows.
// The first record must be a header naming at least the id, sample date,
// lactation days and parity columns.
func ReadTestRows(r io.Reader) ([]herd.TestRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read header: %w", err)).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			Build()
	}

	idIdx := findColumn(header, idColumns)
	dateIdx := findColumn(header, dateColumns)
	dimIdx := findColumn(header, lactationColumns)
	parityIdx := findColumn(header, parityColumns)
	sccIdx := findColumn(header, sccColumns)

	if idIdx < 0 || dateIdx < 0 || dimIdx < 0 || parityIdx < 0 {
		return nil, errors.Newf("missing required columns in header %v", header).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			Build()
	}

	var rows []herd.TestRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.New(fmt.Errorf("line %d: %w", line, err)).
				Component("ingest").
				Category(errors.CategoryFileParsing).
				Build()
		}

		dim, err := parseInt(record[dimIdx])
		if err != nil {
			return nil, errors.Newf("line %d: bad lactation days %q", line, record[dimIdx]).
				Component("ingest").
				Category(errors.CategoryFileParsing).
				Build()
		}
		parity, err := parseInt(record[parityIdx])
		if err != nil {
			return nil, errors.Newf("line %d: bad parity %q", line, record[parityIdx]).
				Component("ingest").
				Category(errors.CategoryFileParsing).
				Build()
		}

		row := herd.TestRow{
			ID:            strings.TrimSpace(record[idIdx]),
			SampleDate:    strings.TrimSpace(record[dateIdx]),
			LactationDays: dim,
			Parity:        parity,
		}
		if sccIdx >= 0 {
			row.SCC = parseOptionalFloat(record[sccIdx])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadMasterRows parses a herd-master CSV export. Only the ear tag column is
// interpreted here; all other columns are carried raw for the field resolver.
func ReadMasterRows(r io.Reader) ([]herd.MasterRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read header: %w", err)).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			Build()
	}

	tagIdx := findColumn(header, earTagColumns)
	if tagIdx < 0 {
		return nil, errors.Newf("no ear tag column in header %v", header).
			Component("ingest").
			Category(errors.CategoryFileParsing).
			Build()
	}

	var rows []herd.MasterRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.New(fmt.Errorf("line %d: %w", line, err)).
				Component("ingest").
				Category(errors.CategoryFileParsing).
				Build()
		}

		row := herd.MasterRow{
			EarTag: strings.TrimSpace(record[tagIdx]),
			Fields: make(map[string]string, len(header)-1),
		}
		for i, name := range header {
			if i == tagIdx || i >= len(record) {
				continue
			}
			row.Fields[strings.TrimSpace(name)] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	// Some exports format integer columns as decimals.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// parseOptionalFloat returns nil for blank or non-numeric cells; a missing
// somatic cell count is expected data, not an error.
func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
