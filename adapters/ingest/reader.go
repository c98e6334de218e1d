package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"immunotrial/domain/trial"
	"immunotrial/internal"
	apperrors "immunotrial/internal/errors"
)

// DataReader reads the wide cell-count file into staging rows. CSV is the
// primary format; an .xlsx workbook with the same columns on its first sheet
// is accepted through the same reader.
type DataReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
	logger   *internal.Logger
}

// NewDataReader creates a reader for the given path, choosing the format by
// file extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "csv"
	if strings.ToLower(filepath.Ext(filePath)) == ".xlsx" {
		fileType = "xlsx"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.With("reader"),
	}
}

// Read parses the whole file into staging rows. Any structural problem, a
// wrong header, a short row, an unparsable number, fails the read as a load
// error; there are no partial results. A file with a valid header and no data
// rows reads as zero rows.
func (r *DataReader) Read() ([]trial.StagingRow, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.LoadError(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath), err)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readExcel()
	default:
		return nil, apperrors.LoadError(fmt.Sprintf("unsupported file type: %s", r.fileType), nil)
	}
}

func (r *DataReader) readCSV() ([]trial.StagingRow, error) {
	fileBytes, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, apperrors.LoadError("failed to read CSV file", err)
	}

	header, err := csv.NewReader(bytes.NewReader(fileBytes)).Read()
	if err != nil {
		return nil, apperrors.LoadError("failed to read CSV header", err)
	}
	if err := verifyHeader(header); err != nil {
		return nil, err
	}

	readStart := time.Now()
	var records []*trial.StagingRow
	if err := gocsv.UnmarshalBytes(fileBytes, &records); err != nil {
		return nil, apperrors.LoadError("failed to parse CSV file", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(records))

	rows := make([]trial.StagingRow, 0, len(records))
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return nil, apperrors.LoadError(fmt.Sprintf("invalid row at line %d", i+2), err)
		}
		rows = append(rows, *record)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(header), len(rows))
	return rows, nil
}

func (r *DataReader) readExcel() ([]trial.StagingRow, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.LoadError("failed to open Excel file", err)
	}
	defer f.Close()
	r.logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.LoadError("Excel file has no sheets", nil)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.LoadError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(cells) == 0 {
		return nil, apperrors.LoadError("Excel file must have a header row", nil)
	}
	if err := verifyHeader(cells[0]); err != nil {
		return nil, err
	}

	rows := make([]trial.StagingRow, 0, len(cells)-1)
	for i := 1; i < len(cells); i++ {
		row, err := parseCells(cells[i])
		if err != nil {
			return nil, apperrors.LoadError(fmt.Sprintf("invalid row at line %d", i+1), err)
		}
		if err := row.Validate(); err != nil {
			return nil, apperrors.LoadError(fmt.Sprintf("invalid row at line %d", i+1), err)
		}
		rows = append(rows, row)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(cells[0]), len(rows))
	return rows, nil
}

// verifyHeader requires the exact column set in the exact order. Extra,
// missing, or reordered columns all fail the load.
func verifyHeader(header []string) error {
	expected := trial.ExpectedHeaders()
	if len(header) != len(expected) {
		return apperrors.LoadError(fmt.Sprintf("expected %d columns, got %d", len(expected), len(header)), nil)
	}
	for i, want := range expected {
		if strings.TrimSpace(header[i]) != want {
			return apperrors.LoadError(fmt.Sprintf("column %d: expected %q, got %q", i+1, want, strings.TrimSpace(header[i])), nil)
		}
	}
	return nil
}

// parseCells maps one sheet row onto a staging row. Excel trims trailing
// empty cells, so short rows read as empty strings; empty numeric cells then
// fail the integer parse like any other malformed value.
func parseCells(cells []string) (trial.StagingRow, error) {
	expected := trial.ExpectedHeaders()
	if len(cells) > len(expected) {
		return trial.StagingRow{}, fmt.Errorf("expected at most %d columns, got %d", len(expected), len(cells))
	}

	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	var firstErr error
	atoi := func(i int) int {
		v, err := strconv.Atoi(get(i))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %s: %q is not an integer", expected[i], get(i))
		}
		return v
	}

	row := trial.StagingRow{
		Project:           get(0),
		Subject:           get(1),
		Condition:         get(2),
		Age:               atoi(3),
		Sex:               get(4),
		Treatment:         get(5),
		Response:          get(6),
		Sample:            get(7),
		SampleType:        get(8),
		TimeFromTreatment: atoi(9),
		BCell:             atoi(10),
		CD8TCell:          atoi(11),
		CD4TCell:          atoi(12),
		NKCell:            atoi(13),
		Monocyte:          atoi(14),
	}
	if firstErr != nil {
		return trial.StagingRow{}, firstErr
	}
	return row, nil
}
