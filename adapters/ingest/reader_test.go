package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"immunotrial/domain/trial"
)

const validCSV = `project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte
prj1,sbj1,melanoma,62,F,miraclib,yes,s1,PBMC,0,36000,19000,35000,6000,9000
prj1,sbj2,melanoma,71,M,miraclib,no,s2,PBMC,0,12000,31000,28000,5000,24000
prj2,sbj3,healthy,40,F,none,,s3,WB,0,10000,20000,30000,10000,30000
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestDataReader_ReadCSV(t *testing.T) {
	path := writeTemp(t, "counts.csv", validCSV)

	rows, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Subject != "sbj1" || first.Sample != "s1" || first.Age != 62 {
		t.Errorf("First row parsed wrong: %+v", first)
	}
	if first.BCell != 36000 || first.Monocyte != 9000 {
		t.Errorf("Counts parsed wrong: %+v", first)
	}
	if rows[2].Response != "" {
		t.Errorf("Expected empty response on third row, got %q", rows[2].Response)
	}
}

func TestDataReader_HeaderOnly(t *testing.T) {
	path := writeTemp(t, "counts.csv", "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n")

	rows, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("Header-only file should read as empty, got error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Expected 0 rows, got %d", len(rows))
	}
}

func TestDataReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Reordered header",
			content: "subject,project,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n",
		},
		{
			name:    "Missing column",
			content: "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell\n",
		},
		{
			name: "Non-integer count",
			content: "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n" +
				"prj1,sbj1,melanoma,62,F,miraclib,yes,s1,PBMC,0,many,19000,35000,6000,9000\n",
		},
		{
			name: "Short row",
			content: "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n" +
				"prj1,sbj1,melanoma,62,F,miraclib,yes,s1,PBMC,0,36000\n",
		},
		{
			name: "Negative count",
			content: "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n" +
				"prj1,sbj1,melanoma,62,F,miraclib,yes,s1,PBMC,0,-5,19000,35000,6000,9000\n",
		},
		{
			name: "Unknown response value",
			content: "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n" +
				"prj1,sbj1,melanoma,62,F,miraclib,maybe,s1,PBMC,0,1,2,3,4,5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "counts.csv", tt.content)

			if _, err := NewDataReader(path).Read(); err == nil {
				t.Errorf("Expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestDataReader_FileNotFound(t *testing.T) {
	if _, err := NewDataReader(filepath.Join(t.TempDir(), "missing.csv")).Read(); err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}

func TestDataReader_ReadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := trial.ExpectedHeaders()
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		t.Fatalf("Failed to write header row: %v", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{
		"prj1", "sbj1", "melanoma", 62, "F", "miraclib", "yes", "s1", "PBMC", 0,
		36000, 19000, 35000, 6000, 9000,
	}); err != nil {
		t.Fatalf("Failed to write data row: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save workbook: %v", err)
	}

	rows, err := NewDataReader(path).Read()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Subject != "sbj1" || rows[0].BCell != 36000 || rows[0].TimeFromTreatment != 0 {
		t.Errorf("Excel row parsed wrong: %+v", rows[0])
	}
}

func TestParseCells_ColumnErrors(t *testing.T) {
	base := []string{"prj1", "sbj1", "melanoma", "62", "F", "miraclib", "yes", "s1", "PBMC", "0", "1", "2", "3", "4", "5"}

	if _, err := parseCells(base); err != nil {
		t.Fatalf("Unexpected error for valid cells: %v", err)
	}

	tooMany := append(append([]string{}, base...), "extra")
	if _, err := parseCells(tooMany); err == nil {
		t.Error("Expected error for too many columns")
	}

	badAge := append([]string{}, base...)
	badAge[3] = "old"
	if _, err := parseCells(badAge); err == nil {
		t.Error("Expected error for non-integer age")
	}

	// Trailing cells trimmed by excelize read back as empty strings.
	short := base[:11]
	if _, err := parseCells(short); err == nil {
		t.Error("Expected error for short row with missing counts")
	}
}
