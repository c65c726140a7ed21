package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	quizSheet = "Quiz"
	keySheet  = "Answer Key"
)

// XLSX writes a workbook with one row per question on the "Quiz" sheet and
// the canonical answers on the "Answer Key" sheet.
func XLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quizSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(keySheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	_ = f.SetDocProps(&excelize.DocProperties{
		Title:   doc.title(),
		Creator: Brand,
		Created: doc.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E7FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	rows := [][]interface{}{{"#", "Type", "Question", "Choices / Items"}}
	keys := [][]interface{}{{"#", "Type", "Answer"}}
	for i, q := range doc.Questions {
		rows = append(rows, []interface{}{i + 1, kindLabel(q.Kind()), q.Prompt, strings.Join(bodyLines(q), "\n")})
		keys = append(keys, []interface{}{i + 1, kindLabel(q.Kind()), answerText(q)})
	}

	if err := writeSheet(f, quizSheet, rows, header, wrap, []float64{6, 18, 60, 60}); err != nil {
		return nil, err
	}
	if err := writeSheet(f, keySheet, keys, header, wrap, []float64{6, 18, 80}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, header, wrap int, widths []float64) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(widths))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", header); err != nil {
		return err
	}
	if len(rows) > 1 {
		if err := f.SetCellStyle(sheet, "A2", fmt.Sprintf("%s%d", lastCol, len(rows)), wrap); err != nil {
			return err
		}
	}
	return nil
}
