// Package export writes extraction snapshots to an XLSX workbook.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/free-ocr/constants"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
)

const sheet = "Extractions"

// maxCellChars is the XLSX cell limit.
const maxCellChars = 32767

// Row is one exported extraction.
type Row struct {
	Source   string // file name or request id
	Snapshot extraction.Snapshot
}

// Service produces XLSX bytes for exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WorkbookXLSX returns a workbook with one row per extraction and one column per mode.
// Failed or missing modes leave their cell empty; the failure set is listed separately.
func (s *Service) WorkbookXLSX(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_error", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	modes := constants.AllModes()
	headers := []string{"Source", "Batch", "Status", "Error"}
	for _, m := range modes {
		headers = append(headers, m.Label())
	}
	headers = append(headers, "Failed Modes")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for r, row := range rows {
		rowNum := r + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
		snap := row.Snapshot
		write(1, row.Source)
		write(2, snap.Batch)
		write(3, string(snap.Phase))
		write(4, snap.Err)
		for i, m := range modes {
			if text, ok := snap.Result(m); ok {
				write(5+i, truncate(text, maxCellChars))
			}
		}
		failed := make([]string, 0, len(snap.Failed))
		for _, m := range snap.FailedModes() {
			failed = append(failed, string(m))
		}
		write(5+len(modes), strings.Join(failed, ", "))
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 40)
	last, _ := excelize.ColumnNumberToName(4 + len(modes))
	_ = f.SetColWidth(sheet, "E", last, 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
