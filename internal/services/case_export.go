package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// exportHeader is the column order of the case-list export.
var exportHeader = []string{
	"案件编号", "当前状态", "当事人/单位", "违建类型",
	"占地面积", "建筑面积", "违建面积", "创建时间",
}

const exportSheet = "案件列表"

// ExportCases renders the brief case list as an XLSX workbook with a styled
// header row. The export is capped at the list limit; larger extracts belong
// in a reporting pipeline, not a request handler.
func (s *caseService) ExportCases(ctx context.Context) ([]byte, error) {
	cases, err := s.store.ListCases(ctx, 0, MaxListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases for export: %w", err)
	}

	f := excelize.NewFile()
	// Note: don't defer Close() here, WriteTo needs the file open.

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header cell: %w", err)
		}
	}

	for i, c := range cases {
		row := i + 2
		values := []interface{}{
			c.CaseNumber,
			c.Status,
			c.ConstructionUnit,
			c.BuildingType,
			c.LandArea,
			c.BuildingArea,
			c.ViolationArea,
			c.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}

	s.log.Info("Case list exported", map[string]interface{}{
		"count": len(cases),
	})

	return buf.Bytes(), nil
}
