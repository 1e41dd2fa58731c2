package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"housecare-data/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const componentSheetName = "Components"

// ComponentImportHeader 部件批量导入模板表头
// category 列同时接受枚举值（roof）和日文表示（屋根）
var ComponentImportHeader = []string{
	"Category",
	"Component Name",
	"Condition Score",
	"Installed Date",
	"Expected Lifespan (Years)",
	"Warranty Expiry Date",
	"Last Inspection Date",
}

// GenerateComponentImportTemplate 生成部件导入模板 Excel 文件
// 第2行写入一条示例数据，便于填写
func GenerateComponentImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	index, err := f.NewSheet(componentSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
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

	for col, header := range ComponentImportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(componentSheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(componentSheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	columnWidths := []float64{15, 25, 15, 15, 22, 18, 18}
	for i := range ComponentImportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(componentSheetName, col, col, columnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 示例行
	example := []any{"roof", "南面屋根", 85, "2015-04-01", 25, "2025-04-01", "2024-10-15"}
	for col, v := range example {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(componentSheetName, cell, v); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set example cell %s: %w", cell, err)
		}
	}

	if err := f.SetPanes(componentSheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseComponentImport 解析上传的部件导入 Excel
// 返回解析出的部件和逐行错误（行号从2起算，对应 Excel 行）
func ParseComponentImport(reader io.Reader, houseID string) ([]*domain.Component, []string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	defer f.Close()

	sheet := componentSheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("no data rows found")
	}

	var comps []*domain.Component
	var rowErrors []string

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(row) {
			continue
		}

		comp, err := parseComponentRow(row, houseID)
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		comps = append(comps, comp)
	}

	return comps, rowErrors, nil
}

func parseComponentRow(row []string, houseID string) (*domain.Component, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	category, err := parseCategoryCell(cell(0))
	if err != nil {
		return nil, err
	}
	name := cell(1)
	if name == "" {
		return nil, fmt.Errorf("component name is required")
	}

	comp := &domain.Component{
		HouseID:       houseID,
		Category:      category,
		ComponentName: name,
	}

	if v := cell(2); v != "" {
		score, err := strconv.Atoi(v)
		if err != nil || score < 0 || score > 100 {
			return nil, fmt.Errorf("invalid condition score: %q", v)
		}
		comp.ConditionScore = &score
	}
	if comp.InstalledDate, err = parseDate(cell(3)); err != nil {
		return nil, fmt.Errorf("invalid installed date: %q", cell(3))
	}
	if v := cell(4); v != "" {
		years, err := strconv.ParseFloat(v, 64)
		if err != nil || years <= 0 {
			return nil, fmt.Errorf("invalid expected lifespan: %q", v)
		}
		comp.ExpectedLifespanYears = &years
	}
	if comp.WarrantyExpiryDate, err = parseDate(cell(5)); err != nil {
		return nil, fmt.Errorf("invalid warranty expiry date: %q", cell(5))
	}
	if comp.LastInspectionDate, err = parseDate(cell(6)); err != nil {
		return nil, fmt.Errorf("invalid last inspection date: %q", cell(6))
	}

	return comp, nil
}

// parseCategoryCell 枚举值和日文表示都接受
func parseCategoryCell(s string) (domain.ComponentCategory, error) {
	if s == "" {
		return "", fmt.Errorf("category is required")
	}
	if c, err := domain.ParseComponentCategory(strings.ToLower(s)); err == nil {
		return c, nil
	}
	for _, c := range domain.ComponentCategories {
		if c.Label() == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category: %q", s)
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// importComponents 处理 POST /admin/api/v1/houses/{id}/components/import
// multipart 字段名 file；整批单事务落库后触发一次重算
func (h *HousesHandler) importComponents(w http.ResponseWriter, r *http.Request, tenantID, houseID string) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("file field is required"))
		return
	}
	defer file.Close()

	comps, rowErrors, err := ParseComponentImport(file, houseID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	if len(rowErrors) > 0 {
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"imported": 0,
			"errors":   rowErrors,
		}))
		return
	}
	if len(comps) == 0 {
		writeJSON(w, http.StatusOK, Fail("no valid rows to import"))
		return
	}

	ids, err := h.comps.BulkCreateComponents(r.Context(), tenantID, comps)
	if err != nil {
		h.logger.Error("Bulk component import failed",
			zap.String("house_id", houseID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail("failed to import components"))
		return
	}

	h.triggerRecompute(r, tenantID, houseID)
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"imported":      len(ids),
		"component_ids": ids,
	}))
}
