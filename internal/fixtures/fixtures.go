// Package fixtures provides a small slice of the NOC 2021 classification table for tests.
package fixtures

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/canoeh/nocs/internal/models"
	"github.com/xuri/excelize/v2"
)

// Header is the header row of the published classification structure file.
var Header = []string{"Level", "Hierarchical structure", "Code - NOC 2021 V1.0", "Class title", "Class definition"}

var levelNames = map[int]string{
	1: "Broad occupational category",
	2: "Major group",
	3: "Sub-major group",
	4: "Minor group",
	5: "Unit group",
}

// Rows returns the fixture table in source order.
func Rows() []models.ClassificationRow {
	rows := []models.ClassificationRow{
		{Level: 1, Code: "0", Title: "Legislative and senior management occupations"},
		{Level: 2, Code: "00", Title: "Legislative and senior managers"},
		{Level: 3, Code: "000", Title: "Legislative and senior managers"},
		{Level: 4, Code: "0001", Title: "Legislators and senior management"},
		{Level: 5, Code: "00010", Title: "Legislators", Definition: "Legislators participate in the activities of a federal, provincial, territorial or local government legislative body."},
		{Level: 5, Code: "00012", Title: "Senior managers - financial, communications and other business services", Definition: "Senior managers in this unit group plan, organize, direct, control and evaluate the activities of establishments providing financial, communications and other business services."},
		{Level: 1, Code: "1", Title: "Business, finance and administration occupations"},
		{Level: 2, Code: "10", Title: "Specialized middle management occupations in administrative services, financial and business services and communication (except broadcasting)"},
		{Level: 4, Code: "1001", Title: "Administrative services managers"},
		{Level: 5, Code: "10010", Title: "Financial managers", Definition: "Financial managers plan, organize, direct, control and evaluate the operation of financial and accounting departments."},
		{Level: 1, Code: "2", Title: "Natural and applied sciences and related occupations"},
		{Level: 2, Code: "21", Title: "Professional occupations in natural and applied sciences"},
		{Level: 3, Code: "212", Title: "Professional occupations in applied sciences (except engineering)"},
		{Level: 4, Code: "2121", Title: "Mathematicians, statisticians, actuaries and data scientists"},
		{Level: 5, Code: "21211", Title: "Data scientists", Definition: "Data scientists use advanced analytics technologies, including machine learning and predictive modelling, to support the identification of trends and decision making."},
		{Level: 4, Code: "2123", Title: "Computer and information systems professionals"},
		{Level: 5, Code: "21230", Title: "Computer systems developers and programmers", Definition: "Computer systems developers and programmers write, modify, integrate and test computer code for software applications and data processing applications."},
		{Level: 5, Code: "21231", Title: "Software engineers and designers", Definition: "Software engineers and designers research, design, evaluate, integrate and maintain software applications, technical environments, operating systems and embedded software."},
		{Level: 5, Code: "21232", Title: "Software developers and programmers", Definition: "Software developers and programmers design, write and test computer code for software applications and mobile applications."},
		{Level: 5, Code: "21233", Title: "Web designers", Definition: "Web designers plan, create and modify the design of websites and digital interfaces."},
		{Level: 5, Code: "21234", Title: "Web developers and programmers", Definition: "Web developers and programmers research, design, develop and produce Internet and Intranet sites and web applications."},
		{Level: 1, Code: "3", Title: "Health occupations"},
		{Level: 2, Code: "31", Title: "Professional occupations in health"},
		{Level: 4, Code: "3110", Title: "Physicians, dentists and veterinarians"},
		{Level: 5, Code: "31102", Title: "General practitioners and family physicians", Definition: "General practitioners and family physicians diagnose and treat the diseases, physiological disorders and injuries of patients."},
		{Level: 1, Code: "4", Title: "Occupations in education, law and social, community and government services"},
		{Level: 2, Code: "44", Title: "Care providers and public protection support occupations and student monitors, crossing guards and related occupations"},
		{Level: 4, Code: "4410", Title: "Home care providers and educational support occupations"},
		{Level: 5, Code: "44100", Title: "Home child care providers", Definition: "Home child care providers care for children on an ongoing or short-term basis in their own homes or in the homes of employers."},
		{Level: 1, Code: "6", Title: "Sales and service occupations"},
		{Level: 2, Code: "63", Title: "Service supervisors and specialized service occupations"},
		{Level: 4, Code: "6320", Title: "Cooks, butchers and bakers"},
		{Level: 5, Code: "63200", Title: "Cooks", Definition: "Cooks prepare and cook a wide range of foods."},
		{Level: 2, Code: "65", Title: "Sales and service support occupations"},
		{Level: 4, Code: "6520", Title: "Support occupations in accommodation, travel and food services"},
		{Level: 5, Code: "65201", Title: "Food counter attendants, kitchen helpers and related support occupations", Definition: "Food counter attendants, kitchen helpers and related support workers prepare, heat and finish simple food items and clean kitchen areas."},
		{Level: 1, Code: "7", Title: "Trades, transport and equipment operators and related occupations"},
		{Level: 2, Code: "72", Title: "Technical trades and transportation officers and controllers"},
		{Level: 4, Code: "7210", Title: "Machining, metal forming, shaping and erecting trades"},
		{Level: 5, Code: "72100", Title: "Machinists and machining and tooling inspectors", Definition: "Machinists set up and operate a variety of machine tools to cut or grind metal and similar materials into parts or products."},
	}
	for i := range rows {
		rows[i].Line = i + 2
	}
	return rows
}

// OccupationCodes returns the unit group codes of the fixture in ascending order.
func OccupationCodes() []string {
	return []string{
		"00010", "00012", "10010", "21211", "21230", "21231", "21232",
		"21233", "21234", "31102", "44100", "63200", "65201", "72100",
	}
}

func table(rows []models.ClassificationRow) [][]string {
	out := [][]string{Header}
	for _, r := range rows {
		out = append(out, []string{strconv.Itoa(r.Level), levelNames[r.Level], r.Code, r.Title, r.Definition})
	}
	return out
}

// CSV returns the fixture table encoded as the published CSV file.
func CSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(table(Rows()))
	return buf.Bytes()
}

// XLSX returns the fixture table as a single-sheet workbook.
func XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for i, record := range table(Rows()) {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := f.SetSheetRow("Sheet1", cellName, &values); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
