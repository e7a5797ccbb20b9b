package coordinator

import (
	"strconv"
	"strings"
)

// DefaultHeaderRows is the number of leading roster rows holding headers
// and metadata rather than students.
const DefaultHeaderRows = 2

// Student is one roster row. Row is the 1-based position in the sheet.
type Student struct {
	Row             int    `json:"row"`
	DisplayName     string `json:"display_name"`
	ExternalUserID  string `json:"external_user_id,omitempty"`
	SourceID        string `json:"source_id,omitempty"`
	DestinationName string `json:"destination_name,omitempty"`
}

// ParseStudents reads students from rows, skipping headerRows leading rows
// and rows whose cells are all blank. Columns are display name, external
// user id, source container id, and an optional destination container name.
func ParseStudents(rows [][]string, headerRows int) []Student {
	if headerRows < 0 {
		headerRows = 0
	}

	var students []Student
	for i, row := range rows {
		if i < headerRows || blank(row) {
			continue
		}
		students = append(students, Student{
			Row:             i + 1,
			DisplayName:     cell(row, 0),
			ExternalUserID:  cell(row, 1),
			SourceID:        cell(row, 2),
			DestinationName: cell(row, 3),
		})
	}
	return students
}

// Label identifies the student in logs and reports.
func (s Student) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.ExternalUserID != "" {
		return s.ExternalUserID
	}
	return "row " + strconv.Itoa(s.Row)
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
