// Package parser delimited text extractor
package parser

import (
	"regexp"
	"strings"
)

var (
	cellSeparator = regexp.MustCompile(`[,;]`)
	cellQuotes    = regexp.MustCompile(`^['"]|['"]$`)
)

// ParseCSV parses comma or semicolon separated lines.
// Columns: name, age, phone, last visit (optional).
// A first line containing "nome" is treated as the header.
func (p *Parser) ParseCSV(content string) (*ImportResult, error) {
	result := newResult(FormatCSV)

	lines := nonBlankLines(content)
	if len(lines) == 0 {
		return result, nil
	}

	start := 0
	if strings.Contains(foldLabel(lines[0]), "nome") {
		start = 1
	}

	rows := make([]rawRow, 0, len(lines)-start)
	for i := start; i < len(lines); i++ {
		cells := splitCells(lines[i])
		if len(cells) < 3 {
			rows = append(rows, rawRow{position: i, dropped: dropTooFewFields})
			continue
		}

		rows = append(rows, rawRow{
			position:  i,
			name:      cells[0],
			age:       cells[1],
			phone:     cells[2],
			lastVisit: getField(cells, 3),
		})
	}

	return result.finish(p.assemble(rows)), nil
}

// splitCells splits one line, trims each cell and removes one pair of quotes
func splitCells(line string) []string {
	cells := cellSeparator.Split(line, -1)
	for i, cell := range cells {
		cells[i] = cellQuotes.ReplaceAllString(strings.TrimSpace(cell), "")
	}
	return cells
}

func nonBlankLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// getField safe index access
func getField(fields []string, index int) string {
	if index >= 0 && index < len(fields) {
		return fields[index]
	}
	return ""
}
