// Package parser markup extractor
// Tries table rows, then list items, then tagged blocks
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// listItemPattern "<name> - <age> - <phone>", hyphen, en dash or em dash
var listItemPattern = regexp.MustCompile(`(.+?)\s*[-–—]\s*(\d+)\s*[-–—]\s*([\d\s()+-]+)`)

// Table column positions: Nome, CPF, Telefone, Última visita, Idade
const (
	colName      = 0
	colPhone     = 2
	colLastVisit = 3
	colAge       = 4
	minTableCols = 3
)

// ParseHTML extracts patients from markup. Each tier runs only when the
// previous one produced no records; the order is fixed.
func (p *Parser) ParseHTML(content string) (*ImportResult, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tiers := []func(*html.Node) []rawRow{
		tableRows,
		listItemRows,
		taggedBlockRows,
	}

	var outcomes []rowOutcome
	for _, tier := range tiers {
		outcomes = p.assemble(tier(doc))
		if countRecords(outcomes) > 0 {
			break
		}
	}

	return newResult(FormatHTML).finish(outcomes), nil
}

func countRecords(outcomes []rowOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.ok() {
			n++
		}
	}
	return n
}

// ============================================================================
// Tier 1: table rows
// ============================================================================

func tableRows(doc *html.Node) []rawRow {
	var rows []rawRow
	position := 0

	walk(doc, func(n *html.Node) {
		if !isElement(n, atom.Tr) || !hasAncestor(n, atom.Table) {
			return
		}

		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if isElement(c, atom.Td) || isElement(c, atom.Th) {
				cells = append(cells, strings.TrimSpace(textContent(c)))
			}
		}

		row := rawRow{position: position}
		position++

		switch {
		case len(cells) < minTableCols:
			row.dropped = dropTooFewFields
		case isHeaderLabel(cells[colName]):
			row.dropped = dropHeaderRow
		default:
			row.name = cells[colName]
			row.phone = cells[colPhone]
			row.lastVisit = getField(cells, colLastVisit)
			row.age = getField(cells, colAge)
		}
		rows = append(rows, row)
	})

	return rows
}

// ============================================================================
// Tier 2: list items
// ============================================================================

func listItemRows(doc *html.Node) []rawRow {
	var rows []rawRow
	position := 0

	walk(doc, func(n *html.Node) {
		if !isElement(n, atom.Li) || !(hasAncestor(n, atom.Ul) || hasAncestor(n, atom.Ol)) {
			return
		}

		row := rawRow{position: position}
		position++

		m := listItemPattern.FindStringSubmatch(strings.TrimSpace(textContent(n)))
		if m == nil {
			row.dropped = dropNoMatch
		} else {
			row.name = m[1]
			row.age = m[2]
			row.phone = m[3]
		}
		rows = append(rows, row)
	})

	return rows
}

// ============================================================================
// Tier 3: blocks tagged with data attributes or classes
// ============================================================================

var (
	patientBlock = selector{attr: "data-patient", classes: []string{"patient", "paciente"}}
	nameField    = selector{attr: "data-name", classes: []string{"name", "nome"}}
	ageField     = selector{attr: "data-age", classes: []string{"age", "idade"}}
	phoneField   = selector{attr: "data-phone", classes: []string{"phone", "telefone"}}
)

func taggedBlockRows(doc *html.Node) []rawRow {
	var rows []rawRow
	position := 0

	walk(doc, func(n *html.Node) {
		if !patientBlock.matches(n) {
			return
		}

		rows = append(rows, rawRow{
			position: position,
			name:     nameField.textIn(n),
			age:      ageField.textIn(n),
			phone:    phoneField.textIn(n),
		})
		position++
	})

	return rows
}

// selector matches elements carrying an attribute or any of the classes
type selector struct {
	attr    string
	classes []string
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Namespace != "" {
			continue
		}
		if a.Key == s.attr {
			return true
		}
		if a.Key == "class" {
			for _, class := range strings.Fields(a.Val) {
				for _, want := range s.classes {
					if class == want {
						return true
					}
				}
			}
		}
	}
	return false
}

// textIn trimmed text of the first matching descendant, "" when absent
func (s selector) textIn(n *html.Node) string {
	var found *html.Node
	for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
		walk(c, func(d *html.Node) {
			if found == nil && s.matches(d) {
				found = d
			}
		})
	}
	if found == nil {
		return ""
	}
	return strings.TrimSpace(textContent(found))
}

// ============================================================================
// Tree helpers
// ============================================================================

// walk visits n and its descendants in document order
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

func hasAncestor(n *html.Node, a atom.Atom) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, a) {
			return true
		}
	}
	return false
}

// textContent concatenated text of all descendant text nodes
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(d *html.Node) {
		if d.Type == html.TextNode {
			b.WriteString(d.Data)
		}
	})
	return b.String()
}
