// Package parser field normalization and record assembly
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CountryCode prefix every normalized phone carries (Brazil)
const CountryCode = "55"

// dateLayout ISO-8601 calendar date
const dateLayout = "2006-01-02"

// ============================================================================
// Per-row outcome
// ============================================================================

// rawRow one candidate row as extracted, before normalization
type rawRow struct {
	position  int // position in the batch, used for the id
	name      string
	age       string
	phone     string
	lastVisit string
	dropped   dropReason // set by extractors that reject a row before normalization
}

// dropReason why a row produced no record
type dropReason string

const (
	dropMissingName  dropReason = "missing name"
	dropMissingPhone dropReason = "missing phone"
	dropTooFewFields dropReason = "too few fields"
	dropHeaderRow    dropReason = "header row"
	dropNoMatch      dropReason = "no match"
	dropNotObject    dropReason = "not an object"
)

// rowOutcome either a record or the reason it was dropped
type rowOutcome struct {
	record  PatientRecord
	dropped dropReason
}

func (o rowOutcome) ok() bool {
	return o.dropped == ""
}

// assemble normalizes every row. One timestamp is taken per batch so that
// ids and the default visit date agree across the batch.
func (p *Parser) assemble(rows []rawRow) []rowOutcome {
	now := p.now()
	stamp := now.UnixMilli()
	today := now.UTC().Format(dateLayout)

	outcomes := make([]rowOutcome, 0, len(rows))
	for _, row := range rows {
		outcomes = append(outcomes, buildRecord(row, stamp, today))
	}
	return outcomes
}

// buildRecord normalizes one row; rows without name or phone are dropped
func buildRecord(row rawRow, stamp int64, today string) rowOutcome {
	if row.dropped != "" {
		return rowOutcome{dropped: row.dropped}
	}

	name := strings.TrimSpace(row.name)
	if name == "" {
		return rowOutcome{dropped: dropMissingName}
	}

	phone := NormalizePhone(row.phone)
	if phone == "" {
		return rowOutcome{dropped: dropMissingPhone}
	}

	lastVisit := strings.TrimSpace(row.lastVisit)
	if lastVisit == "" {
		lastVisit = today
	}

	return rowOutcome{
		record: PatientRecord{
			ID:        recordID(stamp, row.position),
			Name:      name,
			Age:       NormalizeAge(row.age),
			Phone:     phone,
			LastVisit: lastVisit,
		},
	}
}

// recordID unique within one import call
func recordID(stamp int64, position int) string {
	return fmt.Sprintf("imported-%d-%d", stamp, position)
}

// ============================================================================
// Field normalizers
// ============================================================================

// NormalizePhone keeps only digits and prepends CountryCode when missing.
// Input without digits returns "".
func NormalizePhone(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, CountryCode) {
		return digits
	}
	return CountryCode + digits
}

// NormalizeAge parses the leading integer ("34 anos" -> 34).
// Unparseable or negative values return 0.
func NormalizeAge(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return 0
	}

	age, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return age
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// foldLabel lowercases and strips accents ("Última Visita" -> "ultima visita")
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// isHeaderLabel reports whether a first cell looks like a column label
func isHeaderLabel(cell string) bool {
	folded := foldLabel(cell)
	return strings.Contains(folded, "nome") || strings.Contains(folded, "paciente")
}
