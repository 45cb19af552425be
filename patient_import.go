// Package parser patient contact list import parser
// Accepts HTML, CSV and JSON exports from office systems and returns uniform patient records
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ============================================================================
// Normalized data structures
// ============================================================================

// PatientRecord normalized patient contact
type PatientRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Phone     string `json:"phone"`     // digits only, always starts with CountryCode
	LastVisit string `json:"lastVisit"` // YYYY-MM-DD
}

// ImportResult import batch result
type ImportResult struct {
	Success      bool            `json:"success"`
	SourceFormat SourceFormat    `json:"source_format"` // json, csv, html
	Total        int             `json:"total"`         // candidate rows seen by the extractor
	Imported     int             `json:"imported"`
	Skipped      int             `json:"skipped"` // rows dropped for missing name or phone
	Patients     []PatientRecord `json:"patients"`
}

// MsgNoPatients shown when an import yields no records
const MsgNoPatients = "Nenhum paciente encontrado. Verifique o formato."

// ErrMalformedJSON structured input could not be parsed
var ErrMalformedJSON = errors.New("malformed JSON input")

// ============================================================================
// Parser
// ============================================================================

// Parser converts raw text into patient records. It holds no state between
// calls and is safe for concurrent use.
type Parser struct {
	now func() time.Time
}

// Option configures a Parser
type Option func(*Parser)

// WithClock overrides the clock used for ids and the default visit date
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Parser
func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// ParseContent parses pasted text with the default parser
func ParseContent(content string) (*ImportResult, error) {
	return defaultParser.ParseContent(content)
}

// ParseFile parses an uploaded file with the default parser
func ParseFile(r io.Reader, filename string) (*ImportResult, error) {
	return defaultParser.ParseFile(r, filename)
}

// ParseFileAs parses a file as the given format with the default parser
func ParseFileAs(r io.Reader, format SourceFormat) (*ImportResult, error) {
	return defaultParser.ParseFileAs(r, format)
}

// ParseByFormat parses content as the given format with the default parser
func ParseByFormat(content string, format SourceFormat) (*ImportResult, error) {
	return defaultParser.ParseByFormat(content, format)
}

// ParseContent detects the format of pasted text and parses it.
// Empty or whitespace-only content yields an empty result.
func (p *Parser) ParseContent(content string) (*ImportResult, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return newResult(FormatAuto), nil
	}
	return p.ParseByFormat(trimmed, DetectFormat(trimmed))
}

// ParseFile reads the whole file and dispatches on its extension.
// Unknown extensions fall back to content detection.
func (p *Parser) ParseFile(r io.Reader, filename string) (*ImportResult, error) {
	return p.ParseFileAs(r, formatFromFilename(filename))
}

// ParseFileAs reads the whole file, decodes it to UTF-8 and parses it as
// format. FormatAuto runs content detection.
func (p *Parser) ParseFileAs(r io.Reader, format SourceFormat) (*ImportResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	text := decodeContent(content)

	if format == FormatAuto {
		return p.ParseContent(text)
	}
	return p.ParseByFormat(text, format)
}

// ParseByFormat runs one extractor directly. FormatAuto runs detection.
func (p *Parser) ParseByFormat(content string, format SourceFormat) (*ImportResult, error) {
	switch format {
	case FormatJSON:
		return p.ParseJSON(content)
	case FormatCSV:
		return p.ParseCSV(content)
	case FormatHTML:
		return p.ParseHTML(content)
	case FormatAuto:
		return p.ParseContent(content)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func newResult(format SourceFormat) *ImportResult {
	return &ImportResult{
		SourceFormat: format,
		Patients:     []PatientRecord{},
	}
}

// finish copies assembled outcomes into the result
func (r *ImportResult) finish(outcomes []rowOutcome) *ImportResult {
	r.Total = len(outcomes)
	for _, o := range outcomes {
		if !o.ok() {
			r.Skipped++
			continue
		}
		r.Patients = append(r.Patients, o.record)
	}
	r.Imported = len(r.Patients)
	r.Success = r.Imported > 0
	return r
}

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeContent returns the file as UTF-8. Exports that are not valid UTF-8
// are treated as Windows-1252, the usual encoding of legacy office systems.
func decodeContent(content []byte) string {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content)
	}

	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), content)
	if err != nil {
		return string(content)
	}
	return string(decoded)
}
