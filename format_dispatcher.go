// Package parser format dispatcher
// Chooses the extractor for a file name or a pasted text blob
package parser

import (
	"path/filepath"
	"strings"
)

// SourceFormat supported input formats
type SourceFormat string

const (
	FormatAuto SourceFormat = "auto" // detect from content
	FormatJSON SourceFormat = "json" // object or array of objects
	FormatCSV  SourceFormat = "csv"  // comma or semicolon separated
	FormatHTML SourceFormat = "html" // table, list or tagged blocks
)

// FormatInfo format description
type FormatInfo struct {
	Code        SourceFormat `json:"code"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Extensions  []string     `json:"extensions"`
}

// GetSupportedFormats lists the accepted formats
func GetSupportedFormats() []FormatInfo {
	return []FormatInfo{
		{
			Code:        FormatAuto,
			Name:        "Detecção automática",
			Description: "Identifica o formato pelo conteúdo colado ou pela extensão do arquivo",
			Extensions:  []string{},
		},
		{
			Code:        FormatHTML,
			Name:        "HTML",
			Description: "Tabela com Nome, CPF, Telefone, Última visita e Idade; lista Nome - Idade - Telefone; ou blocos .paciente",
			Extensions:  []string{".html", ".htm"},
		},
		{
			Code:        FormatCSV,
			Name:        "CSV",
			Description: "Nome, Idade, Telefone e Última visita separados por vírgula ou ponto e vírgula",
			Extensions:  []string{".csv"},
		},
		{
			Code:        FormatJSON,
			Name:        "JSON",
			Description: "Campos name/nome, age/idade, phone/telefone e lastVisit/ultimaVisita/data",
			Extensions:  []string{".json"},
		},
	}
}

// DetectFormat classifies text by cheap syntactic probes only.
// The content is not validated here.
func DetectFormat(content string) SourceFormat {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}

	if strings.ContainsAny(trimmed, ",;") {
		return FormatCSV
	}

	return FormatHTML
}

// formatFromFilename maps a file extension to a format, FormatAuto if unknown
func formatFromFilename(filename string) SourceFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatAuto
	}
}

// ParseFormat converts user input to a SourceFormat; empty means auto
func ParseFormat(s string) (SourceFormat, bool) {
	switch SourceFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatAuto:
		return FormatAuto, true
	case FormatJSON:
		return FormatJSON, true
	case FormatCSV:
		return FormatCSV, true
	case FormatHTML, "htm":
		return FormatHTML, true
	default:
		return SourceFormat(s), false
	}
}

// GetFormatName display name of a format
func GetFormatName(format SourceFormat) string {
	for _, info := range GetSupportedFormats() {
		if info.Code == format {
			return info.Name
		}
	}
	return string(format)
}
