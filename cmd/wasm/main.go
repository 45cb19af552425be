//go:build js && wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	parser "github.com/pulso-odonto/go-br-patient-parser"
	"github.com/pulso-odonto/go-br-patient-parser/internal/outreach"
)

// parsePatients parses pasted or uploaded content and returns the result as JSON
func parsePatients(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return map[string]interface{}{
			"success": false,
			"error":   "Forneça os dados a importar",
		}
	}

	content := args[0].String()

	var (
		result *parser.ImportResult
		err    error
	)
	if len(args) >= 2 && args[1].String() != "" {
		result, err = parser.ParseFile(strings.NewReader(content), args[1].String())
	} else {
		result, err = parser.ParseContent(content)
	}
	if err != nil {
		return map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		}
	}

	if len(result.Patients) == 0 {
		return map[string]interface{}{
			"success": false,
			"error":   parser.MsgNoPatients,
		}
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return map[string]interface{}{
			"success": false,
			"error":   "Falha ao gerar JSON: " + err.Error(),
		}
	}

	return map[string]interface{}{
		"success": true,
		"data":    string(jsonBytes),
		"summary": map[string]interface{}{
			"imported":     result.Imported,
			"skipped":      result.Skipped,
			"sourceFormat": string(result.SourceFormat),
		},
	}
}

// getSupportedFormats formats list as JSON
func getSupportedFormats(this js.Value, args []js.Value) interface{} {
	formats := parser.GetSupportedFormats()
	jsonBytes, _ := json.Marshal(formats)
	return string(jsonBytes)
}

// whatsappURL (phone, message) -> wa.me link
func whatsappURL(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return ""
	}
	return outreach.WhatsAppURL(args[0].String(), args[1].String())
}

func main() {
	c := make(chan struct{})

	js.Global().Set("parsePatients", js.FuncOf(parsePatients))
	js.Global().Set("getSupportedFormats", js.FuncOf(getSupportedFormats))
	js.Global().Set("whatsappURL", js.FuncOf(whatsappURL))

	js.Global().Set("wasmReady", true)

	println("go-br-patient-parser WASM carregado")

	<-c
}
