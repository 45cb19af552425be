package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	parser "github.com/pulso-odonto/go-br-patient-parser"
	"github.com/pulso-odonto/go-br-patient-parser/internal/outreach"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseCommand_CSV(t *testing.T) {
	path := writeFile(t, "pacientes.csv", "Nome;Idade;Telefone\nAna Silva;34;(11) 98765-4321\n")

	out, _, err := run(t, "parse", path)
	require.NoError(t, err)

	var result parser.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, parser.FormatCSV, result.SourceFormat)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "5511987654321", result.Patients[0].Phone)
}

func TestParseCommand_ForcedFormat(t *testing.T) {
	path := writeFile(t, "export.txt", `{"nome": "Ana", "idade": "34", "telefone": "11987654321"}`)

	out, _, err := run(t, "parse", path, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"source_format": "json"`)
}

func TestParseCommand_ForcedFormatDecodesInput(t *testing.T) {
	path := writeFile(t, "export.json", "\xef\xbb\xbf[{\"nome\": \"Ana\", \"telefone\": \"11987654321\"}]")

	out, _, err := run(t, "parse", "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"phone": "5511987654321"`)

	path = writeFile(t, "lista.txt", "Jo\xe3o,30,11987654321\n")

	out, _, err = run(t, "parse", "--format", "csv", path)
	require.NoError(t, err)

	var result parser.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "João", result.Patients[0].Name)
}

func TestParseCommand_NoPatients(t *testing.T) {
	path := writeFile(t, "vazio.html", "<p>nada aqui</p>")

	_, errOut, err := run(t, "parse", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, parser.MsgNoPatients)
}

func TestParseCommand_Errors(t *testing.T) {
	_, _, err := run(t, "parse", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	path := writeFile(t, "a.csv", "Ana,34,11987654321")
	_, _, err = run(t, "parse", path, "--format", "xml")
	assert.Error(t, err)

	path = writeFile(t, "bad.json", `[{"nome": "Ana"`)
	_, _, err = run(t, "parse", path)
	assert.ErrorIs(t, err, parser.ErrMalformedJSON)
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := run(t, "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(parser.GetSupportedFormats()))
	assert.True(t, strings.HasPrefix(lines[0], "auto"))
}

func TestTemplatesCommand(t *testing.T) {
	path := writeFile(t, "templates.yaml", "templates:\n  - id: aniversario\n    label: Aniversário\n    message: Parabéns!\n")

	out, _, err := run(t, "templates", "--file", path)
	require.NoError(t, err)

	var templates []outreach.Template
	require.NoError(t, json.Unmarshal([]byte(out), &templates))
	assert.Len(t, templates, len(outreach.DefaultTemplates())+1)
}

func TestLinkCommand(t *testing.T) {
	out, _, err := run(t, "link", "--phone", "(11) 98765-4321", "--message", "Oi Ana")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511987654321?text=Oi%20Ana\n", out)

	out, _, err = run(t, "link", "--phone", "11987654321", "--template", "promo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://wa.me/5511987654321?text="))

	_, _, err = run(t, "link", "--phone", "11987654321")
	assert.Error(t, err)

	_, _, err = run(t, "link", "--phone", "11987654321", "--template", "nope")
	assert.Error(t, err)
}
