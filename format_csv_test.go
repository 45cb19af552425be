package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV_SingleLine(t *testing.T) {
	p := newTestParser()

	result, err := p.ParseCSV("Ana Silva,34,11987654321,2024-11-20")
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)

	got := result.Patients[0]
	assert.Equal(t, "Ana Silva", got.Name)
	assert.Equal(t, 34, got.Age)
	assert.Equal(t, "5511987654321", got.Phone)
	assert.Equal(t, "2024-11-20", got.LastVisit)
	assert.Equal(t, "imported-1732545000000-0", got.ID)
	assert.Equal(t, FormatCSV, result.SourceFormat)
	assert.True(t, result.Success)
}

func TestParseCSV_HeaderSkipped(t *testing.T) {
	p := newTestParser()

	content := "Nome,Idade,Telefone,Última visita\n" +
		"Ana Silva,34,11987654321,2024-11-20\n" +
		"Carlos Mendes,45,11976543210,2024-11-15\n"

	result, err := p.ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 2)
	for _, rec := range result.Patients {
		assert.NotEqual(t, "Nome", rec.Name)
	}
	assert.Equal(t, "imported-1732545000000-1", result.Patients[0].ID)
	assert.Equal(t, 2, result.Total)
}

func TestParseCSV_SemicolonsQuotesAndCRLF(t *testing.T) {
	p := newTestParser()

	content := "\"Ana Silva\";'34';\"(11) 98765-4321\"\r\n\r\nCarlos;45;5511976543210;\r\n"

	result, err := p.ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 2)

	assert.Equal(t, "Ana Silva", result.Patients[0].Name)
	assert.Equal(t, 34, result.Patients[0].Age)
	assert.Equal(t, "5511987654321", result.Patients[0].Phone)
	assert.Equal(t, "2024-11-25", result.Patients[0].LastVisit)

	assert.Equal(t, "5511976543210", result.Patients[1].Phone)
	assert.Equal(t, "2024-11-25", result.Patients[1].LastVisit, "blank last visit defaults to today")
}

func TestParseCSV_DropsInvalidRows(t *testing.T) {
	p := newTestParser()

	content := "Ana Silva,34\n" + // too few fields
		",40,11987654321\n" + // no name
		"Bruno,29,sem telefone\n" + // no phone
		"Carla,abc,11912345678\n"

	result, err := p.ParseCSV(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "Carla", result.Patients[0].Name)
	assert.Equal(t, 0, result.Patients[0].Age)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Skipped)
	assert.Equal(t, 1, result.Imported)
}

func TestParseCSV_Empty(t *testing.T) {
	p := newTestParser()

	result, err := p.ParseCSV("  \n\n ")
	require.NoError(t, err)
	assert.Empty(t, result.Patients)
	assert.False(t, result.Success)
}

func TestSplitCells(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "", "d"}, splitCells(` "a" ; b,, 'd' `))
}
