package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHTML_Table(t *testing.T) {
	p := newTestParser()

	content := `<table>
		<thead><tr><th>Nome</th><th>CPF</th><th>Telefone</th><th>Última visita</th><th>Idade</th></tr></thead>
		<tbody>
			<tr><td>Ana Silva</td><td>123.456.789-00</td><td>(11) 98765-4321</td><td>2024-11-20</td><td>34</td></tr>
			<tr><td>Carlos Mendes</td><td>987.654.321-00</td><td>11 97654-3210</td><td>2024-11-15</td><td>45 anos</td></tr>
		</tbody>
	</table>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 2)

	assert.Equal(t, PatientRecord{
		ID:        "imported-1732545000000-1",
		Name:      "Ana Silva",
		Age:       34,
		Phone:     "5511987654321",
		LastVisit: "2024-11-20",
	}, result.Patients[0])
	assert.Equal(t, 45, result.Patients[1].Age)
	assert.Equal(t, FormatHTML, result.SourceFormat)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Skipped, "header row")
}

func TestParseHTML_TableThreeColumns(t *testing.T) {
	p := newTestParser()

	content := `<table><tr><td>Ana</td><td>-</td><td>11987654321</td></tr></table>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, 0, result.Patients[0].Age)
	assert.Equal(t, "2024-11-25", result.Patients[0].LastVisit)
}

func TestParseHTML_TableCellsAreDirectChildren(t *testing.T) {
	p := newTestParser()

	content := `<table><tr>
		<td><strong>Ana</strong> Silva</td>
		<td>123.456.789-00</td>
		<td><a href="tel:11987654321">(11) <span>98765-4321</span></a></td>
		<td><table><tr><td>x</td><td>y</td></tr></table></td>
	</tr></table>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "Ana Silva", result.Patients[0].Name)
	assert.Equal(t, "5511987654321", result.Patients[0].Phone)
	assert.Equal(t, 2, result.Total, "the nested table row is a row of its own")
	assert.Equal(t, 1, result.Skipped)
}

func TestParseHTML_PacienteHeaderSkipped(t *testing.T) {
	p := newTestParser()

	content := `<table>
		<tr><td>PACIENTE</td><td>CPF</td><td>Fone 11</td></tr>
		<tr><td>Ana</td><td></td><td>11987654321</td></tr>
	</table>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "Ana", result.Patients[0].Name)
}

func TestParseHTML_ListItems(t *testing.T) {
	p := newTestParser()

	content := `<ul>
		<li>Ana Silva - 34 - (11) 98765-4321</li>
		<li>Carlos Mendes – 45 – 11 97654-3210</li>
		<li>Beatriz Souza — 28 — +55 21 99876-5432</li>
		<li>sem formato</li>
	</ul>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 3)

	assert.Equal(t, "Ana Silva", result.Patients[0].Name)
	assert.Equal(t, 34, result.Patients[0].Age)
	assert.Equal(t, "5511987654321", result.Patients[0].Phone)
	assert.Equal(t, "Carlos Mendes", result.Patients[1].Name)
	assert.Equal(t, "5521998765432", result.Patients[2].Phone)
	assert.Equal(t, "2024-11-25", result.Patients[2].LastVisit)
	assert.Equal(t, 1, result.Skipped)
}

func TestParseHTML_TaggedBlocks(t *testing.T) {
	p := newTestParser()

	content := `<div>
		<div class="card paciente">
			<span class="nome">Ana Silva</span>
			<span class="idade">34</span>
			<span class="telefone">(11) 98765-4321</span>
		</div>
		<section data-patient="2">
			<p data-name>Carlos</p><p data-age>45</p><p data-phone>11976543210</p>
		</section>
		<div class="patient"><span class="name">Sem telefone</span></div>
	</div>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 2)

	assert.Equal(t, "Ana Silva", result.Patients[0].Name)
	assert.Equal(t, 34, result.Patients[0].Age)
	assert.Equal(t, "imported-1732545000000-1", result.Patients[1].ID)
	assert.Equal(t, "5511976543210", result.Patients[1].Phone)
	assert.Equal(t, 1, result.Skipped)
}

func TestParseHTML_TierOrder(t *testing.T) {
	p := newTestParser()

	// table rows win over list items when they yield records
	content := `<table><tr><td>Tabela</td><td></td><td>11911111111</td></tr></table>
		<ul><li>Lista - 30 - 11922222222</li></ul>`

	result, err := p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "Tabela", result.Patients[0].Name)

	// a table with only a header falls through to the list
	content = `<table><tr><th>Nome</th><th>CPF</th><th>Telefone</th></tr></table>
		<ol><li>Lista - 30 - 11922222222</li></ol>`

	result, err = p.ParseHTML(content)
	require.NoError(t, err)
	require.Len(t, result.Patients, 1)
	assert.Equal(t, "Lista", result.Patients[0].Name)
}

func TestParseHTML_NothingFound(t *testing.T) {
	p := newTestParser()

	result, err := p.ParseHTML("<p>Nenhum dado aqui</p>")
	require.NoError(t, err)
	assert.Empty(t, result.Patients)
	assert.False(t, result.Success)
}
