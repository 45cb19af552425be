package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 11, 25, 14, 30, 0, 0, time.UTC)

func newTestParser() *Parser {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"11987654321", "5511987654321"},
		{"(11) 98765-4321", "5511987654321"},
		{"+55 11 98765-4321", "5511987654321"},
		{"5511987654321", "5511987654321"},
		{"", ""},
		{"sem telefone", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.raw))
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("11 97654-3210")
	assert.Equal(t, once, NormalizePhone(once))
	assert.Equal(t, "5511976543210", once)
}

func TestNormalizeAge(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"34", 34},
		{"  45", 45},
		{"34 anos", 34},
		{"34.7", 34},
		{"+20", 20},
		{"-5", 0},
		{"idade", 0},
		{"", 0},
		{"99999999999999999999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAge(tt.raw))
		})
	}
}

func TestBuildRecord(t *testing.T) {
	stamp := fixedNow.UnixMilli()

	out := buildRecord(rawRow{position: 3, name: "  Ana Silva ", age: "34", phone: "11987654321"}, stamp, "2024-11-25")
	require.True(t, out.ok())
	assert.Equal(t, PatientRecord{
		ID:        recordID(stamp, 3),
		Name:      "Ana Silva",
		Age:       34,
		Phone:     "5511987654321",
		LastVisit: "2024-11-25",
	}, out.record)
}

func TestBuildRecord_Drops(t *testing.T) {
	tests := []struct {
		name string
		row  rawRow
		want dropReason
	}{
		{"blank name", rawRow{name: "   ", phone: "11987654321"}, dropMissingName},
		{"no digits in phone", rawRow{name: "Ana", phone: "n/a"}, dropMissingPhone},
		{"pre-dropped", rawRow{dropped: dropHeaderRow, name: "Ana", phone: "11"}, dropHeaderRow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := buildRecord(tt.row, 1, "2024-11-25")
			assert.False(t, out.ok())
			assert.Equal(t, tt.want, out.dropped)
		})
	}
}

func TestAssemble_UsesOneTimestampPerBatch(t *testing.T) {
	p := newTestParser()
	outcomes := p.assemble([]rawRow{
		{position: 0, name: "Ana", phone: "11987654321"},
		{position: 1, name: "Carlos", phone: "11976543210"},
	})

	require.Len(t, outcomes, 2)
	assert.Equal(t, "imported-1732545000000-0", outcomes[0].record.ID)
	assert.Equal(t, "imported-1732545000000-1", outcomes[1].record.ID)
	assert.Equal(t, "2024-11-25", outcomes[1].record.LastVisit)
}

func TestIsHeaderLabel(t *testing.T) {
	assert.True(t, isHeaderLabel("Nome"))
	assert.True(t, isHeaderLabel("NOME COMPLETO"))
	assert.True(t, isHeaderLabel("Paciente"))
	assert.True(t, isHeaderLabel("PACIÉNTE"))
	assert.False(t, isHeaderLabel("Ana Silva"))
}

func TestFoldLabel(t *testing.T) {
	assert.Equal(t, "ultima visita", foldLabel("Última Visita"))
}
