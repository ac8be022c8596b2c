package bulk

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSource_ColumnsByName(t *testing.T) {
	data := "\xEF\xBB\xBFnom_complet, devise,montant,valeur_id,type_id,extra\n" +
		"Alice,XOF,100,111,MSISDN,ignored\n" +
		"Bob,XOF\n"

	src, err := NewCSVSource(io.NopCloser(strings.NewReader(data)))
	require.NoError(t, err)
	defer src.Close()

	row, err := src.Next()
	require.NoError(t, err)
	v, ok := row.Get(ColumnIDValue)
	assert.True(t, ok)
	assert.Equal(t, "111", v)
	v, _ = row.Get(ColumnBeneficiary)
	assert.Equal(t, "Alice", v)
	v, _ = row.Get(ColumnCurrency)
	assert.Equal(t, "XOF", v)
	assert.Equal(t, 2, row.Line)

	short, err := src.Next()
	require.NoError(t, err)
	_, ok = short.Get(ColumnAmount)
	assert.False(t, ok)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCSVSource_EmptyFile(t *testing.T) {
	src, err := NewCSVSource(io.NopCloser(strings.NewReader("")))
	require.NoError(t, err)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRow_BlankValue(t *testing.T) {
	row := Row{Fields: map[string]string{ColumnAmount: "   "}}
	_, ok := row.Get(ColumnAmount)
	assert.False(t, ok)
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "all columns", data: header, wantErr: false},
		{name: "reordered with bom", data: "\xEF\xBB\xBFdevise,montant,nom_complet,type_id,valeur_id\n", wantErr: false},
		{name: "missing amount", data: "type_id,valeur_id,devise,nom_complet\n", wantErr: true},
		{name: "empty", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(strings.NewReader(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingColumn)
				return
			}
			assert.NoError(t, err)
		})
	}
}
