package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeTables(t *testing.T) {
	tests := []struct {
		code   int
		reader Dialect
		writer Dialect
	}{
		{0, Default, Default},
		{1, Excel, Excel},
		{2, InformixUnload, InformixUnload},
		{3, InformixUnloadCSV, InformixUnloadCSV},
		{4, MongoDBCSV, MongoDBCSV},
		{5, MongoDBTSV, MongoDBTSV},
		{6, MySQL, MySQL},
		{7, RFC4180, RFC4180},
		{8, Oracle, Oracle},
		{9, PostgreSQLCSV, PostgreSQLCSV},
		{10, PostgreSQLText, PostgreSQLCSV},
		{11, TDF, PostgreSQLText},
		{12, Default, TDF},
		{-1, Default, Default},
		{99, Default, Default},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.reader.Name, ForReader(tt.code).Name, "reader code %d", tt.code)
		assert.Equal(t, tt.writer.Name, ForWriter(tt.code).Name, "writer code %d", tt.code)
	}
}

func TestByName(t *testing.T) {
	d, err := ByName("PostgreSQL-CSV")
	require.NoError(t, err)
	assert.Equal(t, PostgreSQLCSV, d)

	_, err = ByName("sylk")
	var unknown *UnknownDialectError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "sylk", unknown.Name)
	assert.Equal(t, Names(), unknown.Available)
	assert.Len(t, unknown.Available, 12)
}

func TestWith(t *testing.T) {
	d := Default.WithDelimiter(';').WithNullString("").WithRecordSeparator("\n")
	assert.Equal(t, ';', d.Delimiter)
	assert.True(t, d.HasNullString)
	assert.Empty(t, d.NullString)
	assert.Equal(t, "\n", d.RecordSeparator)
	// presets are values; the copy must not leak back
	assert.Equal(t, ',', Default.Delimiter)
	assert.False(t, Default.HasNullString)
}

func TestQuoteModeString(t *testing.T) {
	assert.Equal(t, "QuoteMode(42)", QuoteMode(42).String())
}
