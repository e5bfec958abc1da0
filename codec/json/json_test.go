package jsoncodec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-data-exporter/factio/scanner"
)

func rows() scanner.Rows {
	return scanner.FromData([][]any{
		{int64(1), []byte("ann"), nil},
		{int64(2), []byte("bob"), 2.5},
		{int64(3), []byte("cy"), 0.0},
	})
}

func TestWrite_Array(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Write(rows(), &buf))

	assert.Equal(t, "[\n"+
		`{"column_0":1,"column_1":"ann","column_2":null},`+"\n"+
		`{"column_0":2,"column_1":"bob","column_2":2.5},`+"\n"+
		`{"column_0":3,"column_1":"cy","column_2":0}`+"\n]\n", buf.String())
}

func TestWrite_NewlineDelimitedWithLimit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(WithNewlineDelimited(true), WithLimit(2)).Write(rows(), &buf))

	assert.Equal(t, `{"column_0":1,"column_1":"ann","column_2":null}`+"\n"+
		`{"column_0":2,"column_1":"bob","column_2":2.5}`+"\n", buf.String())
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Write(scanner.FromData(nil), &buf))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, New(WithLimit(0)).Write(rows(), &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWrite_PreProcessorAndCustomType(t *testing.T) {
	var seen []int
	pre := func(rowID int, row map[string]any) (map[string]any, bool) {
		seen = append(seen, rowID)
		if rowID == 2 {
			return nil, false
		}
		row["extra"] = true
		return row, true
	}
	double := func(v int64, m scanner.Metadata) any {
		return v * 2
	}

	var buf bytes.Buffer
	require.NoError(t, New(WithPreProcessorFunc(pre), WithCustomType(double), WithNewlineDelimited(true)).Write(rows(), &buf))

	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.Equal(t, `{"column_0":2,"column_1":"ann","column_2":null,"extra":true}`+"\n"+
		`{"column_0":6,"column_1":"cy","column_2":0,"extra":true}`+"\n", buf.String())
}
