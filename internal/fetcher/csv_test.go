package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, data string) []map[string]string {
	t.Helper()
	rowCh, errCh := StreamCSVRecords(context.Background(), strings.NewReader(data))

	var rows []map[string]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSVRecords(t *testing.T) {
	rows := collectRows(t, "name,tier\nAcme,Tier 1\nBeta,Tier 3\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0]["name"])
	assert.Equal(t, "Tier 3", rows[1]["tier"])
}

func TestStreamCSVRecords_ShortRowPadded(t *testing.T) {
	rows := collectRows(t, "a,b,c\n1,2\n")
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0]["b"])
	assert.Equal(t, "", rows[0]["c"])
}

func TestStreamCSVRecords_Empty(t *testing.T) {
	rows := collectRows(t, "")
	assert.Empty(t, rows)
}

func TestStreamCSVRecords_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSVRecords(ctx, strings.NewReader("a\n1\n2\n"))
	for range rowCh { //nolint:revive
	}
	assert.Error(t, <-errCh)
}
