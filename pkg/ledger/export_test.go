package ledger

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	entries := []Entry{
		{ProjectID: "alpha", Start: t0, Stop: t0.Add(90 * time.Minute), Minutes: 90, Comment: "setup, day one"},
		{ProjectID: "beta", Start: t0.Add(2 * time.Hour), Stop: t0.Add(3 * time.Hour), Minutes: 60},
	}

	out, err := CSV(entries, time.UTC)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"project", "start", "stop", "minutes", "comment"}, rows[0])
	assert.Equal(t, []string{"alpha", "2024-03-04T09:00:00Z", "2024-03-04T10:30:00Z", "90", "setup, day one"}, rows[1])
	assert.Equal(t, "beta", rows[2][0])
	assert.Equal(t, "", rows[2][4])
}

func TestCSV_Empty(t *testing.T) {
	out, err := CSV(nil, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "project,start,stop,minutes,comment\n", out)
}
