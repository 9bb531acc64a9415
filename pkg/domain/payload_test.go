package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingRecord(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		ok     bool
		wantN  int
		wantPD string
	}{
		{"empty", "", false, 0, ""},
		{"plain text", "coffee", false, 0, ""},
		{"no actions", `{"foo":1}`, false, 0, ""},
		{"start", `{"actions":[{"pid":"alpha","st":true,"comment":"x"}]}`, true, 1, "alpha"},
		{"start and stop", `{"actions":[{"pid":"beta","st":true},{"pid":"alpha","st":false}]}`, true, 2, "beta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ParseBookingRecord(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Len(t, rec.Actions, tt.wantN)
			if tt.wantN > 0 {
				assert.Equal(t, tt.wantPD, rec.Actions[0].ProjectID)
			}
		})
	}
}

func TestBookingRecordEncodeRoundTrip(t *testing.T) {
	stop := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	rec := BookingRecord{Actions: []BookingAction{
		{ProjectID: "alpha", Start: true, Comment: "kickoff"},
		{ProjectID: "beta", Start: false, Time: At(stop)},
	}}
	raw := rec.Encode()
	assert.Contains(t, raw, `"time":"2024-05-01T10:30:00.000Z"`)

	got, ok := ParseBookingRecord(raw)
	require.True(t, ok)
	require.Len(t, got.Actions, 2)
	assert.True(t, got.Actions[1].Time.Equal(stop))
	assert.True(t, got.Actions[0].Time.IsZero())
}

func TestParseProjectList(t *testing.T) {
	assert.Empty(t, ParseProjectList("").Projects)
	assert.Empty(t, ParseProjectList("free text").Projects)

	pl := ParseProjectList(`{"ListOfProjects":["a","b"]}`)
	assert.Equal(t, []string{"a", "b"}, pl.Projects)
	assert.True(t, pl.Contains("b"))
	assert.False(t, pl.Contains("c"))

	assert.Equal(t, `{"ListOfProjects":[]}`, ProjectList{}.Encode())
}

func TestElectionConfigChoices(t *testing.T) {
	cfg, ok := ParseElectionConfig(`{"title":"Board","vote_options":["A","B"]}`)
	require.True(t, ok)
	assert.Equal(t, "Board", cfg.Title)
	assert.Equal(t, []string{"A", "B", AbstentionID}, cfg.Choices())
	assert.Equal(t, []string{"A", "B"}, cfg.Options, "Choices must not alias Options")

	_, ok = ParseElectionConfig("{broken")
	assert.False(t, ok)
}

func TestInstantUnmarshal(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		raw  string
	}{
		{"number", "1704164645000"},
		{"numeric string", `"1704164645000"`},
		{"rfc3339", `"2024-01-02T03:04:05Z"`},
		{"iso millis", `"2024-01-02T03:04:05.000Z"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var i Instant
			require.NoError(t, i.UnmarshalJSON([]byte(tt.raw)))
			assert.True(t, i.Equal(want), "got %v", i.Time)
		})
	}

	var i Instant
	require.NoError(t, i.UnmarshalJSON([]byte("null")))
	assert.True(t, i.IsZero())
	assert.Error(t, i.UnmarshalJSON([]byte(`"not a time"`)))
}

func TestAssetListLookup(t *testing.T) {
	var nilList *AssetList
	_, ok := nilList.Balance(AssetValue)
	assert.False(t, ok, "nil asset list must report unknown balance")

	l := &AssetList{Assets: []Asset{
		{Name: "life#example.com", Balance: 3},
		{Name: "value#example.com", Balance: 12, History: []Transaction{{Amount: 1}}},
	}}
	b, ok := l.Balance(AssetLife)
	assert.True(t, ok)
	assert.Equal(t, int64(3), b)
	assert.Len(t, l.History(AssetValue), 1)
	assert.Nil(t, l.History("other"))
}

func TestLifeStateName(t *testing.T) {
	assert.Equal(t, "In use", LifeInUse.String())
	assert.Equal(t, "Verbraucht", LifeDepleted.Name("de"))
	assert.Equal(t, "(Life on stock)", LifeState(9).Name("en"))
}
