package timebomb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/timefmt"
)

const expMillis = int64(1704164645000)

func TestDecode(t *testing.T) {
	at := timefmt.DateTime(timefmt.FromMillis(expMillis))

	tests := []struct {
		name      string
		bomb      domain.Timebomb
		lang      timefmt.Lang
		wantClass Class
		wantKind  Kind
		wantText  string
	}{
		{
			name:      "expired",
			bomb:      domain.Timebomb{TimerNo: 1, TimerState: domain.TimerExpired, ExpirationTime: expMillis, NextLifeState: domain.LifeDepleted},
			lang:      timefmt.EN,
			wantClass: ClassExpired,
			wantKind:  KindExpired,
			wantText:  "EXPIRED at " + at,
		},
		{
			name:      "expired german",
			bomb:      domain.Timebomb{TimerNo: 1, TimerState: domain.TimerExpired, ExpirationTime: expMillis},
			lang:      timefmt.DE,
			wantClass: ClassExpired,
			wantKind:  KindExpired,
			wantText:  "ABGELAUFEN am " + at,
		},
		{
			name:      "absolute new",
			bomb:      domain.Timebomb{TimerNo: 2, ExpirationTime: expMillis, NextLifeState: domain.LifeDepleted},
			lang:      timefmt.EN,
			wantClass: ClassNew,
			wantKind:  KindAbsolute,
			wantText:  `NEW, expires at ` + at + `, next state: "Depleted"`,
		},
		{
			name:      "absolute armed german",
			bomb:      domain.Timebomb{TimerNo: 2, TimerState: domain.TimerArmed, ExpirationTime: expMillis, NextLifeState: domain.LifeInUse},
			lang:      timefmt.DE,
			wantClass: ClassArmed,
			wantKind:  KindAbsolute,
			wantText:  `AKTIV, läuft ab am ` + at + `, nächster Status: "In Benutzung"`,
		},
		{
			name:      "trigger immediately",
			bomb:      domain.Timebomb{TimerNo: 3, LifeTrigger: domain.LifeInUse, DeltaTime: 1, NextLifeState: domain.LifeDepleted},
			lang:      timefmt.EN,
			wantClass: ClassNew,
			wantKind:  KindTrigger,
			wantText:  `NEW, triggers at state of "In use", then expires immediately, next state: "Depleted"`,
		},
		{
			name:      "trigger after duration",
			bomb:      domain.Timebomb{TimerNo: 3, TimerState: domain.TimerArmed, LifeTrigger: domain.LifeInUse, DeltaTime: 2 * 3600 * 1000, NextLifeState: domain.LifeDepleted},
			lang:      timefmt.EN,
			wantClass: ClassArmed,
			wantKind:  KindTrigger,
			wantText:  `ARMED, triggers at state of "In use", then expires after 2 hours, next state: "Depleted"`,
		},
		{
			name:      "life and value trigger german",
			bomb:      domain.Timebomb{TimerNo: 4, LifeTrigger: domain.LifeInUse, ValueTrigger: 5, NextLifeState: domain.LifeDepleted},
			lang:      timefmt.DE,
			wantClass: ClassNew,
			wantKind:  KindTrigger,
			wantText:  `NEU, triggert auf Status: "In Benutzung" und Wert: 5, nächster Status: "Verbraucht"`,
		},
		{
			name:      "value trigger only",
			bomb:      domain.Timebomb{TimerNo: 5, ValueTrigger: 10, NextLifeState: domain.LifeReturned},
			lang:      timefmt.EN,
			wantClass: ClassNew,
			wantKind:  KindTrigger,
			wantText:  `NEW, triggers at value of 10, next state: "Returned"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decode(tt.bomb, tt.lang)
			assert.Equal(t, tt.wantClass, d.Class)
			assert.Equal(t, tt.wantKind, d.Kind)
			assert.Equal(t, tt.wantText, d.Text)
			assert.NotEmpty(t, d.Number)
		})
	}
}

func TestDecodeAll(t *testing.T) {
	got := DecodeAll([]domain.Timebomb{
		{TimerNo: 1, ExpirationTime: expMillis, NextLifeState: domain.LifeDepleted},
		{TimerNo: 2, TimerState: domain.TimerExpired},
	}, timefmt.EN)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Number)
	assert.Equal(t, ClassExpired, got[1].Class)

	assert.Empty(t, DecodeAll(nil, timefmt.EN))
}

func TestPlanTimebombs(t *testing.T) {
	exp := time.UnixMilli(expMillis)
	start := exp.Add(-time.Hour)
	p := Plan{Expiration: exp, Start: start, UsageDuration: 90 * time.Minute}

	bombs := p.Timebombs()
	require.Len(t, bombs, 3)
	assert.Equal(t, expMillis, bombs[0].ExpirationTime)
	assert.Equal(t, domain.LifeDepleted, bombs[0].NextLifeState)
	assert.Equal(t, start.UnixMilli(), bombs[1].ExpirationTime)
	assert.Equal(t, domain.LifeInUse, bombs[1].NextLifeState)
	assert.Equal(t, domain.LifeInUse, bombs[2].LifeTrigger)
	assert.Equal(t, int64(90*60*1000), bombs[2].DeltaTime)
	assert.Equal(t, domain.LifeDepleted, bombs[2].NextLifeState)

	assert.Nil(t, Plan{}.Timebombs())
}

func TestPlanMarshalRoundTrip(t *testing.T) {
	exp := time.UnixMilli(expMillis)
	raw, err := Plan{Expiration: exp, UsageDuration: time.Hour}.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `[{"expirationTime":1704164645000,"nextLifeState":2},{"deltaTime":3600000,"lifeTrigger":3,"nextLifeState":2}]`, raw)

	bombs, err := Unmarshal(raw)
	require.NoError(t, err)
	require.Len(t, bombs, 2)
	assert.True(t, timefmt.FromMillis(bombs[0].ExpirationTime).Equal(exp))
	assert.Equal(t, domain.LifeDepleted, bombs[0].NextLifeState)
	assert.False(t, bombs[1].Absolute())

	raw, err = Plan{}.Marshal()
	require.NoError(t, err)
	assert.Empty(t, raw)

	bombs, err = Unmarshal("")
	require.NoError(t, err)
	assert.Nil(t, bombs)

	_, err = Unmarshal("[{")
	assert.Error(t, err)
}

func TestPlanClamp(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limit := 6 * time.Hour

	got := Plan{}.Clamp(now, limit)
	assert.True(t, got.Expiration.Equal(now.Add(limit)))

	got = Plan{Expiration: now.Add(time.Hour)}.Clamp(now, limit)
	assert.True(t, got.Expiration.Equal(now.Add(time.Hour)))

	got = Plan{Expiration: now.Add(48 * time.Hour)}.Clamp(now, limit)
	assert.True(t, got.Expiration.Equal(now.Add(limit)))
}
