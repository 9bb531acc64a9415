package domain

// TimerState is the state of a single timebomb.
type TimerState int

const (
	TimerNew TimerState = iota
	TimerArmed
	TimerExpired
)

// Timebomb schedules a lifecycle transition of an object, either at an
// absolute time or relative to a trigger. Zero values mean "not set", which
// is how the node omits them.
type Timebomb struct {
	TimerNo        int        `json:"timerNo,omitempty"`
	TimerState     TimerState `json:"timerState,omitempty"`
	ExpirationTime int64      `json:"expirationTime,omitempty"` // epoch ms
	DeltaTime      int64      `json:"deltaTime,omitempty"`      // ms after trigger; 1 means immediately
	LifeTrigger    LifeState  `json:"lifeTrigger,omitempty"`
	ValueTrigger   int64      `json:"valueTrigger,omitempty"`
	NextLifeState  LifeState  `json:"nextLifeState"`
}

// Absolute reports whether the timebomb fires at a fixed expiration time.
func (t Timebomb) Absolute() bool { return t.ExpirationTime != 0 }
