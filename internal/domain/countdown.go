package domain

// State is the derived lifecycle state of a Timer.
type State string

const (
	StateIdle    State = "idle"
	StateReady   State = "ready"
	StateRunning State = "running"
	StatePaused  State = "paused"
	StateExpired State = "expired"
)

// Timer is the countdown entity. All fields are whole seconds.
// The zero value is an idle timer.
type Timer struct {
	Duration int
	TimeLeft int
	IsActive bool
	IsPaused bool
	Expired  bool
}

// State derives the lifecycle state from the timer fields.
func (t Timer) State() State {
	switch {
	case t.IsActive:
		return StateRunning
	case t.IsPaused:
		return StatePaused
	case t.Expired:
		return StateExpired
	case t.TimeLeft > 0:
		return StateReady
	default:
		return StateIdle
	}
}

// CanStart reports whether a Start command would take effect.
func (t Timer) CanStart() bool {
	return !t.IsActive && t.TimeLeft > 0
}

// CanPause reports whether a Pause command would take effect.
func (t Timer) CanPause() bool {
	return t.IsActive
}

// Ticking reports whether the one-second tick should be scheduled.
func (t Timer) Ticking() bool {
	return t.IsActive && !t.IsPaused
}

// Display returns the remaining time formatted as MM:SS.
func (t Timer) Display() string {
	return FormatTime(t.TimeLeft)
}

// Progress returns the elapsed fraction of the committed duration (0.0 to 1.0).
func (t Timer) Progress() float64 {
	if t.Duration <= 0 {
		return 0
	}
	elapsed := t.Duration - t.TimeLeft
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= t.Duration {
		return 1
	}
	return float64(elapsed) / float64(t.Duration)
}

// EventKind identifies a command or the internal tick.
type EventKind int

const (
	EventSetDuration EventKind = iota
	EventStart
	EventPause
	EventReset
	EventTick
)

// String returns the event name used in logs.
func (k EventKind) String() string {
	switch k {
	case EventSetDuration:
		return "set_duration"
	case EventStart:
		return "start"
	case EventPause:
		return "pause"
	case EventReset:
		return "reset"
	case EventTick:
		return "tick"
	default:
		return "unknown"
	}
}

// Event is an input to Reduce.
type Event struct {
	Kind    EventKind
	Seconds int
}

// SetDuration commits a new total. Non-positive values are ignored by Reduce.
func SetDuration(seconds int) Event {
	return Event{Kind: EventSetDuration, Seconds: seconds}
}

// SetDurationInput parses raw user input into a SetDuration event.
// Unparseable input yields an event Reduce ignores.
func SetDurationInput(raw string) Event {
	seconds, err := ParseSeconds(raw)
	if err != nil {
		return SetDuration(0)
	}
	return SetDuration(seconds)
}

// Start enables ticking.
func Start() Event { return Event{Kind: EventStart} }

// Pause suspends ticking without touching the remaining time.
func Pause() Event { return Event{Kind: EventPause} }

// Reset restores the last committed duration.
func Reset() Event { return Event{Kind: EventReset} }

// Tick is the internal one-second event.
func Tick() Event { return Event{Kind: EventTick} }

// Effect tells the owner of the tick handle what to do after a transition.
type Effect int

const (
	// EffectNone leaves the tick handle as is.
	EffectNone Effect = iota
	// EffectStartTicking cancels any pending tick and schedules a fresh one.
	EffectStartTicking
	// EffectStopTicking cancels the pending tick.
	EffectStopTicking
)

// Reduce applies an event to a timer. Out-of-guard commands return the
// timer unchanged with EffectNone.
func Reduce(t Timer, ev Event) (Timer, Effect) {
	switch ev.Kind {
	case EventSetDuration:
		if ev.Seconds <= 0 {
			return t, EffectNone
		}
		return Timer{Duration: ev.Seconds, TimeLeft: ev.Seconds}, EffectStopTicking

	case EventStart:
		if !t.CanStart() {
			return t, EffectNone
		}
		t.IsActive = true
		t.IsPaused = false
		t.Expired = false
		return t, EffectStartTicking

	case EventPause:
		if !t.CanPause() {
			return t, EffectNone
		}
		t.IsActive = false
		t.IsPaused = true
		return t, EffectStopTicking

	case EventReset:
		return Timer{Duration: t.Duration, TimeLeft: t.Duration}, EffectStopTicking

	case EventTick:
		if !t.Ticking() {
			return t, EffectNone
		}
		if t.TimeLeft <= 1 {
			t.TimeLeft = 0
			t.IsActive = false
			t.Expired = true
			return t, EffectStopTicking
		}
		t.TimeLeft--
		return t, EffectNone
	}
	return t, EffectNone
}
