package vm

import "time"

// TimerPeriod is one 60 Hz tick (16.7ms) rounded up.
const TimerPeriod = 17 * time.Millisecond

// Timer is an 8-bit countdown register that decays by one every TimerPeriod of
// accumulated time. The accumulator runs whether or not the value is zero and
// Set leaves it alone, so a freshly set timer can tick early.
type Timer struct {
	value   uint8
	elapsed time.Duration
}

func (t *Timer) Value() uint8 {
	return t.value
}

func (t *Timer) Set(v uint8) {
	t.value = v
}

// Advance feeds d of elapsed time into the timer.
func (t *Timer) Advance(d time.Duration) {
	if d <= 0 {
		return
	}

	t.elapsed += d
	ticks := t.elapsed / TimerPeriod
	t.elapsed -= ticks * TimerPeriod

	if ticks >= time.Duration(t.value) {
		t.value = 0
	} else {
		t.value -= uint8(ticks)
	}
}
