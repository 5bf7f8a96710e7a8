package game

import (
	"errors"
	"fmt"
)

var (
	ErrShotRejected = errors.New("shot rejected")
	ErrShotTimeout  = errors.New("balls still moving")
)

// Shot is one scripted cue action: the aim angle and the drag distance.
type Shot struct {
	Angle float64 `json:"angle" yaml:"angle"`
	Power float64 `json:"power" yaml:"power"`
}

// PlayShot aims, drags and releases the cue, then ticks until the turn
// resolves or maxTicks elapse. It returns the turn result and every event
// emitted along the way.
func PlayShot(m *Match, s Shot, maxTicks int) (*ShotResult, []Event, error) {
	if !m.Phase.AcceptsAim() {
		return nil, nil, fmt.Errorf("%w: match is %s", ErrShotRejected, m.Phase)
	}

	m.BeginDrag()
	m.SetAim(s.Angle, s.Power)
	if !m.CommitShot() {
		return nil, nil, fmt.Errorf("%w: no power", ErrShotRejected)
	}

	var events []Event
	for tick := 0; tick < maxTicks; tick++ {
		res := m.Tick()
		events = append(events, res.Events...)
		if res.Result != nil {
			return res.Result, events, nil
		}
	}
	return nil, events, fmt.Errorf("%w after %d ticks", ErrShotTimeout, maxTicks)
}
