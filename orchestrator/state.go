package orchestrator

import "fmt"

// Stage names a pipeline execution state.
type Stage string

const (
	StageTranscribing Stage = "Transcribing"
	StageSegmenting   Stage = "Segmenting"
	StageDispatching  Stage = "Dispatching"
	StageSucceeded    Stage = "Succeeded"
	StageFailed       Stage = "Failed"
)

// Terminal reports whether the stage is an end state.
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// Event names a stage outcome that drives a transition.
type Event string

const (
	EventTranscribed Event = "transcribed"
	EventSegmented   Event = "segmented"
	EventDispatched  Event = "dispatched"
	EventFailed      Event = "failed"
)

var transitions = map[Stage]map[Event]Stage{
	StageTranscribing: {
		EventTranscribed: StageSegmenting,
		EventFailed:      StageFailed,
	},
	StageSegmenting: {
		EventSegmented: StageDispatching,
		EventFailed:    StageFailed,
	},
	StageDispatching: {
		EventDispatched: StageSucceeded,
		EventFailed:     StageFailed,
	},
}

// Transition returns the stage reached by applying the event to the
// current stage. Events against terminal stages and events the current
// stage does not accept are rejected.
func Transition(current Stage, ev Event) (Stage, error) {
	next, ok := transitions[current][ev]
	if !ok {
		return current, fmt.Errorf("invalid transition: stage %s does not accept event %s", current, ev)
	}
	return next, nil
}
