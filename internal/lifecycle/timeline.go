package lifecycle

import "github.com/Fooracles/SystemApp-sub000/internal/types"

// StepState is how a timeline step renders relative to the current status.
type StepState string

const (
	StepDone     StepState = "done"
	StepCurrent  StepState = "current"
	StepUpcoming StepState = "upcoming"
	StepDropped  StepState = "dropped"
)

// Step is one entry of an item's status timeline.
type Step struct {
	Status types.ItemStatus `json:"status"`
	State  StepState        `json:"state"`
}

// Timeline returns one step per status in the item's sequence. Steps
// before the current status are done, later ones upcoming. Every step of
// a dropped item is marked dropped.
func Timeline(item *types.WorkItem) []Step {
	seq := sequences[item.Type]
	steps := make([]Step, 0, len(seq))
	if item.IsDropped() {
		for _, s := range seq {
			steps = append(steps, Step{Status: s, State: StepDropped})
		}
		return steps
	}

	current := -1
	for i, s := range seq {
		if s == item.Status {
			current = i
			break
		}
	}
	for i, s := range seq {
		state := StepUpcoming
		switch {
		case i < current:
			state = StepDone
		case i == current:
			state = StepCurrent
		}
		steps = append(steps, Step{Status: s, State: state})
	}
	return steps
}
