package queue

// TaskType identifies the kind of record flowing through a stream. A single
// type exists today; the field stays so a future event kind doesn't require
// a wire-format change down the line.
type TaskType string

const (
	TaskTypeStepEvent TaskType = "step_event"
)
