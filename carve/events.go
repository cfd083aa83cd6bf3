package carve

// EventKind identifies a lifecycle event emitted by a carving run.
type EventKind int

const (
	// EventStarted is emitted once, before any voxel is visited.
	EventStarted EventKind = iota + 1
	// EventProgress carries the fraction of the voxel scan completed.
	EventProgress
	// EventCompleted is emitted once on success and carries the point count.
	EventCompleted
	// EventCancelled is emitted when cooperative cancellation is observed.
	EventCancelled
	// EventFailed is emitted when the run aborts with an error.
	EventFailed
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification. Events are emitted synchronously from
// within the engine's call stack; hosts that display them are responsible for
// marshaling to their own thread.
type Event struct {
	Kind EventKind
	// Fraction is set for EventProgress, in [0, 1].
	Fraction float64
	// PointCount is set for EventCompleted.
	PointCount int
	// Err is set for EventFailed.
	Err error
}

// EventFunc receives lifecycle events. A nil EventFunc disables reporting.
type EventFunc func(Event)

func (c *Carver) emit(e Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}
