package stream

// EventType identifies the kind of an Event.
type EventType string

const (
	EventStage    EventType = "stage"
	EventChunk    EventType = "chunk"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Stage identifiers, in pipeline order.
const (
	StageInitial = "initialTranslation"
	StageReflect = "reflectTranslation"
	StageImprove = "improveTranslation"
)

// StageCompletion is the single stage of a free-form completion.
const StageCompletion = "completion"

// Stages returns the translation stages in the order they run.
func Stages() []string {
	return []string{StageInitial, StageReflect, StageImprove}
}

// IsStage reports whether name is a known stage identifier.
func IsStage(name string) bool {
	switch name {
	case StageInitial, StageReflect, StageImprove, StageCompletion:
		return true
	}
	return false
}

// Event is one unit of a streamed run.
type Event struct {
	Type   EventType `json:"type"`
	Stage  string    `json:"stage,omitempty"`
	Text   string    `json:"text,omitempty"`
	Cached bool      `json:"cached,omitempty"`
}

func StageEvent(stage string, cached bool) Event {
	return Event{Type: EventStage, Stage: stage, Cached: cached}
}

func ChunkEvent(stage, text string) Event {
	return Event{Type: EventChunk, Stage: stage, Text: text}
}

func CompleteEvent() Event {
	return Event{Type: EventComplete}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Text: message}
}
