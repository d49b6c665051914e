package provisioning

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Observer defines the interface for structured observability during provisioning.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress through a step list
	Progress(step string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Step      string            // Step name (e.g., "database.provision")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Duration  time.Duration     // Elapsed time for terminal step events
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"
	EventStepFailed    EventType = "step.failed"
	EventStepTimedOut  EventType = "step.timed-out"
	EventStepSkipped   EventType = "step.skipped"

	EventResourceCreating EventType = "resource.creating"
	EventResourceCreated  EventType = "resource.created"
	EventResourceExists   EventType = "resource.exists"
	EventResourceDeleted  EventType = "resource.deleted"

	EventProgress EventType = "progress"
)

// LogObserver implements Observer on a *log.Logger. The run log logger
// writes to both the console and the append-only log file.
type LogObserver struct {
	logger        *log.Logger
	contextFields map[string]string
}

// NewLogObserver creates an observer on logger, or on the standard logger if nil.
func NewLogObserver(logger *log.Logger) *LogObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &LogObserver{
		logger:        logger,
		contextFields: make(map[string]string),
	}
}

func (o *LogObserver) Printf(format string, v ...interface{}) {
	o.logger.Printf(format, v...)
}

func (o *LogObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	o.logger.Print(formatEvent(event))
}

func (o *LogObserver) Progress(step string, current, total int) {
	if total == 0 {
		o.logger.Printf("[%s] Progress: %d/%d", step, current, total)
		return
	}
	o.logger.Printf("[%s] Progress: %d/%d (%d%%)", step, current, total, current*100/total)
}

func (o *LogObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &LogObserver{logger: o.logger, contextFields: merged}
}

func formatEvent(event Event) string {
	parts := []string{string(event.Type)}
	if event.Step != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Step))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}
	return strings.Join(parts, " ")
}

// Helper functions for common events

func LogStepStart(observer Observer, step string) {
	observer.Event(Event{Type: EventStepStarted, Step: step, Message: "starting"})
}

func LogStepComplete(observer Observer, step string, duration time.Duration) {
	observer.Event(Event{
		Type:     EventStepCompleted,
		Step:     step,
		Message:  fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
		Duration: duration,
	})
}

func LogStepFailed(observer Observer, step string, duration time.Duration, err error) {
	observer.Event(Event{
		Type:     EventStepFailed,
		Step:     step,
		Message:  fmt.Sprintf("failed: %v", err),
		Duration: duration,
	})
}

func LogStepTimedOut(observer Observer, step string, duration time.Duration, err error) {
	observer.Event(Event{
		Type:     EventStepTimedOut,
		Step:     step,
		Message:  fmt.Sprintf("timed out: %v", err),
		Duration: duration,
	})
}

func LogStepSkipped(observer Observer, step string) {
	observer.Event(Event{Type: EventStepSkipped, Step: step, Message: "not run"})
}

func LogResourceCreating(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreating,
		Step:     step,
		Resource: resourceName,
		Message:  fmt.Sprintf("creating %s", resourceType),
	})
}

func LogResourceCreated(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceCreated,
		Step:     step,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s created", resourceType),
	})
}

func LogResourceExists(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceExists,
		Step:     step,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s already exists", resourceType),
	})
}

func LogResourceDeleted(observer Observer, step, resourceType, resourceName string) {
	observer.Event(Event{
		Type:     EventResourceDeleted,
		Step:     step,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s deleted", resourceType),
	})
}
