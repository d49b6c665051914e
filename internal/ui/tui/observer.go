package tui

import (
	"fmt"

	"github.com/imamik/lempress/internal/provisioning"
)

// Sender delivers messages to a running program.
type Sender interface {
	Send(msg interface{})
}

// Observer forwards step events to the TUI and everything to next, which
// usually writes the run log file.
type Observer struct {
	next   provisioning.Observer
	sender Sender
}

// NewObserver creates an observer that feeds sender and then next.
func NewObserver(next provisioning.Observer, sender Sender) *Observer {
	return &Observer{next: next, sender: sender}
}

func (o *Observer) Printf(format string, v ...interface{}) {
	o.next.Printf(format, v...)
	o.sender.Send(LogMsg{Line: fmt.Sprintf(format, v...)})
}

func (o *Observer) Event(event provisioning.Event) {
	o.next.Event(event)

	msg := StepMsg{Step: event.Step, Duration: event.Duration}
	switch event.Type {
	case provisioning.EventStepStarted:
		msg.State = StepActive
	case provisioning.EventStepCompleted:
		msg.State = StepDone
	case provisioning.EventStepFailed, provisioning.EventStepTimedOut:
		msg.State = StepFailed
		msg.Err = event.Message
	case provisioning.EventStepSkipped:
		msg.State = StepSkipped
	default:
		return
	}
	o.sender.Send(msg)
}

func (o *Observer) Progress(step string, current, total int) {
	o.next.Progress(step, current, total)
}

func (o *Observer) WithFields(fields map[string]string) provisioning.Observer {
	return &Observer{next: o.next.WithFields(fields), sender: o.sender}
}
