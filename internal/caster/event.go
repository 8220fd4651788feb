package caster

import (
	"fmt"

	"github.com/muurk/reccaster/internal/protocol"
)

// Event is the outcome of the I/O performed in one state. Transition maps
// the current state and an event to the next state.
type Event interface {
	fmt.Stringer
	isEvent()
}

// AnnouncementReceived carries a parsed server announcement
type AnnouncementReceived struct {
	Announcement protocol.Announcement
}

// ReceiveFailed reports an unusable datagram or a UDP receive error
type ReceiveFailed struct {
	Err error
}

// ConnectFailed reports that the TCP connection could not be opened
type ConnectFailed struct {
	Err error
}

// MessageReceived carries one decoded message from the server
type MessageReceived struct {
	Message protocol.Message
}

// StreamFailed reports a decode error, read timeout or closed stream
type StreamFailed struct {
	Err error
}

// SendFailed reports that a message could not be encoded or written
type SendFailed struct {
	Err error
}

// UploadCompleted reports that the whole upload plan was sent
type UploadCompleted struct{}

func (e AnnouncementReceived) String() string {
	return fmt.Sprintf("announcement from %s", e.Announcement.Endpoint())
}
func (e ReceiveFailed) String() string { return fmt.Sprintf("receive failed: %v", e.Err) }
func (e ConnectFailed) String() string { return fmt.Sprintf("connect failed: %v", e.Err) }
func (e MessageReceived) String() string { return fmt.Sprintf("received %s", e.Message) }
func (e StreamFailed) String() string { return fmt.Sprintf("stream failed: %v", e.Err) }
func (e SendFailed) String() string { return fmt.Sprintf("send failed: %v", e.Err) }
func (UploadCompleted) String() string { return "upload complete" }

func (AnnouncementReceived) isEvent() {}
func (ReceiveFailed) isEvent() {}
func (ConnectFailed) isEvent() {}
func (MessageReceived) isEvent() {}
func (StreamFailed) isEvent() {}
func (SendFailed) isEvent() {}
func (UploadCompleted) isEvent() {}
