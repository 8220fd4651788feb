package caster

import (
	"errors"
	"io"
	"net/netip"
	"reflect"
	"testing"

	"github.com/muurk/reccaster/internal/protocol"
)

var testAnnouncement = protocol.Announcement{
	Magic:      protocol.Magic,
	ServerAddr: netip.MustParseAddr("192.0.2.1"),
	ServerPort: 5064,
	ServerKey:  0xDEADBEEF,
}

func TestTransition(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name        string
		state       State
		event       Event
		wantState   State
		wantReplies []protocol.Message
	}{
		{
			name:      "discovering: announcement starts handshake",
			state:     Discovering{},
			event:     AnnouncementReceived{Announcement: testAnnouncement},
			wantState: Handshaking{Announcement: testAnnouncement},
		},
		{
			name:      "discovering: bad datagram stays discovering",
			state:     Discovering{},
			event:     ReceiveFailed{Err: protocol.ErrTooShort},
			wantState: Discovering{},
		},
		{
			name:      "discovering: stray stream event stays discovering",
			state:     Discovering{},
			event:     StreamFailed{Err: io.EOF},
			wantState: Discovering{},
		},
		{
			name:        "handshaking: server greet answered with key",
			state:       Handshaking{Announcement: testAnnouncement},
			event:       MessageReceived{Message: protocol.ServerGreet{}},
			wantState:   Uploading{},
			wantReplies: []protocol.Message{protocol.ClientGreet{ServerKey: 0xDEADBEEF}},
		},
		{
			name:      "handshaking: connect failure",
			state:     Handshaking{Announcement: testAnnouncement},
			event:     ConnectFailed{Err: errBoom},
			wantState: Discovering{},
		},
		{
			name:      "handshaking: unexpected first message",
			state:     Handshaking{Announcement: testAnnouncement},
			event:     MessageReceived{Message: protocol.Ping{Nonce: 1}},
			wantState: Discovering{},
		},
		{
			name:      "handshaking: decode error",
			state:     Handshaking{Announcement: testAnnouncement},
			event:     StreamFailed{Err: protocol.ErrBadMagic},
			wantState: Discovering{},
		},
		{
			name:      "handshaking: stream closed",
			state:     Handshaking{Announcement: testAnnouncement},
			event:     StreamFailed{Err: io.EOF},
			wantState: Discovering{},
		},
		{
			name:      "uploading: completed",
			state:     Uploading{},
			event:     UploadCompleted{},
			wantState: KeepingAlive{},
		},
		{
			name:      "uploading: send failure",
			state:     Uploading{},
			event:     SendFailed{Err: errBoom},
			wantState: Discovering{},
		},
		{
			name:        "keeping alive: ping answered with same nonce",
			state:       KeepingAlive{},
			event:       MessageReceived{Message: protocol.Ping{Nonce: 0x01020304}},
			wantState:   KeepingAlive{},
			wantReplies: []protocol.Message{protocol.Pong{Nonce: 0x01020304}},
		},
		{
			name:      "keeping alive: non-ping message",
			state:     KeepingAlive{},
			event:     MessageReceived{Message: protocol.ServerGreet{}},
			wantState: Discovering{},
		},
		{
			name:      "keeping alive: pong send failure",
			state:     KeepingAlive{},
			event:     SendFailed{Err: errBoom},
			wantState: Discovering{},
		},
		{
			name:      "keeping alive: stream closed",
			state:     KeepingAlive{},
			event:     StreamFailed{Err: io.EOF},
			wantState: Discovering{},
		},
		{
			name:      "keeping alive: unknown message type",
			state:     KeepingAlive{},
			event:     StreamFailed{Err: protocol.ErrUnknownMessageType},
			wantState: Discovering{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotState, gotReplies := Transition(tt.state, tt.event)
			if gotState != tt.wantState {
				t.Errorf("Transition() state = %v, want %v", gotState, tt.wantState)
			}
			if !reflect.DeepEqual(gotReplies, tt.wantReplies) {
				t.Errorf("Transition() replies = %v, want %v", gotReplies, tt.wantReplies)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		wantName string
		wantStr  string
	}{
		{Discovering{}, "Discovering", "Discovering"},
		{Handshaking{Announcement: testAnnouncement}, "Handshaking", "Handshaking(192.0.2.1:5064)"},
		{Uploading{}, "Uploading", "Uploading"},
		{KeepingAlive{}, "KeepingAlive", "KeepingAlive"},
	}

	for _, tt := range tests {
		if got := tt.state.Name(); got != tt.wantName {
			t.Errorf("Name() = %q, want %q", got, tt.wantName)
		}
		if got := tt.state.String(); got != tt.wantStr {
			t.Errorf("String() = %q, want %q", got, tt.wantStr)
		}
	}
}
