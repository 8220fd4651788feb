package caster

import "github.com/muurk/reccaster/internal/protocol"

// Transition returns the state that follows s when e occurs, plus any
// messages that must be sent to the server as part of the transition.
//
// It performs no I/O. Every event a state does not expect leads back to
// Discovering, except in Discovering itself which only leaves on an
// announcement.
func Transition(s State, e Event) (State, []protocol.Message) {
	switch s := s.(type) {
	case Discovering:
		if ev, ok := e.(AnnouncementReceived); ok {
			return Handshaking{Announcement: ev.Announcement}, nil
		}
		return Discovering{}, nil

	case Handshaking:
		if ev, ok := e.(MessageReceived); ok {
			if _, ok := ev.Message.(protocol.ServerGreet); ok {
				return Uploading{}, []protocol.Message{
					protocol.ClientGreet{ServerKey: s.Announcement.ServerKey},
				}
			}
		}
		return Discovering{}, nil

	case Uploading:
		if _, ok := e.(UploadCompleted); ok {
			return KeepingAlive{}, nil
		}
		return Discovering{}, nil

	case KeepingAlive:
		if ev, ok := e.(MessageReceived); ok {
			if ping, ok := ev.Message.(protocol.Ping); ok {
				return KeepingAlive{}, []protocol.Message{protocol.Pong{Nonce: ping.Nonce}}
			}
		}
		return Discovering{}, nil
	}

	return Discovering{}, nil
}
