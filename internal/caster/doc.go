// Package caster implements the reccaster connection state machine.
//
// A reccaster moves through four states:
//
//	Discovering -> Handshaking(announcement) -> Uploading -> KeepingAlive
//
// Discovering waits for a UDP announcement. Handshaking connects to the
// announced server, waits for ServerGreet and answers with ClientGreet
// carrying the announced key. Uploading sends the catalog (see UploadPlan).
// KeepingAlive answers every Ping with a Pong carrying the same nonce. Any
// failure (connect error, unexpected message, decode error, closed stream,
// send error or timeout) drops the connection and returns to Discovering.
// There is no final state.
//
// # Transition Function
//
// The rules live in Transition, a pure function of the current state and
// an Event describing what the last I/O produced. It returns the next state
// and the replies to send:
//
//	next, replies := caster.Transition(caster.KeepingAlive{}, caster.MessageReceived{Message: protocol.Ping{Nonce: 7}})
//	// next == KeepingAlive{}, replies == []protocol.Message{protocol.Pong{Nonce: 7}}
//
// # Driver
//
// Caster performs the I/O for each state and feeds the outcome to
// Transition:
//
//	l, err := discovery.Listen(ctx, "", protocol.AnnouncementPort)
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	c := caster.New(cat, l, caster.WithConfig(cfg))
//	err = c.Run(ctx) // returns only when ctx is done or l is closed
//
// Connect, handshake, send and keepalive waits are bounded by Config. After
// a failed session the next connect waits for an exponential backoff delay,
// which resets once an upload completes.
//
// # Observers
//
// Observers receive every state change and every frame. The terminal UI
// uses them to render live status.
package caster
