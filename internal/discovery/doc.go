// Package discovery listens for RecSync server announcements.
//
// RecSync servers periodically send a 16-byte UDP datagram to port 5049
// advertising their TCP endpoint and a session key. A Listener binds that
// port and turns each datagram into a protocol.Announcement.
//
// # Usage Example
//
//	l, err := discovery.Listen(ctx, "", protocol.AnnouncementPort)
//	if err != nil {
//	    return err // bind failures are fatal
//	}
//	defer l.Close()
//
//	for {
//	    ann, err := l.Receive(ctx)
//	    if errors.Is(err, discovery.ErrNoAnnouncement) {
//	        continue
//	    }
//	    ...
//	}
//
// Receive never blocks longer than PollInterval, so callers can check their
// context between polls. Watch and Scan wrap the loop for the CLI.
//
// # Shared Port
//
// On platforms with SO_REUSEPORT the socket is bound with SO_REUSEADDR and
// SO_REUSEPORT so several clients on one host can all hear broadcast
// announcements.
//
// # Thread Safety
//
// A Listener must be used by a single goroutine. Close may be called from
// any goroutine to abort a pending Receive.
package discovery
