package discovery

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"runtime"
	"testing"
	"time"

	"github.com/muurk/reccaster/internal/protocol"
)

func newTestListener(t *testing.T) *Listener {
	t.Helper()
	l, err := Listen(context.Background(), "127.0.0.1", 0)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	l.PollInterval = 50 * time.Millisecond
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func sendDatagram(t *testing.T, to netip.AddrPort, data []byte) {
	t.Helper()
	conn, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(to))
	if err != nil {
		t.Fatalf("DialUDP() error = %v", err)
	}
	defer conn.Close()
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
}

// receiveWithin polls until something other than ErrNoAnnouncement comes back
func receiveWithin(t *testing.T, l *Listener, d time.Duration) (protocol.Announcement, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	for {
		ann, err := l.Receive(ctx)
		if errors.Is(err, ErrNoAnnouncement) {
			continue
		}
		return ann, err
	}
}

func TestListener_Receive(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantErr  error
		wantAddr string
		wantPort uint16
		wantKey  uint32
	}{
		{
			name: "unicast announcement",
			data: protocol.AppendAnnouncement(nil, protocol.Announcement{
				ServerAddr: netip.MustParseAddr("192.0.2.1"),
				ServerPort: 5064,
				ServerKey:  0xDEADBEEF,
			}),
			wantAddr: "192.0.2.1",
			wantPort: 5064,
			wantKey:  0xDEADBEEF,
		},
		{
			name: "broadcast address uses datagram source",
			data: protocol.AppendAnnouncement(nil, protocol.Announcement{
				ServerAddr: netip.MustParseAddr("255.255.255.255"),
				ServerPort: 5065,
				ServerKey:  7,
			}),
			wantAddr: "127.0.0.1",
			wantPort: 5065,
			wantKey:  7,
		},
		{
			name:    "short datagram",
			data:    []byte{0x52, 0x43, 0x00},
			wantErr: protocol.ErrTooShort,
		},
		{
			name:    "wrong magic",
			data:    make([]byte, 16),
			wantErr: protocol.ErrBadMagic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestListener(t)
			sendDatagram(t, l.LocalAddr(), tt.data)

			ann, err := receiveWithin(t, l, 2*time.Second)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Receive() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Receive() error = %v", err)
			}
			if ann.ServerAddr.String() != tt.wantAddr {
				t.Errorf("ServerAddr = %s, want %s", ann.ServerAddr, tt.wantAddr)
			}
			if ann.ServerPort != tt.wantPort {
				t.Errorf("ServerPort = %d, want %d", ann.ServerPort, tt.wantPort)
			}
			if ann.ServerKey != tt.wantKey {
				t.Errorf("ServerKey = 0x%08x, want 0x%08x", ann.ServerKey, tt.wantKey)
			}
		})
	}
}

func TestListener_Receive_NoDatagram(t *testing.T) {
	l := newTestListener(t)

	start := time.Now()
	_, err := l.Receive(context.Background())
	if !errors.Is(err, ErrNoAnnouncement) {
		t.Fatalf("Receive() error = %v, want ErrNoAnnouncement", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Receive() blocked for %v, poll interval is %v", elapsed, l.PollInterval)
	}
}

func TestListener_Receive_Cancelled(t *testing.T) {
	l := newTestListener(t)
	l.PollInterval = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	if _, err := l.Receive(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Receive() error = %v, want context.Canceled", err)
	}
}

func TestListener_Receive_Closed(t *testing.T) {
	l := newTestListener(t)
	_ = l.Close()

	if _, err := l.Receive(context.Background()); !errors.Is(err, net.ErrClosed) {
		t.Errorf("Receive() error = %v, want net.ErrClosed", err)
	}

	err := l.Watch(context.Background(), func(*Server) {})
	if !errors.Is(err, net.ErrClosed) {
		t.Errorf("Watch() error = %v, want net.ErrClosed", err)
	}
}

func TestListener_Scan(t *testing.T) {
	l := newTestListener(t)

	a := protocol.Announcement{ServerAddr: netip.MustParseAddr("192.0.2.1"), ServerPort: 5064, ServerKey: 1}
	b := protocol.Announcement{ServerAddr: netip.MustParseAddr("192.0.2.2"), ServerPort: 5064, ServerKey: 2}

	conn, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(l.LocalAddr()))
	if err != nil {
		t.Fatalf("DialUDP() error = %v", err)
	}
	defer conn.Close()

	first := protocol.AppendAnnouncement(nil, a)
	second := protocol.AppendAnnouncement(nil, b)
	a.ServerKey = 3
	repeat := protocol.AppendAnnouncement(nil, a)

	go func() {
		time.Sleep(20 * time.Millisecond)
		for _, data := range [][]byte{first, []byte("garbage"), second, repeat} {
			_, _ = conn.Write(data)
		}
	}()

	servers, err := l.Scan(context.Background(), 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("Scan() found %d servers, want 2: %v", len(servers), servers)
	}
	if servers[0].Endpoint().String() != "192.0.2.1:5064" || servers[1].Endpoint().String() != "192.0.2.2:5064" {
		t.Errorf("Scan() order = %s, %s", servers[0].Endpoint(), servers[1].Endpoint())
	}
	if servers[0].Count != 2 {
		t.Errorf("servers[0].Count = %d, want 2", servers[0].Count)
	}
	if servers[0].Announcement.ServerKey != 3 {
		t.Errorf("servers[0] key = %d, want latest key 3", servers[0].Announcement.ServerKey)
	}
}

func TestListen_SharedPort(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("SO_REUSEPORT sharing only checked on linux and darwin")
	}

	first := newTestListener(t)
	port := int(first.LocalAddr().Port())

	second, err := Listen(context.Background(), "127.0.0.1", port)
	if err != nil {
		t.Fatalf("second Listen() on port %d error = %v", port, err)
	}
	_ = second.Close()
}

func TestListen_BindFailure(t *testing.T) {
	if _, err := Listen(context.Background(), "127.0.0.1", 70000); err == nil {
		t.Error("Listen() with an invalid port should fail")
	}
}

func TestServer_String(t *testing.T) {
	srv := &Server{
		Announcement: protocol.Announcement{ServerAddr: netip.MustParseAddr("192.0.2.1"), ServerPort: 5064, ServerKey: 0xDEADBEEF},
		Source:       netip.MustParseAddrPort("192.0.2.1:40000"),
	}

	want := "RecSync server 192.0.2.1:5064 (key 0xdeadbeef) via 192.0.2.1:40000"
	if got := srv.String(); got != want {
		t.Errorf("Server.String() = %v, want %v", got, want)
	}
}
