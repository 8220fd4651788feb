package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkedStream returns its input in fixed-size reads and records writes
type chunkedStream struct {
	data   []byte
	chunk  int
	closed bool
	out    bytes.Buffer
}

func (s *chunkedStream) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := s.chunk
	if n > len(s.data) {
		n = len(s.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, s.data[:n])
	s.data = s.data[n:]
	return n, nil
}

func (s *chunkedStream) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s *chunkedStream) Close() error {
	s.closed = true
	return nil
}

func encodeAll(t *testing.T, msgs ...Message) []byte {
	t.Helper()
	var buf []byte
	for _, m := range msgs {
		var err error
		buf, err = AppendMessage(buf, m)
		if err != nil {
			t.Fatalf("AppendMessage(%s) error = %v", m, err)
		}
	}
	return buf
}

func TestConn_ReadMessage_SplitReads(t *testing.T) {
	msgs := []Message{
		ServerGreet{},
		Ping{Nonce: 1},
		AddRecord{RecID: 100, Kind: KindRecord, Type: "ai", Name: "DEV:AI:1"},
		AddInfo{RecID: 100, Key: "EGU", Value: "mA"},
		Ping{Nonce: 2},
	}

	for _, chunk := range []int{1, 3, 7, 8, 64, 4096} {
		stream := &chunkedStream{data: encodeAll(t, msgs...), chunk: chunk}
		conn := NewConn(stream)

		for i, want := range msgs {
			got, err := conn.ReadMessage()
			if err != nil {
				t.Fatalf("chunk %d: ReadMessage() #%d error = %v", chunk, i, err)
			}
			if got != want {
				t.Errorf("chunk %d: ReadMessage() #%d = %v, want %v", chunk, i, got, want)
			}
		}

		if _, err := conn.ReadMessage(); !errors.Is(err, io.EOF) {
			t.Errorf("chunk %d: ReadMessage() at end error = %v, want io.EOF", chunk, err)
		}
	}
}

func TestConn_ReadMessage_LargeFrame(t *testing.T) {
	want := AddRecord{RecID: 5, Type: strings.Repeat("t", MaxShortString), Name: strings.Repeat("n", MaxLongString)}
	stream := &chunkedStream{data: encodeAll(t, want), chunk: 1500}

	got, err := NewConn(stream).ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if got != want {
		t.Errorf("ReadMessage() returned a different record (name len %d)", len(got.(AddRecord).Name))
	}
}

func TestConn_ReadMessage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "closed on frame boundary",
			data:    nil,
			wantErr: io.EOF,
		},
		{
			name:    "closed mid header",
			data:    []byte{0x52, 0x43, 0x80},
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "closed mid body",
			data:    []byte{0x52, 0x43, 0x80, 0x02, 0, 0, 0, 4, 0x00},
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "bad magic",
			data:    []byte{'X', 'X', 0x80, 0x02, 0, 0, 0, 4, 0, 0, 0, 1},
			wantErr: ErrBadMagic,
		},
		{
			name:    "unknown type",
			data:    []byte{0x52, 0x43, 0x00, 0x99, 0, 0, 0, 0},
			wantErr: ErrUnknownMessageType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := NewConn(&chunkedStream{data: tt.data, chunk: 2})

			if _, err := conn.ReadMessage(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadMessage() error = %v, want %v", err, tt.wantErr)
			}
			// Errors are sticky
			if _, err := conn.ReadMessage(); !errors.Is(err, tt.wantErr) {
				t.Errorf("second ReadMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConn_ReadMessage_PoisonedAfterBadFrame(t *testing.T) {
	data := []byte{'X', 'X', 0x80, 0x01, 0, 0, 0, 0}
	data = append(data, encodeAll(t, Ping{Nonce: 3})...)
	conn := NewConn(&chunkedStream{data: data, chunk: len(data)})

	if _, err := conn.ReadMessage(); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("ReadMessage() error = %v, want ErrBadMagic", err)
	}
	if msg, err := conn.ReadMessage(); msg != nil || !errors.Is(err, ErrBadMagic) {
		t.Errorf("ReadMessage() after bad frame = (%v, %v), want (nil, ErrBadMagic)", msg, err)
	}
}

func TestConn_WriteMessage(t *testing.T) {
	stream := &chunkedStream{}
	conn := NewConn(stream)

	if err := conn.WriteMessage(ClientGreet{ServerKey: 0xDEADBEEF}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	if err := conn.WriteMessage(UploadDone{}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	want := encodeAll(t, ClientGreet{ServerKey: 0xDEADBEEF}, UploadDone{})
	if !bytes.Equal(stream.out.Bytes(), want) {
		t.Errorf("wrote % x, want % x", stream.out.Bytes(), want)
	}

	err := conn.WriteMessage(AddInfo{Key: strings.Repeat("k", 300)})
	if !errors.Is(err, ErrStringTooLong) {
		t.Errorf("WriteMessage(oversized) error = %v, want ErrStringTooLong", err)
	}
	if !bytes.Equal(stream.out.Bytes(), want) {
		t.Error("WriteMessage(oversized) wrote bytes to the stream")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !stream.closed {
		t.Error("Close() did not close the underlying stream")
	}
}
