package chat

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/filoshare/backend/internal/models"
	"github.com/gofiber/contrib/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessageStore struct {
	mu    sync.Mutex
	saved []models.Message
	err   error
}

func (s *fakeMessageStore) SaveMessage(roomID, senderID uint, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	msg := models.Message{
		ID:        uint(len(s.saved) + 1),
		RoomID:    roomID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.saved = append(s.saved, msg)
	return &msg, nil
}

// fakeConn scripts inbound frames and records what the hub writes back
type fakeConn struct {
	inbound chan []byte
	writes  chan []byte
	once    sync.Once
	done    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 16),
		writes:  make(chan []byte, 16),
		done:    make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case p, ok := <-c.inbound:
		if !ok {
			return 0, nil, io.EOF
		}
		return websocket.TextMessage, p, nil
	case <-c.done:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.writes <- data
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// recvFrame pops the next queued outbound frame of a client
func recvFrame(t *testing.T, c *Client) frame {
	t.Helper()
	select {
	case payload := <-c.send:
		var f frame
		require.NoError(t, json.Unmarshal(payload, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame queued")
		return frame{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected frame: %s", payload)
	default:
	}
}

func TestBroadcastReachesRoomIncludingSender(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store)

	sender := newClient(hub, newFakeConn(), 1)
	peer := newClient(hub, newFakeConn(), 2)
	outsider := newClient(hub, newFakeConn(), 3)

	hub.join(sender, 5)
	hub.join(peer, 5)
	hub.join(outsider, 9)

	hub.sendMessage(sender, 5, "hello")

	for _, c := range []*Client{sender, peer} {
		f := recvFrame(t, c)
		assert.Equal(t, "receive_message", f.Event)

		var msg models.Message
		require.NoError(t, json.Unmarshal(f.Data, &msg))
		assert.Equal(t, uint(5), msg.RoomID)
		assert.Equal(t, uint(1), msg.SenderID)
		assert.Equal(t, "hello", msg.Text)
	}
	assertNoFrame(t, outsider)

	require.Len(t, store.saved, 1)
}

func TestStoreFailureOnlySenderHears(t *testing.T) {
	store := &fakeMessageStore{err: errors.New("db down")}
	hub := NewHub(store)

	sender := newClient(hub, newFakeConn(), 1)
	peer := newClient(hub, newFakeConn(), 2)
	hub.join(sender, 5)
	hub.join(peer, 5)

	hub.sendMessage(sender, 5, "hello")

	f := recvFrame(t, sender)
	assert.Equal(t, "error_message", f.Event)
	assertNoFrame(t, peer)
}

func TestDisconnectClearsMemberships(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store)

	gone := newClient(hub, newFakeConn(), 1)
	stays := newClient(hub, newFakeConn(), 2)
	hub.join(gone, 5)
	hub.join(gone, 6)
	hub.join(stays, 5)

	hub.disconnect(gone)

	hub.mu.RLock()
	_, room6Alive := hub.rooms[6]
	room5Size := len(hub.rooms[5])
	hub.mu.RUnlock()
	assert.False(t, room6Alive, "empty room should be dropped")
	assert.Equal(t, 1, room5Size)

	// Enqueueing to a closed client is a no-op, not a panic
	hub.broadcast(5, []byte(`{"event":"receive_message"}`))
	gone.enqueue([]byte("late"))
	recvFrame(t, stays)

	// Disconnecting twice is harmless
	hub.disconnect(gone)
}

func TestServeProtocol(t *testing.T) {
	store := &fakeMessageStore{}
	hub := NewHub(store)
	conn := newFakeConn()

	done := make(chan struct{})
	go func() {
		hub.Serve(conn, 7)
		close(done)
	}()

	// Room ids arrive as JSON strings from the frontend
	conn.inbound <- []byte(`{"event":"join_room","data":"12"}`)
	conn.inbound <- []byte(`{"event":"send_message","data":{"roomId":"12","text":"hi there"}}`)

	var f frame
	select {
	case payload := <-conn.writes:
		require.NoError(t, json.Unmarshal(payload, &f))
	case <-time.After(time.Second):
		t.Fatal("no frame written")
	}
	assert.Equal(t, "receive_message", f.Event)

	var msg models.Message
	require.NoError(t, json.Unmarshal(f.Data, &msg))
	assert.Equal(t, uint(12), msg.RoomID)
	assert.Equal(t, uint(7), msg.SenderID)
	assert.Equal(t, "hi there", msg.Text)

	// Malformed and unknown frames come back as error_message
	for _, bad := range []string{
		`not json`,
		`{"event":"send_message","data":{"roomId":"12"}}`,
		`{"event":"join_room","data":""}`,
		`{"event":"presence","data":{}}`,
	} {
		conn.inbound <- []byte(bad)
		select {
		case payload := <-conn.writes:
			var ef frame
			require.NoError(t, json.Unmarshal(payload, &ef))
			assert.Equal(t, "error_message", ef.Event, "frame %q", bad)
		case <-time.After(time.Second):
			t.Fatalf("no error frame for %q", bad)
		}
	}

	close(conn.inbound)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("serve did not return after transport closed")
	}
}

func TestParseRoomID(t *testing.T) {
	tests := []struct {
		raw    string
		want   uint
		wantOK bool
	}{
		{`"42"`, 42, true},
		{`42`, 42, true},
		{`"0"`, 0, true},
		{`0`, 0, false},
		{`""`, 0, false},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`{}`, 0, false},
		{``, 0, false},
	}

	for _, tt := range tests {
		got, ok := parseRoomID(json.RawMessage(tt.raw))
		assert.Equal(t, tt.wantOK, ok, "raw %q", tt.raw)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "raw %q", tt.raw)
		}
	}
}
