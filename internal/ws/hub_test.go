package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.msgs...)
}

func TestHub_PublishReachesClients(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	conn := &fakeConn{}
	h.Register(conn)

	h.Publish("transaction_created", map[string]interface{}{"message": "hi"})

	deadline := time.Now().Add(2 * time.Second)
	for len(conn.received()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected a broadcast message")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var event map[string]interface{}
	if err := json.Unmarshal(conn.received()[0], &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event["type"] != "stock_update" || event["action"] != "transaction_created" || event["message"] != "hi" {
		t.Fatalf("unexpected event: %v", event)
	}
}

func TestHub_PublishDoesNotBlockWithoutRunner(t *testing.T) {
	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			h.Publish("product_updated", nil)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked with a full queue")
	}
}

func TestHub_UnregisterClosesConn(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Stop()

	conn := &fakeConn{}
	h.Register(conn)
	h.Unregister(conn)

	// Register is unbuffered, so a second round trip means Unregister was handled.
	other := &fakeConn{}
	h.Register(other)

	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	if !closed {
		t.Fatalf("expected connection to be closed")
	}
}

func TestHub_RegisterAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	conn := &fakeConn{}
	h.Register(conn)
	h.Stop()
	h.Stop()

	late := &fakeConn{}
	done := make(chan struct{})
	go func() {
		h.Unregister(conn)
		h.Register(late)
		h.Unregister(late)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Register/Unregister blocked after Stop")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		late.mu.Lock()
		closed := late.closed
		late.mu.Unlock()
		if closed {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected a connection registered after Stop to be closed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
