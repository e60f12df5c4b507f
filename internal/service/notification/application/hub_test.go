// internal/service/notification/application/hub_test.go
package application

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubBroadcastsPerSKU(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	subA := &Subscriber{SKU: "sku-a", Send: make(chan []byte, 1)}
	subB := &Subscriber{SKU: "sku-b", Send: make(chan []byte, 1)}
	hub.Register(subA)
	hub.Register(subB)

	hub.Broadcast("sku-a", []byte("blocked"))

	if got := string(recv(t, subA.Send)); got != "blocked" {
		t.Errorf("subA got %q, want blocked", got)
	}
	select {
	case payload := <-subB.Send:
		t.Errorf("subB got %q, want nothing", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	sub := &Subscriber{SKU: "sku-a", Send: make(chan []byte, 1)}
	hub.Register(sub)
	hub.Unregister(sub)

	select {
	case _, ok := <-sub.Send:
		if ok {
			t.Error("expected closed channel, got message")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed after unregister")
	}
}

func TestHubBroadcastToManySubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	subs := make([]*Subscriber, 5)
	for i := range subs {
		subs[i] = &Subscriber{SKU: "sku-a", Send: make(chan []byte, 1)}
		hub.Register(subs[i])
	}
	hub.Broadcast("sku-a", []byte("released"))

	for i, sub := range subs {
		if got := string(recv(t, sub.Send)); got != "released" {
			t.Errorf("sub %d got %q, want released", i, got)
		}
	}
}
