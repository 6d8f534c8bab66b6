package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketdesk/internal/models"
)

func testTick(symbol string, ltp float64) models.Tick {
	return models.Tick{
		Symbol:    symbol,
		LTP:       ltp,
		Open:      ltp * 0.99,
		High:      ltp * 1.01,
		Low:       ltp * 0.98,
		Close:     ltp * 0.995,
		Volume:    10000,
		Timestamp: time.Now(),
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	subA := hub.Subscribe("NVAX")
	subB := hub.Subscribe("NVAX")
	other := hub.Subscribe("FLUX")

	hub.Start(ctx)
	defer hub.Stop()

	hub.Publish(testTick("NVAX", 185))

	for _, sub := range []<-chan models.Tick{subA, subB} {
		select {
		case tick := <-sub:
			if tick.Symbol != "NVAX" || tick.LTP != 185 {
				t.Errorf("unexpected tick %+v", tick)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("subscriber did not receive tick")
		}
	}

	select {
	case tick := <-other:
		t.Errorf("FLUX subscriber received %+v", tick)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSlowSubscriberDropsTicks(t *testing.T) {
	hub := NewHubWithConfig(HubConfig{BufferSize: 100, SubscriberBufferSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never read from the subscription, so the second tick must be dropped.
	hub.Subscribe("NVAX")

	hub.Start(ctx)
	defer hub.Stop()

	hub.Publish(testTick("NVAX", 185))
	hub.Publish(testTick("NVAX", 186))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m := hub.Metrics()
		if m.TicksReceived == 2 && m.TicksDropped >= 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("metrics = %+v, want 2 received and at least 1 dropped", hub.Metrics())
}

func TestHubConsumerFiltering(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []string
	consumer := NewConsumerFunc([]string{"NVAX"}, func(tick models.Tick) {
		mu.Lock()
		seen = append(seen, tick.Symbol)
		mu.Unlock()
	})
	hub.RegisterConsumer(consumer)

	hub.Start(ctx)
	defer hub.Stop()

	hub.Publish(testTick("FLUX", 310))
	hub.Publish(testTick("NVAX", 185))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "NVAX" {
		t.Errorf("consumer saw %v, want [NVAX]", seen)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("NVAX")
	if hub.SubscriberCount("NVAX") != 1 {
		t.Fatalf("subscriber count = %d, want 1", hub.SubscriberCount("NVAX"))
	}

	hub.Unsubscribe("NVAX", sub)
	if hub.SubscriberCount("NVAX") != 0 {
		t.Errorf("subscriber count after unsubscribe = %d, want 0", hub.SubscriberCount("NVAX"))
	}
	if _, ok := <-sub; ok {
		t.Error("unsubscribed channel not closed")
	}
}

func TestHubStopDuringPublishDoesNotPanic(t *testing.T) {
	hub := NewHubWithConfig(HubConfig{BufferSize: 1000, SubscriberBufferSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never drained, so broadcasts hit the non-blocking send path while
	// Stop races to close the channel.
	hub.Subscribe("NVAX")
	hub.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			hub.Publish(testTick("NVAX", 185+float64(i)*0.01))
		}
	}()

	time.Sleep(time.Millisecond)
	hub.Stop()
	wg.Wait()

	if hub.IsStarted() {
		t.Error("hub still started after Stop")
	}
}

func TestHubStopClosesSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := hub.Subscribe("NVAX")
	hub.Start(ctx)
	if !hub.IsStarted() {
		t.Fatal("hub not started")
	}

	hub.Stop()
	if hub.IsStarted() {
		t.Error("hub still started after Stop")
	}

	select {
	case _, ok := <-sub:
		if ok {
			t.Error("subscriber channel delivered after Stop")
		}
	case <-time.After(time.Second):
		t.Error("subscriber channel not closed after Stop")
	}
}
