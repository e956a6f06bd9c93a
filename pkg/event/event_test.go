package event_test

import (
	"sync"
	"testing"

	"github.com/shashiranjanraj/campusmart/pkg/event"
)

func TestFire(t *testing.T) {
	defer event.Flush()

	var got []interface{}
	event.Listen("order.created", func(payload interface{}) { got = append(got, payload) })
	event.Listen("order.created", func(payload interface{}) { got = append(got, payload) })

	event.Fire("order.created", 42)
	if len(got) != 2 || got[0] != 42 {
		t.Fatalf("expected both listeners to run, got %v", got)
	}

	event.Fire("order.delivered", "ignored")
	if len(got) != 2 {
		t.Fatal("unrelated event reached listeners")
	}
}

func TestFireAsync(t *testing.T) {
	defer event.Flush()

	var wg sync.WaitGroup
	wg.Add(2)
	event.Listen("cache.warm", func(interface{}) { wg.Done() })
	event.Listen("cache.warm", func(interface{}) { wg.Done() })

	event.FireAsync("cache.warm", nil)
	wg.Wait()
}

func TestFlush(t *testing.T) {
	fired := false
	event.Listen("order.created", func(interface{}) { fired = true })
	event.Flush()

	event.Fire("order.created", nil)
	if fired {
		t.Fatal("listener survived Flush")
	}
}
