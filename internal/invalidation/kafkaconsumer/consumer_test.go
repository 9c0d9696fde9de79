package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/mateonav/geolayers/internal/invalidation"
	mylog "github.com/mateonav/geolayers/internal/logger"
)

type fakeMemo struct {
	mu        sync.Mutex
	evicted   []string
	failFirst bool
}

func (f *fakeMemo) InvalidateDataset(_ context.Context, dataset string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFirst {
		f.failFirst = false
		return 0, errors.New("boom")
	}
	f.evicted = append(f.evicted, dataset)
	return 1, nil
}

func (f *fakeMemo) datasets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.evicted))
	copy(out, f.evicted)
	return out
}

func newTestConsumer(memo Invalidator) *Consumer {
	c := New(FromEnv(), slog.Default(), memo)
	// ProcessOne logs through zlog, which Start normally initializes.
	zl := mylog.Build(mylog.Config{Level: "error", Component: "kafka_consumer"}, io.Discard)
	c.zlog = &zl
	return c
}

func eventMsg(t *testing.T, ev invalidation.Event, offset int64) *sarama.ConsumerMessage {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return &sarama.ConsumerMessage{Topic: "dataset-invalidation", Value: b, Offset: offset}
}

func TestProcessOne_EvictsDataset(t *testing.T) {
	memo := &fakeMemo{}
	c := newTestConsumer(memo)

	ev := invalidation.Event{Version: 1, Op: "update", Dataset: "stores.csv", TS: time.Now().UTC()}
	if err := c.ProcessOne(context.Background(), eventMsg(t, ev, 1)); err != nil {
		t.Fatalf("ProcessOne: %v", err)
	}
	got := memo.datasets()
	if len(got) != 1 || got[0] != "stores.csv" {
		t.Fatalf("evicted datasets = %v, want [stores.csv]", got)
	}
}

func TestProcessOne_DecodeErrorIsReturned(t *testing.T) {
	memo := &fakeMemo{}
	c := newTestConsumer(memo)

	msg := &sarama.ConsumerMessage{Topic: "dataset-invalidation", Value: []byte("{not json")}
	if err := c.ProcessOne(context.Background(), msg); err == nil {
		t.Fatalf("expected error for undecodable message")
	}
	if len(memo.datasets()) != 0 {
		t.Fatalf("eviction ran on undecodable message")
	}
}

func TestProcessOne_InvalidEventIsSkippedWithoutError(t *testing.T) {
	memo := &fakeMemo{}
	c := newTestConsumer(memo)

	ev := invalidation.Event{Version: 1, Op: "truncate", Dataset: "stores.csv", TS: time.Now().UTC()}
	if err := c.ProcessOne(context.Background(), eventMsg(t, ev, 2)); err != nil {
		t.Fatalf("invalid event must be skipped, got: %v", err)
	}
	if len(memo.datasets()) != 0 {
		t.Fatalf("eviction ran on invalid event")
	}
}

func TestProcessOne_StaleContentVersionSkipped(t *testing.T) {
	memo := &fakeMemo{}
	c := newTestConsumer(memo)
	ctx := context.Background()

	fresh := invalidation.Event{Version: 1, Op: "update", Dataset: "stores.csv", TS: time.Now().UTC(), ContentVersion: 5}
	stale := invalidation.Event{Version: 1, Op: "update", Dataset: "stores.csv", TS: time.Now().UTC(), ContentVersion: 4}
	newer := invalidation.Event{Version: 1, Op: "update", Dataset: "stores.csv", TS: time.Now().UTC(), ContentVersion: 6}

	for i, ev := range []invalidation.Event{fresh, stale, newer} {
		if err := c.ProcessOne(ctx, eventMsg(t, ev, int64(i))); err != nil {
			t.Fatalf("ProcessOne %d: %v", i, err)
		}
	}
	if got := memo.datasets(); len(got) != 2 {
		t.Fatalf("evictions = %v, want exactly the fresh and newer events applied", got)
	}
}

func TestProcessOne_UnversionedEventsAlwaysApply(t *testing.T) {
	memo := &fakeMemo{}
	c := newTestConsumer(memo)
	ctx := context.Background()

	ev := invalidation.Event{Version: 1, Op: "update", Dataset: "stores.csv", TS: time.Now().UTC()}
	for i := 0; i < 3; i++ {
		if err := c.ProcessOne(ctx, eventMsg(t, ev, int64(i))); err != nil {
			t.Fatalf("ProcessOne %d: %v", i, err)
		}
	}
	if got := memo.datasets(); len(got) != 3 {
		t.Fatalf("evictions = %v, want all 3 applied", got)
	}
}

func TestProcessOne_StoreErrorPropagates(t *testing.T) {
	memo := &fakeMemo{failFirst: true}
	c := newTestConsumer(memo)
	ctx := context.Background()

	ev := invalidation.Event{Version: 1, Op: "delete", Dataset: "stores.csv", TS: time.Now().UTC()}
	if err := c.ProcessOne(ctx, eventMsg(t, ev, 1)); err == nil {
		t.Fatalf("expected store error to propagate")
	}
	// Retry after the transient failure succeeds.
	if err := c.ProcessOne(ctx, eventMsg(t, ev, 1)); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestReadiness_NotReadyBeforeStart(t *testing.T) {
	c := newTestConsumer(&fakeMemo{})
	if ready, _ := c.Readiness(); ready {
		t.Fatalf("consumer reported ready before starting")
	}
}
