package kafkaconsumer

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
)

type messageProcessor func(context.Context, *sarama.ConsumerMessage) error

type groupHandler struct {
	process messageProcessor

	mu         sync.Mutex
	ready      bool
	partitions []int32
}

func (h *groupHandler) Setup(s sarama.ConsumerGroupSession) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = true
	h.partitions = h.partitions[:0]
	for _, parts := range s.Claims() {
		h.partitions = append(h.partitions, parts...)
	}
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = false
	return nil
}

func (h *groupHandler) state() (bool, []int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	parts := make([]int32, len(h.partitions))
	copy(parts, h.partitions)
	return h.ready, parts
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("claim context done: %w", ctx.Err())
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.process(ctx, msg); err != nil {
				return fmt.Errorf("process failed (topic=%s, part=%d, off=%d): %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
		}
	}
}
