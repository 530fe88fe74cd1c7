package pipeline

import (
	"log"
	"sync"
)

// ClearableChan is a buffered message channel whose backlog can be dropped on
// demand. The abort path uses Clear to throw away queued, not-yet-spoken
// chunks without tearing the channel down.
type ClearableChan struct {
	mu sync.Mutex
	ch chan *PipelineMessage
}

// NewClearableChan creates a ClearableChan with the given buffer size.
func NewClearableChan(size int) *ClearableChan {
	return &ClearableChan{
		ch: make(chan *PipelineMessage, size),
	}
}

// Send enqueues a message without blocking; a full channel drops the message.
func (cc *ClearableChan) Send(val *PipelineMessage) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	select {
	case cc.ch <- val:
	default:
		log.Printf("channel is full, dropping message: %v", val)
	}
}

// Recv receives a message, blocking until one is available.
func (cc *ClearableChan) Recv() *PipelineMessage {
	return <-cc.ch
}

func (cc *ClearableChan) Chan() <-chan *PipelineMessage {
	return cc.ch
}

// Clear drains and discards everything currently queued.
func (cc *ClearableChan) Clear() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for {
		select {
		case <-cc.ch:
		default:
			return
		}
	}
}
