// Package elements provides pipeline processing elements.
//
// SegmenterElement turns streaming LLM output into speakable sentence
// chunks as early as possible, so TTS can start before generation finishes.
//
// Message flow:
//   - text/x-delta messages feed the session's sentence stream
//   - completed chunks leave as text/x-chunk messages, in input order
//   - CommandFlush emits the buffered remainder (end of generation)
//   - CommandAbort discards buffered text and clears queued chunks
//     (cancellation mid-utterance)
package elements

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentencekit/sentencekit/pkg/pipeline"
	"github.com/sentencekit/sentencekit/pkg/tokenizer"
)

// ChunkMetadata rides along with every emitted chunk message.
type ChunkMetadata struct {
	// Seq is the zero-based chunk index within the session.
	Seq int
	// PreviousText is the trailing window of text spoken before this
	// chunk. Synthesis backends may use it for prosody; it is never
	// spoken again.
	PreviousText string
}

type segmenterSession struct {
	stream *tokenizer.BufferedSentenceStream
	seq    int
	window string
}

// Make sure SegmenterElement implements pipeline.Element
var _ pipeline.Element = (*SegmenterElement)(nil)

// SegmenterElement wraps one BufferedSentenceStream per session. The output
// queue is a ClearableChan so an abort can drop chunks that were emitted but
// not yet consumed downstream.
type SegmenterElement struct {
	*pipeline.BaseElement

	tokenizer *tokenizer.BoundaryTokenizer
	out       *pipeline.ClearableChan

	mu       sync.Mutex
	sessions map[string]*segmenterSession

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSegmenterElement creates a segmenter element around a validated
// tokenizer.
func NewSegmenterElement(tok *tokenizer.BoundaryTokenizer) *SegmenterElement {
	e := &SegmenterElement{
		BaseElement: pipeline.NewBaseElement("segmenter-element", 100),
		tokenizer:   tok,
		out:         pipeline.NewClearableChan(100),
		sessions:    make(map[string]*segmenterSession),
	}
	e.registerProperties()
	return e
}

func (e *SegmenterElement) registerProperties() {
	cfg := e.tokenizer.Config()
	e.RegisterProperty(pipeline.PropertyDesc{
		Name:     "language",
		Type:     reflect.TypeOf(""),
		Writable: false,
		Readable: true,
		Default:  cfg.Language,
	})
	e.RegisterProperty(pipeline.PropertyDesc{
		Name:     "min_sentence_len",
		Type:     reflect.TypeOf(0),
		Writable: false,
		Readable: true,
		Default:  cfg.MinSentenceLen,
	})
	e.RegisterProperty(pipeline.PropertyDesc{
		Name:     "context_len",
		Type:     reflect.TypeOf(0),
		Writable: false,
		Readable: true,
		Default:  cfg.ContextLen,
	})
}

// Out returns the clearable chunk queue.
func (e *SegmenterElement) Out() <-chan *pipeline.PipelineMessage {
	return e.out.Chan()
}

func (e *SegmenterElement) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.processMessages(ctx)
	}()

	log.Printf("[segmenter] element started (language=%s, min_sentence_len=%d)",
		e.tokenizer.Config().Language, e.tokenizer.Config().MinSentenceLen)
	return nil
}

func (e *SegmenterElement) Stop() error {
	if e.cancel != nil {
		e.cancel()
		e.wg.Wait()
		e.cancel = nil
	}
	return nil
}

func (e *SegmenterElement) processMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-e.BaseElement.InChan:
			if msg == nil {
				return
			}
			e.handleMessage(msg)
		}
	}
}

func (e *SegmenterElement) handleMessage(msg *pipeline.PipelineMessage) {
	if msg.SessionID == "" {
		msg.SessionID = uuid.NewString()
	}

	switch {
	case msg.Type == pipeline.MsgTypeText && msg.TextData != nil:
		e.handleDelta(msg.SessionID, msg.TextData.Data)
	case msg.Type == pipeline.MsgTypeCommand:
		e.handleCommand(msg)
	}
}

func (e *SegmenterElement) handleDelta(sessionID string, delta []byte) {
	sess, err := e.session(sessionID)
	if err != nil {
		e.publishError(sessionID, err)
		return
	}

	chunks, err := sess.stream.Feed(delta)
	if err != nil {
		e.publishError(sessionID, fmt.Errorf("segmenter feed: %w", err))
		return
	}
	for _, chunk := range chunks {
		e.emitChunk(sessionID, sess, chunk)
	}
}

func (e *SegmenterElement) handleCommand(msg *pipeline.PipelineMessage) {
	sessionID := msg.SessionID

	e.mu.Lock()
	sess := e.sessions[sessionID]
	delete(e.sessions, sessionID)
	e.mu.Unlock()

	switch msg.Command {
	case pipeline.CommandFlush:
		if sess != nil {
			final, ok, err := sess.stream.Close()
			if err != nil {
				e.publishError(sessionID, fmt.Errorf("segmenter close: %w", err))
			} else if ok {
				e.emitChunk(sessionID, sess, final)
			}
		}
		e.publishEvent(pipeline.EventStreamFlushed, sessionID, nil)
	case pipeline.CommandAbort:
		if sess != nil {
			if err := sess.stream.Abort(); err != nil {
				e.publishError(sessionID, fmt.Errorf("segmenter abort: %w", err))
			}
		}
		// Drop chunks that are queued but not yet consumed: partial
		// speech after a cancellation sounds broken.
		e.out.Clear()
		e.publishEvent(pipeline.EventStreamAborted, sessionID, nil)
	}

	// Forward the command so downstream elements can finish or cancel too.
	e.out.Send(msg)
}

// session returns the live stream for a session, creating one on first use.
func (e *SegmenterElement) session(sessionID string) (*segmenterSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess, ok := e.sessions[sessionID]; ok {
		return sess, nil
	}
	stream, err := e.tokenizer.Stream()
	if err != nil {
		return nil, err
	}
	sess := &segmenterSession{stream: stream}
	e.sessions[sessionID] = sess
	return sess, nil
}

func (e *SegmenterElement) emitChunk(sessionID string, sess *segmenterSession, chunk string) {
	meta := ChunkMetadata{Seq: sess.seq, PreviousText: sess.window}
	sess.seq++
	sess.window = tailRunes(join(sess.window, chunk), e.tokenizer.Config().ContextLen)

	out := pipeline.NewTextMessage(sessionID, pipeline.TextMediaTypeChunk, []byte(chunk))
	out.Metadata = meta
	e.out.Send(out)

	e.publishEvent(pipeline.EventChunkEmitted, sessionID, chunk)
}

func (e *SegmenterElement) publishEvent(eventType pipeline.EventType, sessionID string, payload interface{}) {
	if bus := e.Bus(); bus != nil {
		bus.Publish(pipeline.Event{
			Type:      eventType,
			SessionID: sessionID,
			Timestamp: time.Now(),
			Payload:   payload,
		})
	}
}

func (e *SegmenterElement) publishError(sessionID string, err error) {
	log.Printf("[segmenter] session %s: %v", sessionID, err)
	e.publishEvent(pipeline.EventError, sessionID, err)
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

// tailRunes keeps the last n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
