// Package pipeline provides the channel-based processing framework that
// carries text deltas, sentence chunks and synthesized audio between
// elements. Elements are linked output to input; messages flow in strict
// order and every element owns its own state.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// TextData is a text payload: a generation delta on the way in, a speakable
// sentence chunk on the way out of the segmenter.
type TextData struct {
	Data      []byte
	TextType  TextMediaType
	Timestamp time.Time
}

// AudioData is a synthesized audio payload handed downstream by a TTS sink.
type AudioData struct {
	Data       []byte
	SampleRate int
	Channels   int
	MediaType  AudioMediaType
	Encoding   string
	Timestamp  time.Time
}

// CommandType enumerates in-band control commands.
type CommandType int

const (
	// CommandFlush marks normal end of generation: buffered text is
	// emitted, even below the minimum chunk length.
	CommandFlush CommandType = iota
	// CommandAbort cancels mid-utterance: buffered, unspoken text is
	// discarded.
	CommandAbort
)

// String returns the string representation of the command.
func (c CommandType) String() string {
	switch c {
	case CommandFlush:
		return "flush"
	case CommandAbort:
		return "abort"
	default:
		return "unknown"
	}
}

type PipelineMessageType int

const (
	MsgTypeText PipelineMessageType = iota
	MsgTypeAudio
	MsgTypeCommand
)

type PipelineMessage struct {
	Type PipelineMessageType

	// SessionID identifies the conversation this message belongs to.
	SessionID string
	// Timestamp is when the message was created.
	Timestamp time.Time

	// TextData carries text payloads (MsgTypeText).
	TextData *TextData

	// AudioData carries synthesized audio (MsgTypeAudio).
	AudioData *AudioData

	// Command carries the control command (MsgTypeCommand).
	Command CommandType

	// Metadata carries element-specific extras, e.g. chunk sequencing.
	Metadata interface{}
}

func (p *PipelineMessage) String() string {
	return fmt.Sprintf("PipelineMessage{Type: %d, SessionID: %s, Timestamp: %s}", p.Type, p.SessionID, p.Timestamp)
}

// NewTextMessage builds a text message with the current timestamp.
func NewTextMessage(sessionID string, textType TextMediaType, data []byte) *PipelineMessage {
	now := time.Now()
	return &PipelineMessage{
		Type:      MsgTypeText,
		SessionID: sessionID,
		Timestamp: now,
		TextData:  &TextData{Data: data, TextType: textType, Timestamp: now},
	}
}

// NewCommandMessage builds a command message with the current timestamp.
func NewCommandMessage(sessionID string, cmd CommandType) *PipelineMessage {
	return &PipelineMessage{
		Type:      MsgTypeCommand,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Command:   cmd,
	}
}

type Pipeline struct {
	sync.Mutex
	name     string
	bus      Bus
	elements []Element
}

func NewPipeline(name string) *Pipeline {
	return &Pipeline{
		name:     name,
		bus:      NewEventBus(),
		elements: []Element{},
	}
}

func (p *Pipeline) AddElement(element Element) {
	p.Lock()
	defer p.Unlock()
	element.SetBus(p.bus)
	p.elements = append(p.elements, element)
}

func (p *Pipeline) AddElements(elements []Element) {
	p.Lock()
	defer p.Unlock()
	for _, element := range elements {
		element.SetBus(p.bus)
	}
	p.elements = append(p.elements, elements...)
}

// Link forwards a.Out() into b.In() until a's output closes or unlink is
// called. Returns the unlink function.
func (p *Pipeline) Link(a, b Element) func() {
	done := make(chan struct{})
	go func() {
		for {
			select {
			case msg, ok := <-a.Out():
				if !ok {
					return
				}
				b.In() <- msg
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (p *Pipeline) Bus() Bus {
	return p.bus
}

func (p *Pipeline) Push(msg *PipelineMessage) {
	if len(p.elements) == 0 {
		return
	}
	select {
	case p.elements[0].In() <- msg:
	default:
		log.Printf("pipeline %s: input channel is full, dropping %v", p.name, msg)
	}
}

// Pull reads the next message from the last element.
func (p *Pipeline) Pull() *PipelineMessage {
	if len(p.elements) == 0 {
		return nil
	}
	return <-p.elements[len(p.elements)-1].Out()
}

func (p *Pipeline) Start(ctx context.Context) error {
	for _, e := range p.elements {
		if err := e.Start(ctx); err != nil {
			return err
		}
	}
	return p.bus.Start(ctx)
}

func (p *Pipeline) Stop() error {
	p.Lock()
	defer p.Unlock()
	// Stop in reverse so downstream elements drain first.
	for i := len(p.elements) - 1; i >= 0; i-- {
		if err := p.elements[i].Stop(); err != nil {
			return err
		}
	}
	p.bus.Stop()
	return nil
}
