package elements

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/sentencekit/sentencekit/pkg/pipeline"
	"github.com/sentencekit/sentencekit/pkg/tts"
)

// Make sure TTSSinkElement implements pipeline.Element
var _ pipeline.Element = (*TTSSinkElement)(nil)

// TTSSinkElement hands finished sentence chunks to a synthesis provider,
// strictly in order, one call at a time, and forwards the audio downstream.
// It never retries: re-sending a chunk would duplicate speech.
type TTSSinkElement struct {
	*pipeline.BaseElement

	provider tts.TTSProvider
	voice    string
	language string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTTSSinkElement creates a sink around the given provider.
func NewTTSSinkElement(provider tts.TTSProvider) *TTSSinkElement {
	e := &TTSSinkElement{
		BaseElement: pipeline.NewBaseElement(fmt.Sprintf("%s-tts-sink", provider.Name()), 100),
		provider:    provider,
		language:    "en-US",
	}

	e.RegisterProperty(pipeline.PropertyDesc{
		Name:     "voice",
		Type:     reflect.TypeOf(""),
		Writable: true,
		Readable: true,
		Default:  "",
	})
	e.RegisterProperty(pipeline.PropertyDesc{
		Name:     "language",
		Type:     reflect.TypeOf(""),
		Writable: true,
		Readable: true,
		Default:  "en-US",
	})

	return e
}

func (e *TTSSinkElement) Start(ctx context.Context) error {
	if err := e.provider.ValidateConfig(); err != nil {
		return fmt.Errorf("TTS provider validation failed: %w", err)
	}

	if v, err := e.GetProperty("voice"); err == nil {
		e.voice = v.(string)
	}
	if v, err := e.GetProperty("language"); err == nil {
		e.language = v.(string)
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.processMessages(ctx)
	}()

	log.Printf("[%s] TTS sink started", e.provider.Name())
	return nil
}

func (e *TTSSinkElement) Stop() error {
	if e.cancel != nil {
		e.cancel()
		e.wg.Wait()
		e.cancel = nil
	}
	return nil
}

func (e *TTSSinkElement) processMessages(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-e.BaseElement.InChan:
			if msg == nil {
				return
			}
			switch {
			case msg.Type == pipeline.MsgTypeText && msg.TextData != nil:
				if err := e.synthesize(ctx, msg); err != nil {
					log.Printf("[%s] synthesize failed: %v", e.provider.Name(), err)
					e.publishError(msg.SessionID, err)
				}
			case msg.Type == pipeline.MsgTypeCommand:
				// Nothing is buffered here; command messages pass
				// through so consumers see end-of-stream.
				e.OutChan <- msg
			}
		}
	}
}

func (e *TTSSinkElement) synthesize(ctx context.Context, msg *pipeline.PipelineMessage) error {
	req := &tts.SynthesizeRequest{
		Text:     string(msg.TextData.Data),
		Voice:    e.voice,
		Language: e.language,
	}
	if meta, ok := msg.Metadata.(ChunkMetadata); ok {
		req.PreviousText = meta.PreviousText
	}

	resp, err := e.provider.Synthesize(ctx, req)
	if err != nil {
		return err
	}

	now := time.Now()
	e.OutChan <- &pipeline.PipelineMessage{
		Type:      pipeline.MsgTypeAudio,
		SessionID: msg.SessionID,
		Timestamp: now,
		AudioData: &pipeline.AudioData{
			Data:       resp.AudioData,
			SampleRate: resp.SampleRate,
			Channels:   resp.Channels,
			MediaType:  pipeline.AudioMediaTypePCM,
			Encoding:   resp.Encoding,
			Timestamp:  now,
		},
		Metadata: msg.Metadata,
	}
	return nil
}

func (e *TTSSinkElement) publishError(sessionID string, err error) {
	if bus := e.Bus(); bus != nil {
		bus.Publish(pipeline.Event{
			Type:      pipeline.EventError,
			SessionID: sessionID,
			Timestamp: time.Now(),
			Payload:   err,
		})
	}
}
