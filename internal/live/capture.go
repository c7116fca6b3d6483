// Package live runs microphone capture against a bidirectional
// transcription session and reconciles its streamed events into segments.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/transub/internal/ports"
	"github.com/forPelevin/transub/internal/types"
)

const (
	// SampleRate is the capture sample rate expected by live sessions.
	SampleRate = 16000

	// BlockBytes is one capture block: 100 ms of PCM16 mono at 16 kHz.
	BlockBytes = SampleRate / 10 * 2

	// queueDepth bounds the block queue between the capture reader and the
	// session sender, about three seconds of audio at 100 ms per block.
	queueDepth = 32
)

// errSessionEnded marks a server-side close of the event stream. It stops
// the capture group but is not surfaced to the caller.
var errSessionEnded = errors.New("live session ended")

// pump is the bounded queue between the capture producer and the session
// consumer. Enqueue never blocks; overflow drops the block.
type pump struct {
	blocks  chan []byte
	dropped int64
	logf    func(format string, args ...any)
}

func newPump(logf func(format string, args ...any)) *pump {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &pump{blocks: make(chan []byte, queueDepth), logf: logf}
}

func (p *pump) enqueue(block []byte) {
	select {
	case p.blocks <- block:
	default:
		p.dropped++
		p.logf("capture queue full, dropping %d-byte block (%d dropped so far)", len(block), p.dropped)
	}
}

func (p *pump) run(ctx context.Context, session ports.LiveSession) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case block := <-p.blocks:
			if err := session.Send(block); err != nil {
				return fmt.Errorf("%w: send audio: %v", types.ErrSession, err)
			}
		}
	}
}

// Capture streams microphone audio to a live session until ctx is canceled
// or the session fails, and returns the finalized transcript. On a session
// or device fault the transcript accumulated so far is still finalized and
// returned alongside the error.
func Capture(ctx context.Context, mic ports.AudioCapture, dialer ports.LiveDialer, logf func(format string, args ...any)) (types.Transcript, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	session, err := dialer.Dial(ctx)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("%w: dial: %v", types.ErrSession, err)
	}
	defer session.Close()

	stream, err := mic.Capture(ctx)
	if err != nil {
		return types.Transcript{}, err
	}
	defer stream.Close()

	rec := NewReconciler(time.Now())
	p := newPump(logf)

	g, gctx := errgroup.WithContext(ctx)

	// unblock the producer's read when the group winds down
	go func() {
		<-gctx.Done()
		stream.Close()
	}()

	// producer: read fixed-size blocks off the device, never await a round trip
	g.Go(func() error {
		for {
			block := make([]byte, BlockBytes)
			n, err := io.ReadFull(stream, block)
			if n > 0 {
				p.enqueue(block[:n])
			}
			if err != nil {
				if gctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					return nil
				}
				return fmt.Errorf("%w: read capture stream: %v", types.ErrDeviceAccess, err)
			}
			if gctx.Err() != nil {
				return nil
			}
		}
	})

	// consumer: drain the queue into the session
	g.Go(func() error {
		return p.run(gctx, session)
	})

	// receiver: fold inbound events into the reconciler
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-session.Events():
				if !ok {
					return errSessionEnded
				}
				switch {
				case ev.Err != nil:
					return fmt.Errorf("%w: %v", types.ErrSession, ev.Err)
				case ev.TurnComplete:
					rec.OnTurnComplete()
					logf("turn complete (%d segments)", rec.SegmentCount())
				case ev.PartialText != "":
					rec.OnPartial(ev.PartialText)
				}
			}
		}
	})

	runErr := g.Wait()
	tr := rec.Finalize()
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, errSessionEnded) {
		return tr, runErr
	}
	return tr, nil
}
