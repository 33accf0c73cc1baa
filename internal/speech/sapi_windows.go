//go:build windows

package speech

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var _ Engine = (*SAPIEngine)(nil)

// SpeechVoiceSpeakFlags.
const (
	svsfAsync            = 1
	svsfPurgeBeforeSpeak = 2
	sFalse               = 1 // CoInitializeEx: already initialized on this thread
)

// SAPIEngine drives the Windows SAPI SpVoice automation object. COM calls
// are confined to one goroutine locked to its OS thread; Submit hands
// requests to it. Speak is called asynchronously so SAPI queues the
// utterance itself and Submit returns immediately.
type SAPIEngine struct {
	log *logger.Logger

	mu     sync.RWMutex
	closed bool
	calls  chan sapiCall
	done   chan struct{}
}

type sapiCall struct {
	req  Request
	errc chan error
}

// NewSAPIEngine creates the voice object, optionally selecting voice by
// name. It fails if COM or SAPI are unavailable.
func NewSAPIEngine(voice string, log *logger.Logger) (*SAPIEngine, error) {
	e := &SAPIEngine{
		log:   log,
		calls: make(chan sapiCall),
		done:  make(chan struct{}),
	}
	ready := make(chan error, 1)
	go e.loop(voice, ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	log.Info("sapi: voice ready")
	return e, nil
}

func (e *SAPIEngine) Name() string { return string(EngineSAPI) }

func (e *SAPIEngine) loop(voiceName string, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(e.done)

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			ready <- fmt.Errorf("sapi: CoInitializeEx: %w", err)
			return
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("SAPI.SpVoice")
	if err != nil {
		ready <- fmt.Errorf("sapi: creating SpVoice: %w", err)
		return
	}
	defer unknown.Release()

	voice, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		ready <- fmt.Errorf("sapi: SpVoice IDispatch: %w", err)
		return
	}
	defer voice.Release()

	if voiceName != "" {
		if err := selectVoice(voice, voiceName); err != nil {
			e.log.Warn("sapi: keeping default voice: %v", err)
		}
	}

	ready <- nil

	for call := range e.calls {
		call.errc <- speak(voice, call.req)
	}

	// Drop anything SAPI still has queued before releasing the voice.
	_, _ = oleutil.CallMethod(voice, "Speak", "", svsfAsync|svsfPurgeBeforeSpeak)
}

func speak(voice *ole.IDispatch, req Request) error {
	if _, err := oleutil.PutProperty(voice, "Rate", int32(req.Rate)); err != nil {
		return fmt.Errorf("sapi: setting rate: %w", err)
	}
	if _, err := oleutil.PutProperty(voice, "Volume", int32(req.Volume)); err != nil {
		return fmt.Errorf("sapi: setting volume: %w", err)
	}
	if _, err := oleutil.CallMethod(voice, "Speak", req.Text, svsfAsync); err != nil {
		return fmt.Errorf("sapi: speak: %w", err)
	}
	return nil
}

func selectVoice(voice *ole.IDispatch, name string) error {
	res, err := oleutil.CallMethod(voice, "GetVoices", "Name="+name, "")
	if err != nil {
		return err
	}
	tokens := res.ToIDispatch()
	defer tokens.Release()

	count, err := oleutil.GetProperty(tokens, "Count")
	if err != nil {
		return err
	}
	if count.Val == 0 {
		return fmt.Errorf("voice %q not installed", name)
	}

	item, err := oleutil.CallMethod(tokens, "Item", 0)
	if err != nil {
		return err
	}
	token := item.ToIDispatch()
	defer token.Release()

	_, err = oleutil.PutPropertyRef(voice, "Voice", token)
	return err
}

// Submit passes req to the COM thread and waits for SAPI to accept it.
func (e *SAPIEngine) Submit(ctx context.Context, req Request) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return domain.ErrClosed
	}

	errc := make(chan error, 1)
	select {
	case e.calls <- sapiCall{req: req, errc: errc}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close purges pending speech and releases the voice. Idempotent.
func (e *SAPIEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.calls)
	e.mu.Unlock()

	<-e.done
	return nil
}
