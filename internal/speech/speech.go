// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech defines the voice input and output seams.
//
// Terminal environments rarely expose a microphone or speaker, so both
// capabilities are interfaces with an always-unavailable default. The rest
// of the application treats voice strictly as an enhancement: a recognized
// transcript enters the conversation exactly like typed text, and playback
// failures degrade to the silent text experience rather than erroring out.
package speech

import (
	"context"
	"errors"

	"github.com/jeranaias/parley/internal/logger"
)

// ErrNotSupported indicates the platform offers no speech capability.
var ErrNotSupported = errors.New("speech is not supported on this platform")

// =============================================================================
// INTERFACES
// =============================================================================

// Recognizer captures one utterance and returns its transcript.
type Recognizer interface {
	// Recognize blocks until an utterance is transcribed, the context is
	// cancelled, or recognition fails.
	Recognize(ctx context.Context) (string, error)

	// Available reports whether recognition can work in this environment.
	Available() bool
}

// Synthesizer speaks a piece of text aloud.
type Synthesizer interface {
	// Speak plays the text. It returns when playback finishes or fails.
	Speak(ctx context.Context, text string) error

	// Available reports whether synthesis can work in this environment.
	Available() bool
}

// =============================================================================
// UNAVAILABLE DEFAULTS
// =============================================================================

// Unavailable implements both interfaces with ErrNotSupported. It is the
// default wiring on platforms without audio support.
type Unavailable struct{}

// Recognize always fails with ErrNotSupported.
func (Unavailable) Recognize(context.Context) (string, error) {
	return "", ErrNotSupported
}

// Speak always fails with ErrNotSupported.
func (Unavailable) Speak(context.Context, string) error {
	return ErrNotSupported
}

// Available reports false.
func (Unavailable) Available() bool { return false }

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller mediates between the UI and the speech backends.
type Controller struct {
	recognizer  Recognizer
	synthesizer Synthesizer
	ttsEnabled  bool
	log         *logger.Logger
}

// NewController wires the speech backends. Nil backends become Unavailable.
func NewController(r Recognizer, s Synthesizer, ttsEnabled bool) *Controller {
	if r == nil {
		r = Unavailable{}
	}
	if s == nil {
		s = Unavailable{}
	}
	return &Controller{
		recognizer:  r,
		synthesizer: s,
		ttsEnabled:  ttsEnabled,
		log:         logger.Global().Component("speech"),
	}
}

// InputAvailable reports whether voice input can be offered.
func (c *Controller) InputAvailable() bool {
	return c.recognizer.Available()
}

// Listen captures one utterance and returns the transcript. The caller
// submits the transcript through the normal message path; recognition has
// no side channel into conversation state.
func (c *Controller) Listen(ctx context.Context) (string, error) {
	if !c.recognizer.Available() {
		return "", ErrNotSupported
	}
	transcript, err := c.recognizer.Recognize(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("voice recognition failed")
		return "", err
	}
	return transcript, nil
}

// Announce speaks an assistant reply when synthesis is enabled and
// available. Playback failures are logged and swallowed: the reply text is
// already on screen.
func (c *Controller) Announce(ctx context.Context, text string) {
	if !c.ttsEnabled || !c.synthesizer.Available() || text == "" {
		return
	}
	if err := c.synthesizer.Speak(ctx, text); err != nil {
		c.log.Warn().Err(err).Msg("speech playback failed")
	}
}
