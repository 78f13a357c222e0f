// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream simulates progressive delivery of an assistant reply.
//
// A Producer takes a complete reply string and delivers it to a consumer
// callback as ordered, whitespace-preserving chunks at a fixed interval,
// then signals completion exactly once. The producer is cancellable:
// cancelling stops further chunk deliveries but never reverts content the
// consumer has already applied.
package stream

import (
	"sync"
	"time"
)

// DefaultInterval is the delay between chunk deliveries.
const DefaultInterval = 35 * time.Millisecond

// =============================================================================
// CHUNKING
// =============================================================================

// SplitChunks splits a reply into word-sized chunks, each carrying its
// trailing whitespace. Concatenating the chunks reproduces the input
// byte for byte.
func SplitChunks(s string) []string {
	if s == "" {
		return nil
	}

	var chunks []string
	start := 0
	inSpace := false
	for i, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if inSpace && !isSpace {
			chunks = append(chunks, s[start:i])
			start = i
		}
		inSpace = isSpace
	}
	chunks = append(chunks, s[start:])
	return chunks
}

// =============================================================================
// PRODUCER
// =============================================================================

// Producer delivers one reply as a timed chunk sequence.
type Producer struct {
	chunks   []string
	interval time.Duration

	cancelOnce sync.Once
	cancel     chan struct{}
}

// NewProducer creates a producer for the given reply using DefaultInterval.
func NewProducer(reply string) *Producer {
	return NewProducerWithInterval(reply, DefaultInterval)
}

// NewProducerWithInterval creates a producer with a custom delivery interval.
func NewProducerWithInterval(reply string, interval time.Duration) *Producer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Producer{
		chunks:   SplitChunks(reply),
		interval: interval,
		cancel:   make(chan struct{}),
	}
}

// Start begins delivery in a goroutine. onChunk receives each chunk in
// order; onDone is called exactly once when the reply is exhausted or the
// producer is cancelled, with canceled reporting which.
func (p *Producer) Start(onChunk func(chunk string), onDone func(canceled bool)) {
	go p.run(onChunk, onDone)
}

func (p *Producer) run(onChunk func(string), onDone func(bool)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for _, chunk := range p.chunks {
		select {
		case <-p.cancel:
			if onDone != nil {
				onDone(true)
			}
			return
		case <-ticker.C:
			if onChunk != nil {
				onChunk(chunk)
			}
		}
	}

	if onDone != nil {
		onDone(false)
	}
}

// Cancel stops further deliveries. Safe to call multiple times and safe to
// call after completion; both are no-ops.
func (p *Producer) Cancel() {
	p.cancelOnce.Do(func() {
		close(p.cancel)
	})
}
