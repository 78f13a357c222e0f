// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"sync"
	"time"
)

// =============================================================================
// RENDER BUFFER
// =============================================================================

// Buffer batches streamed chunks for efficient terminal rendering. Chunks
// accumulate until either the batch size is reached or enough time has
// passed since the last flush; this caps the redraw rate while the UI polls
// on its frame tick.
//
// Thread-safety: chunk delivery happens on the producer goroutine while
// flushing happens on the UI loop, so all operations take the mutex.
type Buffer struct {
	mu         sync.Mutex
	buf        strings.Builder
	chunkCount int
	lastFlush  time.Time

	batchSize int
	minFlush  time.Duration
}

const (
	defaultBatchSize = 12
	defaultMaxFPS    = 30
)

// NewBuffer creates a buffer with the default batch size and frame cap.
func NewBuffer() *Buffer {
	return &Buffer{
		batchSize: defaultBatchSize,
		minFlush:  time.Second / defaultMaxFPS,
		lastFlush: time.Now(),
	}
}

// Write adds a chunk to the buffer.
func (b *Buffer) Write(chunk string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(chunk)
	b.chunkCount++
}

// Flush returns accumulated content when a flush is due (batch size or time
// threshold reached). The second return is false when nothing was flushed.
func (b *Buffer) Flush() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buf.Len() == 0 {
		return "", false
	}
	if b.chunkCount < b.batchSize && time.Since(b.lastFlush) < b.minFlush {
		return "", false
	}
	return b.drainLocked(), true
}

// ForceFlush returns all buffered content regardless of thresholds. Used
// when a stream completes so no tail content is left unrendered.
func (b *Buffer) ForceFlush() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.buf.Len() == 0 {
		return "", false
	}
	return b.drainLocked(), true
}

// Reset discards buffered content without flushing. Used when a stream is
// cancelled before its tail was rendered.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.chunkCount = 0
	b.lastFlush = time.Now()
}

// Pending returns the number of unflushed chunks.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chunkCount
}

func (b *Buffer) drainLocked() string {
	content := b.buf.String()
	b.buf.Reset()
	b.chunkCount = 0
	b.lastFlush = time.Now()
	return content
}
