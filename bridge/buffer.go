package bridge

import "github.com/CodingButter/pump-fun-chat-mcp/chat"

// BufferCapacity is the number of chat messages the bridge retains.
const BufferCapacity = 1000

// Buffer is a fixed-capacity ring of chat messages with strict FIFO
// eviction: appending at capacity drops the oldest entry. It performs no
// locking; the supervisor serializes access.
type Buffer struct {
	entries []chat.Message
	head    int
	size    int
}

// NewBuffer creates a buffer holding at most capacity messages.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = BufferCapacity
	}
	return &Buffer{entries: make([]chat.Message, capacity)}
}

// Append adds m at the tail, evicting the oldest entry when full.
func (b *Buffer) Append(m chat.Message) {
	if b.size == len(b.entries) {
		b.entries[b.head] = m
		b.head = (b.head + 1) % len(b.entries)
		return
	}
	b.entries[(b.head+b.size)%len(b.entries)] = m
	b.size++
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	return b.size
}

// Latest returns the most recent message, or false when empty.
func (b *Buffer) Latest() (chat.Message, bool) {
	if b.size == 0 {
		return chat.Message{}, false
	}
	return b.entries[(b.head+b.size-1)%len(b.entries)], true
}

// Recent returns the limit most recent messages in chronological order.
// limit <= 0 yields an empty slice; limit beyond Len yields everything.
func (b *Buffer) Recent(limit int) []chat.Message {
	if limit < 0 {
		limit = 0
	}
	if limit > b.size {
		limit = b.size
	}
	out := make([]chat.Message, 0, limit)
	for i := b.size - limit; i < b.size; i++ {
		out = append(out, b.entries[(b.head+i)%len(b.entries)])
	}
	return out
}

// All returns every buffered message in chronological order.
func (b *Buffer) All() []chat.Message {
	return b.Recent(b.size)
}
