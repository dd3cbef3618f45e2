package io

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by Buffer operations addressing bytes outside
// of its capacity.
var ErrOutOfRange = errors.New("buffer index out of range")

// Buffer is a fixed-capacity mutable byte region. It never grows: every
// operation is bounded by the length it was created with.
type Buffer struct {
	b []byte
}

// NewBuffer allocates a zeroed buffer of n bytes.
func NewBuffer(n int) *Buffer {
	return &Buffer{b: make([]byte, n)}
}

// BufferFrom returns a buffer holding a copy of b.
func BufferFrom(b []byte) *Buffer {
	buf := NewBuffer(len(b))
	copy(buf.b, b)
	return buf
}

// Len returns the buffer capacity in bytes.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Bytes returns the underlying region. Writes through it are visible in b.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Fill sets every byte to v.
func (b *Buffer) Fill(v byte) {
	for i := range b.b {
		b.b[i] = v
	}
}

// Slice returns the [start, end) window of the buffer without copying.
func (b *Buffer) Slice(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(b.b) {
		return nil, fmt.Errorf("%w: [%d:%d] of %d", ErrOutOfRange, start, end, len(b.b))
	}
	return b.b[start:end], nil
}

// CopyIn copies src into the buffer starting at off. Nothing is copied if
// src doesn't fit.
func (b *Buffer) CopyIn(off int, src []byte) error {
	dst, err := b.Slice(off, off+len(src))
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}

// CopyOut fills dst with the bytes starting at off.
func (b *Buffer) CopyOut(off int, dst []byte) error {
	src, err := b.Slice(off, off+len(dst))
	if err != nil {
		return err
	}
	copy(dst, src)
	return nil
}
