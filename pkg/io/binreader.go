package io

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrShortBuffer is returned when a read needs more bytes than are left.
var ErrShortBuffer = errors.New("short buffer")

var errDrained = errors.New("buffer already drained")

// BinReader is a convenient wrapper around a byte region and err object.
// Unlike a stream reader it always knows how many bytes are left, which is
// what open-ended trailing fields are sized by.
type BinReader struct {
	buf []byte
	off int
	Err error
}

// NewBinReaderFromBuf makes a BinReader from a byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{buf: b}
}

// Len returns the number of unread bytes.
func (r *BinReader) Len() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *BinReader) Offset() int {
	return r.off
}

// Fork returns an independent reader positioned at the current offset of r.
func (r *BinReader) Fork() *BinReader {
	return &BinReader{buf: r.buf, off: r.off, Err: r.Err}
}

// Seek moves the cursor to an absolute offset.
func (r *BinReader) Seek(off int) {
	if r.Err != nil {
		return
	}
	if off < 0 || off > len(r.buf) {
		r.Err = fmt.Errorf("%w: seek to %d in %d bytes", ErrShortBuffer, off, len(r.buf))
		return
	}
	r.off = off
}

// ReadB reads a byte from the underlying buffer.
func (r *BinReader) ReadB() byte {
	var b [1]byte
	r.ReadBytes(b[:])
	return b[0]
}

// ReadBytes copies fixed-size buffer from the reader to provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	if len(buf) > r.Len() {
		r.Err = fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrShortBuffer, len(buf), r.off, r.Len())
		return
	}
	copy(buf, r.buf[r.off:])
	r.off += len(buf)
}

// ReadRemaining returns a copy of every byte left and drains the reader.
func (r *BinReader) ReadRemaining() []byte {
	if r.Err != nil {
		return nil
	}
	b := make([]byte, r.Len())
	r.ReadBytes(b)
	return b
}

// ReadUint decodes a size-byte integer with the given byte order into dst.
func (r *BinReader) ReadUint(dst *uint256.Int, size int, order ByteOrder) {
	if r.Err != nil {
		return
	}
	if size <= 0 || size > MaxIntegerSize {
		r.Err = fmt.Errorf("invalid integer size %d", size)
		return
	}
	b := make([]byte, size)
	r.ReadBytes(b)
	if r.Err != nil {
		return
	}
	if order == LittleEndian {
		reverse(b)
	}
	dst.SetBytes(b)
}
