package io

import (
	"bytes"
	"fmt"
	"io"

	"github.com/holiman/uint256"
)

// MaxIntegerSize is the widest integer (in bytes) BinWriter and BinReader
// can handle.
const MaxIntegerSize = 32

// BinWriter is a convenient wrapper around a io.Writer and err object.
// Used to simplify error handling when writing into a io.Writer
// from a struct with many fields.
type BinWriter struct {
	w   io.Writer
	Err error
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// BufBinWriter is an additional layer on top of BinWriter that
// automatically creates buffer to write into that you can get after all
// writes via Bytes().
type BufBinWriter struct {
	*BinWriter
	buf *bytes.Buffer
}

// NewBufBinWriter makes a BufBinWriter with an empty byte buffer.
func NewBufBinWriter() *BufBinWriter {
	b := new(bytes.Buffer)
	return &BufBinWriter{BinWriter: NewBinWriterFromIO(b), buf: b}
}

// Len returns the number of bytes of the unread portion of the buffer.
func (bw *BufBinWriter) Len() int {
	return bw.buf.Len()
}

// Bytes returns the resulting buffer and makes future writes return an error.
func (bw *BufBinWriter) Bytes() []byte {
	if bw.Err != nil {
		return nil
	}
	bw.Err = errDrained
	return bw.buf.Bytes()
}

// Reset resets the state of the buffer, making it usable again. It can
// make buffer usage somewhat more efficient, because you don't need to
// create it again, but beware that the buffer is gonna be the same as the one
// returned by Bytes(), so if you need that data after Reset() you have to copy
// it yourself.
func (bw *BufBinWriter) Reset() {
	bw.Err = nil
	bw.buf.Reset()
}

// WriteB writes a byte into the underlying io.Writer.
func (w *BinWriter) WriteB(u8 byte) {
	w.WriteBytes([]byte{u8})
}

// WriteBytes writes a variable byte into the underlying io.Writer without prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteZeros writes n zero bytes.
func (w *BinWriter) WriteZeros(n int) {
	if n <= 0 {
		return
	}
	w.WriteBytes(make([]byte, n))
}

// WriteUint writes the low size bytes of v using the given byte order.
// Bits above size*8 are dropped, range checks are the caller's business.
func (w *BinWriter) WriteUint(v *uint256.Int, size int, order ByteOrder) {
	if w.Err != nil {
		return
	}
	if size <= 0 || size > MaxIntegerSize {
		w.Err = fmt.Errorf("invalid integer size %d", size)
		return
	}
	full := v.Bytes32()
	b := make([]byte, size)
	copy(b, full[MaxIntegerSize-size:])
	if order == LittleEndian {
		reverse(b)
	}
	w.WriteBytes(b)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
