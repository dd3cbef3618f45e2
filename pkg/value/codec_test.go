package value

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pioneers/typpo/pkg/io"
	"github.com/pioneers/typpo/pkg/wideint"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xbeeOut(t *testing.T) (*Tree, wideint.Uint64) {
	typ := loadType(t, xbeeDefs, "xbee_payload")
	addr := wideint.MustParseHex("0xfedcba8987654321")
	out := New(typ)
	require.NoError(t, out.SetSlot("tx64", map[string]interface{}{
		"xbee_api_type":  0xa,
		"frameId":        0xb,
		"xbee_dest_addr": addr,
		"options":        0xc,
		"data":           io.BufferFrom([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
	}))
	return out, addr
}

func TestXBeePayloadRoundTrip(t *testing.T) {
	out, addr := xbeeOut(t)

	tx := mustSlot(t, out, "tx64").(*Tree)
	data := mustSlot(t, tx, "data").(*Bytes)
	size := out.Type().FixedSize() + data.Len()
	require.Equal(t, 22, size)
	require.Equal(t, size, out.Size())

	buf := io.NewBuffer(size)
	buf.Fill(0xff)
	require.NoError(t, out.WriteBuffer(buf))

	in := New(out.Type())
	require.NoError(t, in.ReadBuffer(buf))
	res := in.Map()

	raw := res["bytes"].([]byte)
	require.Len(t, raw, size)
	assert.Equal(t, byte(0xa), raw[0])
	assert.Equal(t, byte(0xb), raw[1])
	assert.Equal(t, []byte{0x21, 0x43, 0x65, 0x87, 0x89, 0xba, 0xdc, 0xfe}, raw[2:10])
	assert.Equal(t, byte(0xc), raw[10])
	for i := 0; i < 11; i++ {
		assert.Equal(t, byte(i), raw[11+i])
	}

	got := res["tx64"].(map[string]interface{})
	assert.Equal(t, addr.String(), got["xbee_dest_addr"].(wideint.Uint64).String())
	assert.Equal(t, out.Map()["tx64"], got)
	assert.Equal(t, "tx64", in.Active())
}

func TestRoundTripNestedVariant(t *testing.T) {
	typ := loadType(t, frameDefs, "frame")
	counter := new(uint256.Int).Lsh(new(uint256.Int).SetUint64(0xdeadbeef), 70)

	out := New(typ)
	require.NoError(t, out.SetSlot("start", 0x7e))
	require.NoError(t, out.SetSlot("length", 0x1234))
	require.NoError(t, out.SetSlot("body", map[string]interface{}{
		"addr": "0x0013a20040a1b2c3",
		"hdr": map[string]interface{}{
			"seq":     -2,
			"key":     []byte{1, 2},
			"counter": counter,
		},
		"data": []byte("hello"),
	}))
	require.Equal(t, 4+8+(2+4+16)+5, out.Size())

	buf := make([]byte, out.Size())
	require.NoError(t, out.Write(buf))
	assert.Equal(t, []byte{0x7e, 0x12, 0x34, 0x00}, buf[:4])
	assert.Equal(t, []byte{0x00, 0x13, 0xa2, 0x00, 0x40, 0xa1, 0xb2, 0xc3}, buf[4:12])
	assert.Equal(t, []byte{0xff, 0xfe, 1, 2, 0, 0}, buf[12:18])
	assert.Equal(t, []byte("hello"), buf[34:])

	in := New(typ)
	require.NoError(t, in.Read(buf))
	assert.Equal(t, out.Unwrap(), in.Unwrap())

	hdr := in.Map()["body"].(map[string]interface{})["hdr"].(map[string]interface{})
	assert.Equal(t, int64(-2), hdr["seq"])
	assert.True(t, counter.Eq(hdr["counter"].(*uint256.Int)))
}

func TestRoundTripSwitchedBranch(t *testing.T) {
	typ := loadType(t, frameDefs, "frame")
	out := New(typ)
	require.NoError(t, out.SetSlot("api", 1))
	require.NoError(t, out.SetSlot("body", map[string]interface{}{"addr": 0xfffe, "rssi": -40}))
	require.Equal(t, 7, out.Size())

	data, err := io.ToByteArray(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 1, 0xff, 0xfe, 0xd8}, data)

	in := New(typ)
	require.NoError(t, io.FromByteArray(in, data))
	assert.Equal(t, out.Unwrap(), in.Unwrap())
}

func TestEmptyTrailingRoundTrip(t *testing.T) {
	typ := loadType(t, xbeeDefs, "xbee_tx64")
	out := New(typ)
	require.NoError(t, out.SetSlot("options", 3))
	require.Equal(t, 11, out.Size())
	buf := make([]byte, 11)
	require.NoError(t, out.Write(buf))

	in := New(typ)
	require.NoError(t, in.Read(buf))
	assert.Equal(t, []byte{}, in.Map()["data"])
	assert.Equal(t, out.Unwrap(), in.Unwrap())
}

func TestWriteUndersizedBufferWritesNothing(t *testing.T) {
	out, _ := xbeeOut(t)
	buf := io.NewBuffer(out.Size() - 1)
	buf.Fill(0xff)

	err := out.WriteBuffer(buf)
	require.True(t, errors.Is(err, ErrBufferTooSmall))
	var bts *BufferTooSmallError
	require.True(t, errors.As(err, &bts))
	assert.Equal(t, 22, bts.Need)
	assert.Equal(t, 21, bts.Have)
	for _, b := range buf.Bytes() {
		require.Equal(t, byte(0xff), b)
	}
}

func TestWriteAtOffset(t *testing.T) {
	typ := loadType(t, xbeeDefs, "xbee_tx64")
	out := New(typ)
	require.NoError(t, out.SetSlot("frameId", 9))
	buf := make([]byte, 13)
	require.NoError(t, out.WriteAt(buf, 2))
	assert.Equal(t, byte(9), buf[3])

	in := New(typ)
	require.NoError(t, in.ReadAt(buf, 2))
	assert.Equal(t, uint64(9), in.Map()["frameId"])
	assert.True(t, errors.Is(out.WriteAt(buf, 3), ErrBufferTooSmall))
}

func TestWriteOverflowWritesNothing(t *testing.T) {
	typ := loadType(t, xbeeDefs, "xbee_tx64")
	out := New(typ)
	// Only reachable by bypassing Set, which already rejects the value.
	mustSlot(t, out, "options").(*Scalar).raw.SetUint64(0x100)

	buf := make([]byte, out.Size())
	err := out.Write(buf)
	require.True(t, errors.Is(err, ErrOverflow))
	assert.Equal(t, make([]byte, 11), buf)
}

func TestReadShortBuffer(t *testing.T) {
	typ := loadType(t, xbeeDefs, "xbee_tx64")
	tr := New(typ)
	require.NoError(t, tr.SetSlot("frameId", 5))

	err := tr.Read([]byte{1, 2, 3})
	require.True(t, errors.Is(err, ErrBufferTooSmall))
	assert.True(t, errors.Is(err, io.ErrShortBuffer))
	assert.Equal(t, uint64(5), tr.Map()["frameId"])

	assert.True(t, errors.Is(tr.ReadAt(make([]byte, 11), 12), ErrBufferTooSmall))
}

func TestVariantWithoutCase(t *testing.T) {
	typ := loadType(t, frameDefs, "frame")
	tr := New(typ)
	require.NoError(t, tr.SetSlot("api", 9))

	_, err := tr.GetSlot("body")
	require.True(t, errors.Is(err, ErrVariant))
	err = tr.SetSlot("body", map[string]interface{}{"addr": 1})
	require.True(t, errors.Is(err, ErrVariant))
	assert.Nil(t, tr.Map()["body"])

	err = tr.Write(make([]byte, 16))
	require.True(t, errors.Is(err, ErrVariant))

	err = New(typ).Read([]byte{0, 0, 0, 9, 1, 2})
	require.True(t, errors.Is(err, ErrVariant))
}

func TestUnionPadsAndPicksWidestMember(t *testing.T) {
	typ := loadType(t, frameDefs, "overlay")
	out := New(typ)
	require.NoError(t, out.SetSlot("small", 5))
	assert.Equal(t, "small", out.Active())
	require.Equal(t, 4, out.Size())

	buf := []byte{9, 9, 9, 9}
	require.NoError(t, out.Write(buf))
	assert.Equal(t, []byte{5, 0, 0, 0}, buf)

	in := New(typ)
	require.NoError(t, in.Read([]byte{1, 2, 3, 4}))
	assert.Equal(t, "word", in.Active())
	assert.Equal(t, uint64(1), in.Map()["small"])
	assert.Equal(t, uint64(0x04030201), in.Map()["word"])
}

func TestUnionMemberSetThroughHandle(t *testing.T) {
	typ := loadType(t, xbeeDefs, "xbee_payload")
	out := New(typ)
	st := mustSlot(t, out, "tx_status").(*Tree)
	require.NoError(t, st.SetSlot("status", 5))
	assert.Equal(t, "tx_status", out.Active())

	buf := make([]byte, out.Size())
	require.NoError(t, out.Write(buf))
	assert.Equal(t, []byte{0, 0, 5, 0, 0, 0, 0, 0, 0, 0, 0}, buf)

	// Scalar handles below the member count too.
	require.NoError(t, out.SetSlot("tx64", map[string]interface{}{"frameId": 1}))
	require.Equal(t, "tx64", out.Active())
	require.NoError(t, mustSlot(t, st, "frameId").(*Scalar).Set(0x42))
	assert.Equal(t, "tx_status", out.Active())
	require.NoError(t, out.Write(buf))
	assert.Equal(t, []byte{0, 0x42, 5}, buf[:3])

	raw := mustSlot(t, out, "bytes").(*Bytes)
	require.NoError(t, raw.Set([]byte{9, 8, 7}))
	assert.Equal(t, "bytes", out.Active())
}

func TestUnionHandleInsideStruct(t *testing.T) {
	typ := loadType(t, `
types:
  - name: outer
    fields:
      - {name: tag, type: uint8_t}
      - {name: pay, type: overlay}
  - name: overlay
    kind: union
    fields:
      - {name: small, type: uint8_t}
      - {name: pair, type: pair}
  - name: pair
    fields:
      - {name: a, type: uint8_t}
      - {name: b, type: uint8_t}
`, "outer")
	out := New(typ)
	pay := mustSlot(t, out, "pay").(*Tree)
	pair := mustSlot(t, pay, "pair").(*Tree)

	// A handle taken before a parent update stays attached.
	require.NoError(t, out.SetSlot("tag", 1))
	require.NoError(t, pair.SetSlot("b", 7))
	assert.Equal(t, "pair", pay.Active())

	buf := make([]byte, out.Size())
	require.NoError(t, out.Write(buf))
	assert.Equal(t, []byte{1, 0, 7}, buf)
}

func TestUnionRoundTripNonFirstMember(t *testing.T) {
	typ := loadType(t, xbeeDefs, "xbee_payload")
	out := New(typ)
	require.NoError(t, out.SetSlot("tx_status", map[string]interface{}{
		"xbee_api_type": 0x89,
		"frameId":       3,
		"status":        0x21,
	}))
	require.Equal(t, "tx_status", out.Active())
	require.Equal(t, 11, out.Size())

	buf := make([]byte, out.Size())
	require.NoError(t, out.Write(buf))

	in := New(typ)
	require.NoError(t, in.Read(buf))
	// tx64 and the raw view both cover the whole region, tx64 is declared first.
	assert.Equal(t, "tx64", in.Active())
	assert.Equal(t, out.Map()["tx_status"], in.Map()["tx_status"])
	assert.Equal(t, buf, in.Map()["bytes"])

	again := make([]byte, in.Size())
	require.NoError(t, in.Write(again))
	assert.Equal(t, buf, again)

	word := New(loadType(t, frameDefs, "overlay"))
	require.NoError(t, word.SetSlot("word", 0xa1b2c3d4))
	wb := make([]byte, word.Size())
	require.NoError(t, word.Write(wb))
	back := New(word.Type())
	require.NoError(t, back.Read(wb))
	assert.Equal(t, "word", back.Active())
	assert.Equal(t, word.Map()["word"], back.Map()["word"])
}

func TestSignedDiscriminant(t *testing.T) {
	typ := loadType(t, `
types:
  - name: reading
    fields:
      - {name: kind, type: int8_t}
      - name: body
        type: variant
        on: kind
        cases: {-1: fault, 1: sample}
  - name: fault
    fields:
      - {name: code, type: uint8_t}
  - name: sample
    fields:
      - {name: value, type: int16_t}
`, "reading")
	out := New(typ)
	require.NoError(t, out.SetSlot("kind", -1))
	require.NoError(t, out.SetSlot("body", map[string]interface{}{"code": 4}))
	buf := make([]byte, out.Size())
	require.NoError(t, out.Write(buf))
	assert.Equal(t, []byte{0xff, 4}, buf)

	in := New(typ)
	require.NoError(t, in.Read(buf))
	assert.Equal(t, "fault", mustSlot(t, in, "body").(*Tree).Type().Name)
	assert.Equal(t, out.Unwrap(), in.Unwrap())
}

func TestCodecMetrics(t *testing.T) {
	before := testutil.ToFloat64(framesTotal.WithLabelValues(opEncode))
	errsBefore := testutil.ToFloat64(codecErrors.WithLabelValues(opEncode))

	out, _ := xbeeOut(t)
	require.NoError(t, out.Write(make([]byte, 22)))
	require.Error(t, out.Write(make([]byte, 2)))

	assert.Equal(t, before+1, testutil.ToFloat64(framesTotal.WithLabelValues(opEncode)))
	assert.Equal(t, errsBefore+1, testutil.ToFloat64(codecErrors.WithLabelValues(opEncode)))
}
