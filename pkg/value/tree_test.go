package value

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/pioneers/typpo/pkg/wideint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsZeroed(t *testing.T) {
	tr := New(loadType(t, frameDefs, "frame"))
	m := tr.Map()
	assert.Equal(t, uint64(0), m["start"])
	body := m["body"].(map[string]interface{})
	assert.Equal(t, wideint.Uint64(0), body["addr"])
	assert.Equal(t, []byte{}, body["data"])
	hdr := body["hdr"].(map[string]interface{})
	assert.Equal(t, []byte{0, 0, 0, 0}, hdr["key"])
	assert.Equal(t, "", tr.Active())
}

func TestUnknownFieldLeavesTreeUnchanged(t *testing.T) {
	tr := New(loadType(t, xbeeDefs, "xbee_tx64"))
	require.NoError(t, tr.SetSlot("frameId", 7))
	before := tr.Map()

	_, err := tr.GetSlot("frame_id")
	require.True(t, errors.Is(err, ErrUnknownField))

	err = tr.SetSlot("frame_id", 1)
	require.True(t, errors.Is(err, ErrUnknownField))
	var ufe *UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, "frame_id", ufe.Field)

	err = tr.Set(map[string]interface{}{"frameId": 9, "bogus": 1})
	require.True(t, errors.Is(err, ErrUnknownField))
	assert.Equal(t, before, tr.Map())
}

func TestSetSlotIsAllOrNothing(t *testing.T) {
	tr := New(loadType(t, frameDefs, "frame"))
	err := tr.SetSlot("body", map[string]interface{}{
		"addr": 5,
		"hdr":  map[string]interface{}{"seq": 1 << 20},
	})
	require.True(t, errors.Is(err, ErrOverflow))
	body := tr.Map()["body"].(map[string]interface{})
	assert.Equal(t, wideint.Uint64(0), body["addr"])
}

func TestScalarOverflow(t *testing.T) {
	tr := New(loadType(t, frameDefs, "frame"))
	for _, v := range []interface{}{0x100, -1, "0x1ff", new(big.Int).Lsh(big.NewInt(1), 200)} {
		err := tr.SetSlot("start", v)
		require.Truef(t, errors.Is(err, ErrOverflow), "%v", v)
	}
	body := mustSlot(t, tr, "body").(*Tree)
	rssiTree := New(loadType(t, frameDefs, "tx16"))
	require.True(t, errors.Is(rssiTree.SetSlot("rssi", 128), ErrOverflow))
	require.True(t, errors.Is(rssiTree.SetSlot("rssi", -129), ErrOverflow))
	require.NoError(t, rssiTree.SetSlot("rssi", -128))
	require.NoError(t, rssiTree.SetSlot("rssi", 127))

	require.True(t, errors.Is(body.SetSlot("addr", "0x1ffffffffffffffff"), ErrOverflow))
	require.NoError(t, body.SetSlot("addr", "0xffffffffffffffff"))
}

func TestInvalidValues(t *testing.T) {
	tr := New(loadType(t, frameDefs, "frame"))
	require.True(t, errors.Is(tr.SetSlot("start", "nope"), ErrInvalidValue))
	require.True(t, errors.Is(tr.SetSlot("start", 1.5), ErrInvalidValue))
	require.True(t, errors.Is(tr.SetSlot("body", 3), ErrInvalidValue))

	hdr := New(loadType(t, frameDefs, "header"))
	require.True(t, errors.Is(hdr.SetSlot("key", []byte{1, 2, 3, 4, 5}), ErrInvalidValue))
	require.True(t, errors.Is(hdr.SetSlot("key", []int{1, 256}), ErrInvalidValue))
	require.NoError(t, hdr.SetSlot("key", "0xaabb"))
	assert.Equal(t, []byte{0xaa, 0xbb, 0, 0}, hdr.Map()["key"])
}

func TestHandlesReferToTree(t *testing.T) {
	tr := New(loadType(t, frameDefs, "frame"))
	body := mustSlot(t, tr, "body").(*Tree)
	require.NoError(t, body.SetSlot("addr", 42))

	data := mustSlot(t, body, "data").(*Bytes)
	require.NoError(t, data.Set([]byte{1, 2, 3}))
	data.Bytes()[0] = 9

	start := mustSlot(t, tr, "start").(*Scalar)
	require.NoError(t, start.Set(0x7e))

	m := tr.Map()
	assert.Equal(t, uint64(0x7e), m["start"])
	b := m["body"].(map[string]interface{})
	assert.Equal(t, wideint.Uint64(42), b["addr"])
	assert.Equal(t, []byte{9, 2, 3}, b["data"])

	// Handles survive SetSlot on the parent while the branch is unchanged.
	require.NoError(t, tr.SetSlot("body", map[string]interface{}{"addr": 43}))
	assert.Equal(t, wideint.Uint64(43), body.Map()["addr"])
	assert.Equal(t, []byte{9, 2, 3}, data.Bytes())
}

func TestVariantFollowsDiscriminant(t *testing.T) {
	tr := New(loadType(t, frameDefs, "frame"))
	assert.Equal(t, "tx64", mustSlot(t, tr, "body").(*Tree).Type().Name)

	require.NoError(t, tr.SetSlot("api", 1))
	body := mustSlot(t, tr, "body").(*Tree)
	assert.Equal(t, "tx16", body.Type().Name)
	require.NoError(t, body.SetSlot("rssi", -3))

	// Reassigning the same discriminant keeps the branch contents.
	require.NoError(t, tr.SetSlot("api", 1))
	assert.Equal(t, int64(-3), mustSlot(t, tr, "body").(*Tree).Map()["rssi"])

	require.NoError(t, tr.SetSlot("api", 0))
	assert.Equal(t, "tx64", mustSlot(t, tr, "body").(*Tree).Type().Name)

	require.NoError(t, tr.SetSlot("api", 2))
	_, err := tr.GetSlot("body")
	var ve *VariantError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "body", ve.Field)
	assert.Equal(t, "0x2", ve.Discriminant)
}

func TestSetWholeTree(t *testing.T) {
	typ := loadType(t, frameDefs, "tx16")
	src := New(typ)
	require.NoError(t, src.Set(map[interface{}]interface{}{"addr": 1, "rssi": -1}))

	dst := New(typ)
	require.NoError(t, dst.Set(src))
	assert.Equal(t, src.Unwrap(), dst.Unwrap())

	require.NoError(t, src.SetSlot("addr", 2))
	assert.Equal(t, uint64(1), dst.Map()["addr"])

	other := New(loadType(t, frameDefs, "header"))
	require.True(t, errors.Is(dst.Set(other), ErrInvalidValue))
	require.True(t, errors.Is(dst.Set(map[interface{}]interface{}{1: 2}), ErrInvalidValue))
}

func TestScalarUnwrapTypes(t *testing.T) {
	hdr := New(loadType(t, frameDefs, "header"))
	seq := mustSlot(t, hdr, "seq").(*Scalar)
	require.NoError(t, seq.Set(int16(-300)))
	assert.Equal(t, int64(-300), seq.Unwrap())
	assert.Equal(t, "-300", seq.String())
	assert.Equal(t, uint64(0xfed4), seq.Int().Uint64())

	counter := mustSlot(t, hdr, "counter").(*Scalar)
	want := new(uint256.Int).Lsh(new(uint256.Int).SetUint64(1), 127)
	require.NoError(t, counter.Set(want))
	assert.True(t, want.Eq(counter.Unwrap().(*uint256.Int)))
	_, fits := counter.Uint64()
	assert.False(t, fits)

	addr := New(loadType(t, xbeeDefs, "xbee_tx64"))
	require.NoError(t, addr.SetSlot("xbee_dest_addr", wideint.MustParseHex("0xfedcba8987654321")))
	assert.Equal(t, "0xfedcba8987654321", addr.Map()["xbee_dest_addr"].(wideint.Uint64).String())
}

func TestScalarStringLiterals(t *testing.T) {
	hdr := New(loadType(t, frameDefs, "header"))
	seq := mustSlot(t, hdr, "seq").(*Scalar)
	for in, want := range map[string]int64{
		"010":    10,
		" 42 ":   42,
		"+5":     5,
		"-7":     -7,
		"0x1f":   31,
		"0XFF":   255,
		"-0x10":  -16,
		"-32768": -32768,
	} {
		require.NoError(t, seq.Set(in), in)
		assert.Equal(t, want, seq.Int64(), in)
	}
	for _, in := range []string{"1_000", "0x1_0", "0b101", "0o17", "0x", "", "--1", "-+1", "0x-1", "1e3"} {
		require.Truef(t, errors.Is(seq.Set(in), ErrInvalidValue), "%q", in)
	}
	require.True(t, errors.Is(seq.Set("0x8000"), ErrOverflow))
}
