package value

import (
	"testing"

	"github.com/pioneers/typpo/pkg/config/archmode"
	"github.com/pioneers/typpo/pkg/schema"
	"github.com/stretchr/testify/require"
)

const xbeeDefs = `
types:
  - name: xbee_payload
    kind: union
    fields:
      - {name: tx64, type: xbee_tx64}
      - {name: tx_status, type: xbee_tx_status}
      - {name: bytes, type: trailing}
  - name: xbee_tx64
    fields:
      - {name: xbee_api_type, type: uint8_t}
      - {name: frameId, type: uint8_t}
      - {name: xbee_dest_addr, type: uint64_t}
      - {name: options, type: uint8_t}
      - {name: data, type: trailing}
  - name: xbee_tx_status
    fields:
      - {name: xbee_api_type, type: uint8_t}
      - {name: frameId, type: uint8_t}
      - {name: status, type: uint8_t}
`

const frameDefs = `
types:
  - name: frame
    endian: big
    fields:
      - {name: start, type: uint8_t}
      - {name: length, type: uint16_t}
      - {name: api, type: uint8_t}
      - name: body
        type: variant
        on: api
        cases: {0x00: tx64, 0x01: tx16}
  - name: tx64
    endian: big
    fields:
      - {name: addr, type: uint64_t}
      - {name: hdr, type: header}
      - {name: data, type: trailing}
  - name: tx16
    endian: big
    fields:
      - {name: addr, type: uint16_t}
      - {name: rssi, type: int8_t}
  - name: header
    endian: big
    fields:
      - {name: seq, type: int16_t}
      - {name: key, type: array, length: 4}
      - {name: counter, type: uint128_t, endian: little}
  - name: overlay
    kind: union
    fields:
      - {name: small, type: uint8_t}
      - {name: word, type: uint32_t}
`

func loadType(t *testing.T, src, name string) *schema.Type {
	t.Helper()
	p, ok := archmode.Lookup(archmode.ARM)
	require.True(t, ok)
	s, err := schema.Load(p, []byte(src), nil)
	require.NoError(t, err)
	typ, ok := s.Type(name)
	require.True(t, ok)
	return typ
}

func mustSlot(t *testing.T, tr *Tree, name string) Value {
	t.Helper()
	v, err := tr.GetSlot(name)
	require.NoError(t, err)
	return v
}
