package io

// Serializable defines the binary encoding/decoding interface. Errors are
// returned via BinReader/BinWriter Err field. These functions must have safe
// behavior when passed BinReader/BinWriter with Err already set. Invocations
// to these functions tend to be nested, with this mechanism only the top-level
// caller should handle the error once and all the other code should just not
// panic in presence of error.
type Serializable interface {
	DecodeBinary(*BinReader)
	EncodeBinary(*BinWriter)
}

type decodable interface {
	DecodeBinary(*BinReader)
}

type encodable interface {
	EncodeBinary(*BinWriter)
}

// ToByteArray serializes s into a freshly allocated byte slice.
func ToByteArray(s encodable) ([]byte, error) {
	bw := NewBufBinWriter()
	s.EncodeBinary(bw.BinWriter)
	if bw.Err != nil {
		return nil, bw.Err
	}
	return bw.Bytes(), nil
}

// FromByteArray deserializes s from data. Every byte of data is available
// to s, so open-ended trailing fields consume whatever is left.
func FromByteArray(s decodable, data []byte) error {
	br := NewBinReaderFromBuf(data)
	s.DecodeBinary(br)
	return br.Err
}
