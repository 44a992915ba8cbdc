package event

import (
	"github.com/vmihailenco/msgpack/v5"
)

// EncodeBinary encodes the event, ReceivedAt included, for storage.
func (ev *E) EncodeBinary() (b []byte, err error) {
	type plain E
	return msgpack.Marshal((*plain)(ev))
}

// DecodeBinary decodes a stored event.
func (ev *E) DecodeBinary(b []byte) (err error) {
	type plain E
	return msgpack.Unmarshal(b, (*plain)(ev))
}
