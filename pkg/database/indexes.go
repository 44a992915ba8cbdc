package database

import (
	"encoding/binary"

	"roost.dev/pkg/crypto/sha256"
	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/kind"
)

// Index key prefixes. Every index key ends with the 8 byte big-endian
// serial so keys are unique and the serial can be recovered from the tail.
const (
	prfEvent     = 'e' // e|serial -> event binary
	prfID        = 'i' // i|id(32) -> serial
	prfCreated   = 'c' // c|ts(8)|serial
	prfPubkey    = 'p' // p|pubkey(32)|ts(8)|serial
	prfKind      = 'k' // k|kind(2)|ts(8)|serial
	prfIdent     = 'a' // a|pubkey(32)|kind(2)|ts(8)|serial
	prfParam     = 'd' // d|pubkey(32)|kind(2)|dhash(8)|ts(8)|serial
	prfExpiry    = 'x' // x|ts(8)|serial
	serialLen    = 8
	timestampLen = 8
)

func appendUint64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

// indexTs maps created_at onto the unsigned key space; negative values
// clamp to zero, preserving order for all storable events.
func indexTs(ts int64) uint64 {
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

func eventKey(ser uint64) []byte {
	return appendUint64([]byte{prfEvent}, ser)
}

func idKey(id []byte) []byte {
	return append([]byte{prfID}, id...)
}

func createdKey(ts int64, ser uint64) []byte {
	b := appendUint64([]byte{prfCreated}, indexTs(ts))
	return appendUint64(b, ser)
}

func pubkeyKey(pk []byte, ts int64, ser uint64) []byte {
	b := append([]byte{prfPubkey}, pk...)
	b = appendUint64(b, indexTs(ts))
	return appendUint64(b, ser)
}

func kindKey(k kind.T, ts int64, ser uint64) []byte {
	b := append([]byte{prfKind}, byte(k>>8), byte(k))
	b = appendUint64(b, indexTs(ts))
	return appendUint64(b, ser)
}

func identPrefix(pk []byte, k kind.T) []byte {
	b := append([]byte{prfIdent}, pk...)
	return append(b, byte(k>>8), byte(k))
}

func identKey(pk []byte, k kind.T, ts int64, ser uint64) []byte {
	b := appendUint64(identPrefix(pk, k), indexTs(ts))
	return appendUint64(b, ser)
}

// dHash compresses the d-tag value so the parameterized identity key has a
// fixed width; the empty value hashes like any other.
func dHash(d string) []byte {
	h := sha256.Sum256([]byte(d))
	return h[:8]
}

func paramPrefix(pk []byte, k kind.T, d string) []byte {
	b := append([]byte{prfParam}, pk...)
	b = append(b, byte(k>>8), byte(k))
	return append(b, dHash(d)...)
}

func paramKey(pk []byte, k kind.T, d string, ts int64, ser uint64) []byte {
	b := appendUint64(paramPrefix(pk, k, d), indexTs(ts))
	return appendUint64(b, ser)
}

func expiryKey(ts int64, ser uint64) []byte {
	b := appendUint64([]byte{prfExpiry}, indexTs(ts))
	return appendUint64(b, ser)
}

// serialFromKey recovers the trailing serial from an index key.
func serialFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-serialLen:])
}

// tsFromKey recovers the timestamp that precedes the trailing serial.
func tsFromKey(key []byte) int64 {
	off := len(key) - serialLen - timestampLen
	return int64(binary.BigEndian.Uint64(key[off : off+timestampLen]))
}

// indexKeys builds every secondary index key for an event with the given
// serial, the id mapping excluded (it carries a value).
func indexKeys(ev *event.E, ser uint64) (keys [][]byte) {
	keys = append(keys, createdKey(ev.CreatedAt, ser))
	keys = append(keys, pubkeyKey(ev.Pubkey, ev.CreatedAt, ser))
	keys = append(keys, kindKey(ev.Kind, ev.CreatedAt, ser))
	keys = append(keys, identKey(ev.Pubkey, ev.Kind, ev.CreatedAt, ser))
	if ev.Kind.IsParameterizedReplaceable() {
		d, _ := ev.Tags.FirstValue("d")
		keys = append(keys, paramKey(ev.Pubkey, ev.Kind, d, ev.CreatedAt, ser))
	}
	if exp, ok := ev.Expiration(); ok {
		keys = append(keys, expiryKey(exp, ser))
	}
	return
}
