package database

import (
	"bytes"
	"time"

	"github.com/dgraph-io/badger/v4"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// SaveEvent persists an event with replaceable semantics enforced in one
// transaction: a stale replaceable is refused with store.ErrStale and a
// fresher one deletes the rows it supersedes before its own insert. The
// write mutex serializes the check-then-write group against concurrent
// writers.
func (d *D) SaveEvent(c context.T, ev *event.E) (err error) {
	d.writeMx.Lock()
	defer d.writeMx.Unlock()
	var has bool
	if has, err = d.HasEvent(c, ev.ID); chk.E(err) {
		return
	}
	if has {
		return store.ErrDuplicate
	}
	var superseded []uint64
	if superseded, err = d.findSuperseded(ev); err != nil {
		return
	}
	var ser uint64
	if ser, err = d.seq.Next(); chk.E(err) {
		return
	}
	if ev.ReceivedAt == 0 {
		ev.ReceivedAt = time.Now().Unix()
	}
	var bin []byte
	if bin, err = ev.EncodeBinary(); chk.E(err) {
		return
	}
	err = d.DB.Update(
		func(txn *badger.Txn) (err error) {
			for _, old := range superseded {
				if err = deleteSerial(txn, old); chk.E(err) {
					return
				}
			}
			if err = txn.Set(eventKey(ser), bin); chk.E(err) {
				return
			}
			if err = txn.Set(
				idKey(ev.ID), appendUint64(nil, ser),
			); chk.E(err) {
				return
			}
			for _, key := range indexKeys(ev, ser) {
				if err = txn.Set(key, nil); chk.E(err) {
					return
				}
			}
			return
		},
	)
	if chk.E(err) {
		return
	}
	log.T.F(
		"saved event %s kind %d serial %d, superseded %d",
		ev.IDHex(), ev.Kind, ser, len(superseded),
	)
	return
}

// findSuperseded locates stored events the new event replaces. For
// replaceable and parameterized replaceable kinds the identity prefix is
// scanned; a stored event that is newer, or equal-time with a smaller id,
// makes the new one stale.
func (d *D) findSuperseded(ev *event.E) (serials []uint64, err error) {
	var prefix []byte
	switch {
	case ev.Kind.IsReplaceable():
		prefix = identPrefix(ev.Pubkey, ev.Kind)
	case ev.Kind.IsParameterizedReplaceable():
		dv, _ := ev.Tags.FirstValue("d")
		prefix = paramPrefix(ev.Pubkey, ev.Kind, dv)
	default:
		return
	}
	err = d.DB.View(
		func(txn *badger.Txn) (err error) {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
			defer it.Close()
			for it.Rewind(); it.Valid(); it.Next() {
				key := it.Item().KeyCopy(nil)
				ts := tsFromKey(key)
				ser := serialFromKey(key)
				if ts > ev.CreatedAt {
					return store.ErrStale
				}
				if ts == ev.CreatedAt {
					// same timestamp, the smaller id wins
					var old *event.E
					if old, err = fetchBySerial(txn, ser); chk.E(err) {
						return
					}
					if bytes.Compare(old.ID, ev.ID) < 0 {
						return store.ErrStale
					}
				}
				serials = append(serials, ser)
			}
			return
		},
	)
	return
}

// HasEvent reports whether an event with the given id is stored.
func (d *D) HasEvent(c context.T, id []byte) (has bool, err error) {
	err = d.DB.View(
		func(txn *badger.Txn) (err error) {
			_, err = txn.Get(idKey(id))
			return
		},
	)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	if chk.E(err) {
		return
	}
	return true, nil
}

// fetchBySerial loads and decodes an event row inside a transaction.
func fetchBySerial(txn *badger.Txn, ser uint64) (ev *event.E, err error) {
	var item *badger.Item
	if item, err = txn.Get(eventKey(ser)); err != nil {
		return
	}
	ev = &event.E{}
	err = item.Value(func(val []byte) error { return ev.DecodeBinary(val) })
	return
}

// deleteSerial removes an event row with its id mapping and every
// secondary index key.
func deleteSerial(txn *badger.Txn, ser uint64) (err error) {
	var ev *event.E
	if ev, err = fetchBySerial(txn, ser); err != nil {
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return
	}
	if err = txn.Delete(eventKey(ser)); chk.E(err) {
		return
	}
	if err = txn.Delete(idKey(ev.ID)); chk.E(err) {
		return
	}
	for _, key := range indexKeys(ev, ser) {
		if err = txn.Delete(key); chk.E(err) {
			return
		}
	}
	log.T.F("deleted event %s serial %d", hex.Enc(ev.ID), ser)
	return
}
