package database

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/log"
)

// DeleteExpired removes every event whose expiration timestamp has passed.
// The expiry index is ordered by timestamp so the scan stops at now.
func (d *D) DeleteExpired() {
	d.writeMx.Lock()
	defer d.writeMx.Unlock()
	now := time.Now().Unix()
	var serials []uint64
	err := d.DB.View(
		func(txn *badger.Txn) (err error) {
			it := txn.NewIterator(
				badger.IteratorOptions{Prefix: []byte{prfExpiry}},
			)
			defer it.Close()
			for it.Rewind(); it.Valid(); it.Next() {
				key := it.Item().Key()
				if tsFromKey(key) >= now {
					break
				}
				serials = append(serials, serialFromKey(key))
			}
			return
		},
	)
	if chk.E(err) {
		return
	}
	if len(serials) == 0 {
		return
	}
	err = d.DB.Update(
		func(txn *badger.Txn) (err error) {
			for _, ser := range serials {
				if err = deleteSerial(txn, ser); chk.E(err) {
					return
				}
			}
			return
		},
	)
	if chk.E(err) {
		return
	}
	log.I.F("expired %d events", len(serials))
}
