package database

import (
	"bytes"

	"github.com/dgraph-io/badger/v4"

	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// DeleteByAuthor removes the identified events when they were signed by
// author, skipping ids that are unknown or belong to someone else. The
// count of removed rows is returned so the caller can log it.
func (d *D) DeleteByAuthor(c context.T, author []byte, ids [][]byte) (
	n int, err error,
) {
	d.writeMx.Lock()
	defer d.writeMx.Unlock()
	err = d.DB.Update(
		func(txn *badger.Txn) (err error) {
			for _, id := range ids {
				var ser uint64
				var found bool
				if ser, found, err = getSerialByID(txn, id); chk.E(err) {
					return
				}
				if !found {
					continue
				}
				var ev, e = fetchBySerial(txn, ser)
				if e != nil {
					if e == badger.ErrKeyNotFound {
						continue
					}
					return e
				}
				if !bytes.Equal(ev.Pubkey, author) {
					log.D.F(
						"delete of %s refused, author mismatch", ev.IDHex(),
					)
					continue
				}
				if err = deleteSerial(txn, ser); chk.E(err) {
					return
				}
				n++
			}
			return
		},
	)
	return
}
