package database

import (
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
)

// CountEvents counts stored events matching the filter disjunction,
// deduplicated by id. Per-filter limits do not bound the count.
func (d *D) CountEvents(c context.T, fs filter.S) (n int64, err error) {
	now := time.Now().Unix()
	seen := make(map[string]struct{})
	err = d.DB.View(
		func(txn *badger.Txn) (err error) {
			for _, f := range fs {
				unlimited := *f
				unlimited.Limit = nil
				var evs event.S
				if evs, err = queryOne(
					txn, &unlimited, math.MaxUint32, now,
				); chk.E(err) {
					return
				}
				for _, ev := range evs {
					id := string(ev.ID)
					if _, ok := seen[id]; ok {
						continue
					}
					seen[id] = struct{}{}
					n++
				}
			}
			return
		},
	)
	return
}

// TotalEvents reports how many events are stored.
func (d *D) TotalEvents() (n int64, err error) {
	err = d.DB.View(
		func(txn *badger.Txn) (err error) {
			it := txn.NewIterator(
				badger.IteratorOptions{Prefix: []byte{prfEvent}},
			)
			defer it.Close()
			for it.Rewind(); it.Valid(); it.Next() {
				n++
			}
			return
		},
	)
	return
}
