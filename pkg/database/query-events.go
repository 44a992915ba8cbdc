package database

import (
	"bytes"
	"math"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"roost.dev/pkg/encoders/event"
	"roost.dev/pkg/encoders/filter"
	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
)

// QueryEvents evaluates the filter disjunction against the indexes and
// returns matches newest first, deduplicated by id. Each filter is capped
// at min(filter limit, globalLimit); a filter with limit zero contributes
// nothing. Expired events are skipped even when the sweeper has not
// collected them yet.
func (d *D) QueryEvents(c context.T, fs filter.S, globalLimit uint) (
	evs event.S, err error,
) {
	now := time.Now().Unix()
	seen := make(map[string]struct{})
	err = d.DB.View(
		func(txn *badger.Txn) (err error) {
			for _, f := range fs {
				limit := globalLimit
				if f.Limit != nil && *f.Limit < limit {
					limit = *f.Limit
				}
				if limit == 0 {
					continue
				}
				var matched event.S
				if matched, err = queryOne(txn, f, limit, now); chk.E(err) {
					return
				}
				for _, ev := range matched {
					id := string(ev.ID)
					if _, ok := seen[id]; ok {
						continue
					}
					seen[id] = struct{}{}
					evs = append(evs, ev)
				}
			}
			return
		},
	)
	if chk.E(err) {
		return
	}
	sortEvents(evs)
	return
}

func sortEvents(evs event.S) {
	sort.Slice(
		evs, func(i, j int) bool {
			if evs[i].CreatedAt != evs[j].CreatedAt {
				return evs[i].CreatedAt > evs[j].CreatedAt
			}
			return bytes.Compare(evs[i].ID, evs[j].ID) < 0
		},
	)
}

// queryOne picks the narrowest index for the filter, walks it newest
// first and stops once limit events pass the full predicate.
func queryOne(txn *badger.Txn, f *filter.F, limit uint, now int64) (
	evs event.S, err error,
) {
	since, until := int64(0), int64(math.MaxInt64)
	if f.Since != nil {
		since = *f.Since
	}
	if f.Until != nil {
		until = *f.Until
	}
	if since > until {
		return
	}
	// a stream that is not walked newest-first must be collected in
	// full; the descending trim below settles its limit
	timeOrdered := true
	collect := func(ser uint64) (stop bool, err error) {
		var ev *event.E
		if ev, err = fetchBySerial(txn, ser); err != nil {
			if err == badger.ErrKeyNotFound {
				return false, nil
			}
			return
		}
		if ev.Expired(now) || !f.Match(ev) {
			return false, nil
		}
		evs = append(evs, ev)
		return timeOrdered && uint(len(evs)) >= limit, nil
	}
	switch {
	case len(f.IDs) > 0:
		timeOrdered = false
		for _, p := range f.IDs {
			if err = scanIDPrefix(txn, p, collect); chk.E(err) {
				return
			}
		}
	case len(f.Authors) > 0 && len(f.Kinds) > 0 && fullLength(f.Authors):
		for _, a := range f.Authors {
			pk, _ := hex.Dec(a)
			for _, k := range f.Kinds {
				if err = scanRange(
					txn, identPrefix(pk, k), since, until, collect,
				); chk.E(err) {
					return
				}
			}
		}
	case len(f.Authors) > 0:
		for _, a := range f.Authors {
			prefix := append([]byte{prfPubkey}, hexPrefixBytes(a)...)
			if len(a) == 64 {
				err = scanRange(txn, prefix, since, until, collect)
			} else {
				err = scanPrefix(txn, prefix, collect)
			}
			if chk.E(err) {
				return
			}
		}
	case len(f.Kinds) > 0:
		for _, k := range f.Kinds {
			prefix := []byte{prfKind, byte(k >> 8), byte(k)}
			if err = scanRange(txn, prefix, since, until, collect); chk.E(err) {
				return
			}
		}
	default:
		if err = scanRange(
			txn, []byte{prfCreated}, since, until, collect,
		); chk.E(err) {
			return
		}
	}
	// per-stream early stop over-collects across streams
	if uint(len(evs)) > limit {
		sortEvents(evs)
		evs = evs[:limit]
	}
	return
}

func fullLength(prefixes []string) bool {
	for _, p := range prefixes {
		if len(p) != 64 {
			return false
		}
	}
	return true
}

// hexPrefixBytes converts a hex prefix to its even-length byte prefix; an
// odd trailing nibble widens the scan and is settled by the predicate.
func hexPrefixBytes(p string) (b []byte) {
	if len(p)%2 == 1 {
		p = p[:len(p)-1]
	}
	b, _ = hex.Dec(p)
	return
}

// scanRange walks an index whose keys end in ts|serial, newest first,
// bounded to [since, until].
func scanRange(
	txn *badger.Txn, prefix []byte, since, until int64,
	fn func(ser uint64) (stop bool, err error),
) (err error) {
	it := txn.NewIterator(
		badger.IteratorOptions{Reverse: true, Prefix: prefix},
	)
	defer it.Close()
	seek := appendUint64(append([]byte{}, prefix...), indexTs(until))
	seek = appendUint64(seek, math.MaxUint64)
	for it.Seek(seek); it.Valid(); it.Next() {
		key := it.Item().Key()
		if tsFromKey(key) < since {
			break
		}
		var stop bool
		if stop, err = fn(serialFromKey(key)); err != nil || stop {
			return
		}
	}
	return
}

// scanPrefix walks every serial under a prefix in key order; used for
// partial pubkey prefixes where no timestamp bound is in the key path.
func scanPrefix(
	txn *badger.Txn, prefix []byte,
	fn func(ser uint64) (stop bool, err error),
) (err error) {
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		var stop bool
		if stop, err = fn(serialFromKey(it.Item().Key())); err != nil ||
			stop {
			return
		}
	}
	return
}

// scanIDPrefix resolves an id hex prefix through the id index. A full id
// is a point lookup; shorter prefixes scan the covering byte range.
func scanIDPrefix(
	txn *badger.Txn, p string, fn func(ser uint64) (stop bool, err error),
) (err error) {
	if len(p) == 64 {
		id, _ := hex.Dec(p)
		var ser uint64
		var found bool
		if ser, found, err = getSerialByID(txn, id); err != nil {
			return
		}
		if !found {
			return
		}
		_, err = fn(ser)
		return
	}
	prefix := append([]byte{prfID}, hexPrefixBytes(p)...)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		var ser uint64
		err = it.Item().Value(
			func(val []byte) error {
				ser = serialFromKey(val)
				return nil
			},
		)
		if chk.E(err) {
			return
		}
		var stop bool
		if stop, err = fn(ser); err != nil || stop {
			return
		}
	}
	return
}

// getSerialByID resolves an exact id to its serial.
func getSerialByID(txn *badger.Txn, id []byte) (
	ser uint64, found bool, err error,
) {
	var item *badger.Item
	if item, err = txn.Get(idKey(id)); err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, false, nil
		}
		return
	}
	err = item.Value(
		func(val []byte) error {
			ser = serialFromKey(val)
			return nil
		},
	)
	found = err == nil
	return
}
