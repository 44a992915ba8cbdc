// Package database is the badger-backed event store. Events are keyed by a
// monotonic serial from a badger sequence; secondary indexes map id,
// pubkey, kind, created_at, (pubkey, kind) and (pubkey, kind, d-tag)
// lookups to serials. Writes serialize at the store boundary so the
// replacement-delete plus insert group is atomic; reads run on badger
// snapshots.
package database

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"roost.dev/pkg/interfaces/store"
	"roost.dev/pkg/utils/chk"
	"roost.dev/pkg/utils/context"
	"roost.dev/pkg/utils/log"
)

// DbName is the directory created inside the data dir.
const DbName = "relay.db"

// D is the store handle.
type D struct {
	ctx     context.T
	dataDir string
	*badger.DB
	seq *badger.Sequence
	// writeMx serializes writers; the transactional group for replaceable
	// events spans a read of the superseded rows and the insert.
	writeMx sync.Mutex
}

var _ store.I = &D{}

// New opens (creating if necessary) the store under dataDir. Writes are
// synchronous so an OK response is only issued for durable events.
func New(ctx context.T, dataDir string) (d *D, err error) {
	d = &D{ctx: ctx, dataDir: dataDir}
	path := filepath.Join(dataDir, DbName)
	if err = os.MkdirAll(path, 0755); chk.E(err) {
		return
	}
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = true
	opts.CompactL0OnClose = true
	opts.Logger = &logAdapter{}
	if d.DB, err = badger.Open(opts); chk.E(err) {
		return
	}
	log.T.Ln("getting event sequence lease", path)
	if d.seq, err = d.DB.GetSequence([]byte("events"), 1000); chk.E(err) {
		return
	}
	return
}

// Path returns the directory where the database files are stored.
func (d *D) Path() string { return d.dataDir }

// Sync flushes the database buffers to disk.
func (d *D) Sync() (err error) { return d.DB.Sync() }

// Close releases the sequence lease and closes the database.
func (d *D) Close() (err error) {
	if d.seq != nil {
		if err = d.seq.Release(); chk.E(err) {
			return
		}
	}
	if d.DB != nil {
		if err = d.DB.Close(); chk.E(err) {
			return
		}
	}
	return
}

// SweepExpired runs the expiration sweep every interval until the context
// ends.
func (d *D) SweepExpired(c context.T, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.DeleteExpired()
		case <-c.Done():
			return
		}
	}
}

type logAdapter struct{}

func (l *logAdapter) Errorf(format string, a ...any)   { log.E.F(format, a...) }
func (l *logAdapter) Warningf(format string, a ...any) { log.W.F(format, a...) }
func (l *logAdapter) Infof(format string, a ...any)    { log.D.F(format, a...) }
func (l *logAdapter) Debugf(format string, a ...any)   { log.T.F(format, a...) }
