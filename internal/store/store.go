// Package store persists per-stage segmentation snapshots in an embedded
// badger database so a run can resume from any completed stage.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/segment"
)

// Store errors.
var (
	ErrSnapshotNotFound   = errors.Wrap(segment.ErrNotStored, "snapshot not found")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

const (
	recordVersion = 1
	keyPrefix     = "snapshot/"
)

// Options configures Open.
type Options struct {
	// Dir is the database directory. Empty keeps everything in memory.
	Dir string
	// SyncWrites fsyncs every save.
	SyncWrites bool
	Log        *zap.Logger
}

// Store is a snapshot database shared by every mesh.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

type record struct {
	Version  int               `cbor:"1,keyasint"`
	SavedAt  time.Time         `cbor:"2,keyasint"`
	Snapshot *segment.Snapshot `cbor:"3,keyasint"`
}

// Open opens or creates the database.
func Open(opts Options) (*Store, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	dbOpts := badger.DefaultOptions(opts.Dir).
		WithInMemory(opts.Dir == "").
		WithSyncWrites(opts.SyncWrites).
		WithLogger(badgerLogger{log.Named("badger").Sugar()})
	dbOpts.MetricsEnabled = false

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening snapshot store %q", opts.Dir)
	}
	log.Debug("snapshot store opened", zap.String("dir", opts.Dir), zap.Bool("in_memory", opts.Dir == ""))
	return &Store{db: db, log: log}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshots returns the snapshot set of one mesh, keyed by a caller-chosen
// mesh key such as its absolute path.
func (s *Store) Snapshots(meshKey string) *Snapshots {
	return &Snapshots{store: s, prefix: keyPrefix + meshKey + "/"}
}

// Meshes lists every mesh key that has at least one snapshot.
func (s *Store) Meshes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(keyPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), keyPrefix)
			i := strings.LastIndexByte(rest, '/')
			if i < 0 {
				continue
			}
			if k := rest[:i]; !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		return nil
	})
	return keys, err
}

// Snapshots is the snapshot set of one mesh. It satisfies
// segment.Checkpointer.
type Snapshots struct {
	store  *Store
	prefix string
}

func (ss *Snapshots) key(stage segment.Stage) []byte {
	return []byte(ss.prefix + string(stage))
}

// Save stores snap under stage, replacing any earlier snapshot.
func (ss *Snapshots) Save(ctx context.Context, stage segment.Stage, snap *segment.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	buf, err := cbor.Marshal(record{Version: recordVersion, SavedAt: time.Now().UTC(), Snapshot: snap})
	if err != nil {
		return errors.Wrapf(err, "encoding %s snapshot", stage)
	}
	err = ss.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ss.key(stage), buf)
	})
	if err != nil {
		return errors.Wrapf(err, "writing %s snapshot", stage)
	}
	ss.store.log.Debug("snapshot saved", zap.Stringer("stage", stage), zap.Int("bytes", len(buf)))
	return nil
}

// Load returns the snapshot of stage, or an error wrapping
// ErrSnapshotNotFound (and so segment.ErrNotStored) when it was never saved.
func (ss *Snapshots) Load(ctx context.Context, stage segment.Stage) (*segment.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf []byte
	err := ss.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ss.key(stage))
		if err != nil {
			return err
		}
		buf, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrSnapshotNotFound, "stage %s", stage)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s snapshot", stage)
	}

	var rec record
	if err := cbor.Unmarshal(buf, &rec); err != nil {
		return nil, errors.Wrapf(err, "decoding %s snapshot", stage)
	}
	if rec.Version != recordVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "stage %s has version %d", stage, rec.Version)
	}
	if rec.Snapshot == nil {
		return nil, errors.Errorf("stage %s record holds no snapshot", stage)
	}
	return rec.Snapshot, nil
}

// Stages lists the stored stages in pipeline order.
func (ss *Snapshots) Stages(ctx context.Context) ([]segment.Stage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := make(map[segment.Stage]bool)
	err := ss.store.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(ss.prefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			name := strings.TrimPrefix(string(it.Item().Key()), ss.prefix)
			// Keys of meshes nested under this one fail to parse.
			if st, err := segment.ParseStage(name); err == nil {
				stored[st] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var out []segment.Stage
	for _, st := range segment.Stages {
		if stored[st] {
			out = append(out, st)
		}
	}
	return out, nil
}

// Clear drops every snapshot of the mesh.
func (ss *Snapshots) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ss.store.db.Update(func(txn *badger.Txn) error {
		for _, st := range segment.Stages {
			if err := txn.Delete(ss.key(st)); err != nil {
				return err
			}
		}
		return nil
	})
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.s.Errorf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.s.Warnf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.s.Debugf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.s.Debugf(strings.TrimSpace(format), args...)
}
