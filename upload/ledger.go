package upload

import (
	"bytes"
	"encoding/gob"
	"errors"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bktUploads = "uploads"
)

// ErrRecordNotFound mirrors the teacher's database sentinel for a missing key.
var ErrRecordNotFound = errors.New("upload record not found")

// Record is what the ledger persists for every saved upload, keyed by its
// final on-disk filename within a location's upload_path.
type Record struct {
	Filename    string
	Size        int64
	ContentType string
	SavedAt     time.Time
}

// Ledger is a small bbolt-backed store recording every file this server has
// ever accepted, surviving process restarts. Grounded on scon/database.go's
// OpenDatabase/bucket-per-concern pattern, adapted from container records to
// upload records.
type Ledger struct {
	db *bbolt.DB
}

// OpenLedger opens (creating if absent) the bbolt database at path and
// ensures the uploads bucket exists.
func OpenLedger(path string) (*Ledger, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	l := &Ledger{db: db}
	if err := l.init(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) init() error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bktUploads))
		return err
	})
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Put records a saved upload under its filename.
func (l *Ledger) Put(rec Record) error {
	data, err := gobEncode(rec)
	if err != nil {
		return err
	}
	return l.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bktUploads))
		if bkt == nil {
			return bbolt.ErrBucketNotFound
		}
		return bkt.Put([]byte(rec.Filename), data)
	})
}

// Get looks up a previously recorded upload by filename.
func (l *Ledger) Get(filename string) (Record, error) {
	var rec Record
	err := l.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket([]byte(bktUploads))
		if bkt == nil {
			return bbolt.ErrBucketNotFound
		}
		data := bkt.Get([]byte(filename))
		if data == nil {
			return ErrRecordNotFound
		}
		return gobDecode(data, &rec)
	})
	return rec, err
}

// Has reports whether filename is already recorded, used alongside the
// on-disk Stat check when picking a collision-free name.
func (l *Ledger) Has(filename string) bool {
	_, err := l.Get(filename)
	return err == nil
}

func gobEncode(val Record) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, val *Record) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(val)
}
