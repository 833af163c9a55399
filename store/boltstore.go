package store

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/bitfsorg/libsafe-go/utxo"
)

var (
	bucketTxs   = []byte("txs")
	bucketSpent = []byte("spent")
	bucketMeta  = []byte("meta")

	keyTip = []byte("tip")
)

// BoltStore persists wallet transactions in a bbolt database.
type BoltStore struct {
	db  *bbolt.DB
	log *zap.SugaredLogger
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist. A nil logger
// disables logging.
func OpenBoltStore(dbPath string, log *zap.SugaredLogger) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(err, "store: create directory")
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "store: open bolt db")
	}

	err = db.Update(func(btx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTxs, bucketSpent, bucketMeta} {
			if _, err := btx.CreateBucketIfNotExists(name); err != nil {
				return errors.Wrapf(err, "store: create bucket %q", name)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "store: create buckets")
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &BoltStore{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// heightKey encodes a block height as a 4-byte big-endian value.
func heightKey(h uint32) []byte {
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, h)
	return k
}

// outpointKey is the TxID followed by the big-endian output position.
func outpointKey(txID chainhash.Hash, vout uint32) []byte {
	k := make([]byte, 0, chainhash.HashSize+4)
	k = append(k, txID[:]...)
	return append(k, heightKey(vout)...)
}

// PutTransaction stores a transaction. Returns ErrDuplicateTx if the TxID
// already exists.
func (s *BoltStore) PutTransaction(t *utxo.Transaction) error {
	if t == nil {
		return errors.Wrap(ErrNilParam, "transaction")
	}
	rec, err := toRecord(t)
	if err != nil {
		return err
	}
	data, err := encodeGob(rec)
	if err != nil {
		return errors.Wrap(err, "store: encode transaction")
	}

	err = s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxs)
		if b.Get(t.TxID[:]) != nil {
			return ErrDuplicateTx
		}
		return errors.Wrap(b.Put(t.TxID[:], data), "store: put transaction")
	})
	if err != nil {
		return err
	}
	s.log.Debugw("stored transaction", "txid", t.TxID.String(), "owned", len(t.Owned))
	return nil
}

// GetTransaction retrieves a transaction by TxID.
func (s *BoltStore) GetTransaction(txID chainhash.Hash) (*utxo.Transaction, error) {
	var t *utxo.Transaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		var err error
		t, err = getTx(btx, txID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func getTx(btx *bbolt.Tx, txID chainhash.Hash) (*utxo.Transaction, error) {
	data := btx.Bucket(bucketTxs).Get(txID[:])
	if data == nil {
		return nil, ErrTxNotFound
	}
	var rec record
	if err := decodeGob(data, &rec); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "decode transaction %s: %v", txID, err)
	}
	return fromRecord(txID, &rec)
}

// ConfirmTransaction records the block height that included a transaction.
func (s *BoltStore) ConfirmTransaction(txID chainhash.Hash, height uint32) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxs)
		data := b.Get(txID[:])
		if data == nil {
			return ErrTxNotFound
		}
		var rec record
		if err := decodeGob(data, &rec); err != nil {
			return errors.Wrapf(ErrCorrupt, "decode transaction %s: %v", txID, err)
		}
		rec.Confirmed = true
		rec.Height = height
		updated, err := encodeGob(&rec)
		if err != nil {
			return errors.Wrap(err, "store: encode transaction")
		}
		return errors.Wrap(b.Put(txID[:], updated), "store: update transaction")
	})
}

// MarkSpent records that owned output vout of txID was consumed.
func (s *BoltStore) MarkSpent(txID chainhash.Hash, vout uint32) error {
	err := s.db.Update(func(btx *bbolt.Tx) error {
		t, err := getTx(btx, txID)
		if err != nil {
			return err
		}
		if !slices.Contains(t.Owned, vout) {
			return errors.Wrapf(ErrInvalidOutput, "%s:%d is not owned", txID, vout)
		}
		return errors.Wrap(btx.Bucket(bucketSpent).Put(outpointKey(txID, vout), []byte{1}), "store: mark spent")
	})
	if err != nil {
		return err
	}
	s.log.Debugw("marked output spent", "txid", txID.String(), "vout", vout)
	return nil
}

// DeleteTransaction removes a transaction and its spent markers.
func (s *BoltStore) DeleteTransaction(txID chainhash.Hash) error {
	err := s.db.Update(func(btx *bbolt.Tx) error {
		b := btx.Bucket(bucketTxs)
		if b.Get(txID[:]) == nil {
			return ErrTxNotFound
		}
		if err := b.Delete(txID[:]); err != nil {
			return errors.Wrap(err, "store: delete transaction")
		}

		spent := btx.Bucket(bucketSpent)
		var stale [][]byte
		c := spent.Cursor()
		for k, _ := c.Seek(txID[:]); k != nil && bytes.HasPrefix(k, txID[:]); k, _ = c.Next() {
			stale = append(stale, slices.Clone(k))
		}
		for _, k := range stale {
			if err := spent.Delete(k); err != nil {
				return errors.Wrap(err, "store: delete spent marker")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Debugw("deleted transaction", "txid", txID.String())
	return nil
}

// SetTip records the chain tip height.
func (s *BoltStore) SetTip(height uint32) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return errors.Wrap(btx.Bucket(bucketMeta).Put(keyTip, heightKey(height)), "store: put tip")
	})
}

// LastBlockHeight returns the recorded chain tip.
func (s *BoltStore) LastBlockHeight() (uint32, bool, error) {
	var (
		height uint32
		ok     bool
	)
	err := s.db.View(func(btx *bbolt.Tx) error {
		height, ok = readTip(btx)
		return nil
	})
	return height, ok, err
}

func readTip(btx *bbolt.Tx) (uint32, bool) {
	v := btx.Bucket(bucketMeta).Get(keyTip)
	if len(v) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(v), true
}

// OwnedOutputs returns every unspent owned output.
func (s *BoltStore) OwnedOutputs() ([]*utxo.OwnedOutput, error) {
	var outs []*utxo.OwnedOutput
	err := s.db.View(func(btx *bbolt.Tx) error {
		var err error
		outs, err = readOwned(btx)
		return err
	})
	return outs, err
}

// Snapshot returns the unspent owned outputs and chain tip from one read
// transaction. The tip is 0 when none has been recorded.
func (s *BoltStore) Snapshot() ([]*utxo.OwnedOutput, uint32, error) {
	var (
		outs []*utxo.OwnedOutput
		tip  uint32
	)
	err := s.db.View(func(btx *bbolt.Tx) error {
		var err error
		if outs, err = readOwned(btx); err != nil {
			return err
		}
		tip, _ = readTip(btx)
		return nil
	})
	return outs, tip, err
}

func readOwned(btx *bbolt.Tx) ([]*utxo.OwnedOutput, error) {
	txs, err := readAll(btx)
	if err != nil {
		return nil, err
	}
	spent := btx.Bucket(bucketSpent)
	var outs []*utxo.OwnedOutput
	for _, t := range txs {
		outs = append(outs, ownedOutputs(t, func(vout uint32) bool {
			return spent.Get(outpointKey(t.TxID, vout)) != nil
		})...)
	}
	return outs, nil
}

// Transactions returns every stored transaction ordered by timestamp.
func (s *BoltStore) Transactions() ([]*utxo.Transaction, error) {
	var txs []*utxo.Transaction
	err := s.db.View(func(btx *bbolt.Tx) error {
		var err error
		txs, err = readAll(btx)
		return err
	})
	return txs, err
}

func readAll(btx *bbolt.Tx) ([]*utxo.Transaction, error) {
	var txs []*utxo.Transaction
	err := btx.Bucket(bucketTxs).ForEach(func(k, v []byte) error {
		txID, err := chainhash.NewHash(k)
		if err != nil {
			return errors.Wrapf(ErrCorrupt, "transaction key: %v", err)
		}
		var rec record
		if err := decodeGob(v, &rec); err != nil {
			return errors.Wrapf(ErrCorrupt, "decode transaction %s: %v", txID, err)
		}
		t, err := fromRecord(*txID, &rec)
		if err != nil {
			return err
		}
		txs = append(txs, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortByTime(txs)
	return txs, nil
}

// sortByTime orders transactions by timestamp, keeping key order for ties.
func sortByTime(txs []*utxo.Transaction) {
	slices.SortStableFunc(txs, func(a, b *utxo.Transaction) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
}
