package plugin

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	Rt "github.com/maroda/respira/types"
)

type BadgerOutput struct {
	MU        sync.Mutex
	DB        *badger.DB
	BatchSize int
	Buffer    []*Rt.Analysis
}

func NewBadgerOutput(path string, batchSize int) (*BadgerOutput, error) {
	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		slog.Error("BadgerOutput failed to open database", slog.Any("error", err))
		return nil, fmt.Errorf("database error: %w", err)
	}

	slog.Info("BadgerOutput opened",
		slog.String("path", path),
		slog.Int("batchSize", batchSize))

	return &BadgerOutput{
		DB:        db,
		BatchSize: batchSize,
		Buffer:    make([]*Rt.Analysis, 0, batchSize),
	}, nil
}

// WriteAnalysis queues up a batch of analyses,
// when batchsize is reached, it calls flushLocked()
// which calls WriteBatch() with the new batch
func (bo *BadgerOutput) WriteAnalysis(a *Rt.Analysis) error {
	bo.MU.Lock()
	defer bo.MU.Unlock()

	bo.Buffer = append(bo.Buffer, a)
	if len(bo.Buffer) >= bo.BatchSize {
		return bo.flushLocked()
	}
	return nil
}

// WriteBatch performs the key/value creation to be stored
// and actually calls BadgerDB to write the data.
// A segment analysed twice overwrites its previous entry.
func (bo *BadgerOutput) WriteBatch(as []*Rt.Analysis) error {
	wb := bo.DB.NewWriteBatch()
	defer wb.Cancel()

	for _, a := range as {
		v, err := AnalysisEncode(a)
		if err != nil {
			slog.Error("BadgerOutput failed to encode analysis",
				slog.Any("error", err),
				slog.String("record", a.Segment.Record))
			return fmt.Errorf("encode error: %w", err)
		}
		if err := wb.Set(AnalysisKey(a.Segment), v); err != nil {
			slog.Error("BadgerOutput failed to set key in batch",
				slog.Any("error", err),
				slog.String("record", a.Segment.Record),
				slog.Int("offset", a.Segment.Offset))
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		slog.Error("BadgerOutput failed to flush batch", slog.Any("error", err))
		return fmt.Errorf("batch flush error: %w", err)
	}

	return nil
}

// Flush is the public method that blocks,
// it sends data to WriteBatch and then clears the buffer
func (bo *BadgerOutput) Flush() error {
	bo.MU.Lock()
	defer bo.MU.Unlock()

	if len(bo.Buffer) == 0 {
		return nil
	}

	return bo.flushLocked()
}

// flushLocked mimics Flush without locking
func (bo *BadgerOutput) flushLocked() error {
	err := bo.WriteBatch(bo.Buffer)
	bo.Buffer = bo.Buffer[:0] // Clear but keep capacity
	return err
}

// Close returns a Flush error but still attempts to close
func (bo *BadgerOutput) Close() error {
	slog.Info("BadgerOutput closing, flushing buffer",
		slog.Int("bufferSize", len(bo.Buffer)))
	flushErr := bo.Flush()
	closeErr := bo.DB.Close()

	if flushErr != nil {
		slog.Error("BadgerOutput failed to flush on close", slog.Any("error", flushErr))
		return fmt.Errorf("flush failed, close may have failed: %w", flushErr)
	}

	if closeErr != nil {
		slog.Error("BadgerOutput failed to close database", slog.Any("error", closeErr))
		return fmt.Errorf("close failed: %w", closeErr)
	}

	slog.Info("BadgerOutput closed successfully")
	return nil
}

func (bo *BadgerOutput) Type() string { return "BadgerDB" }

// RecordPrefix is the key prefix shared by all segments of one record:
// the record name and a zero byte, so "a01" never matches "a010"
func RecordPrefix(record string) []byte {
	prefix := make([]byte, 0, len(record)+1)
	prefix = append(prefix, record...)
	return append(prefix, 0)
}

// AnalysisKey creates a composite key
// record + 0x00 + offset + length
func AnalysisKey(seg Rt.Segment) []byte {
	key := RecordPrefix(seg.Record)

	// Using positive BigEndian integers
	// so keys of a record sort by offset in BadgerDB
	var nums [8]byte
	binary.BigEndian.PutUint32(nums[0:4], uint32(seg.Offset))
	binary.BigEndian.PutUint32(nums[4:8], uint32(seg.Seconds))

	return append(key, nums[:]...)
}

// AnalysisEncode serializes the analysis struct for data storage
func AnalysisEncode(a *Rt.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AnalysisDecode deserializes the analysis data
func AnalysisDecode(data []byte) (*Rt.Analysis, error) {
	var a Rt.Analysis
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	err := dec.Decode(&a)
	return &a, err
}

// QueryRecord retrieves every stored analysis of a record, ordered by offset
func (bo *BadgerOutput) QueryRecord(record string) ([]*Rt.Analysis, error) {
	var analyses []*Rt.Analysis
	prefix := RecordPrefix(record)

	// db.View() callback
	// BadgerDB provides a transaction in which to get item.Value()
	err := bo.DB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			// item.Value() callback
			// BadgerDB passes bytes to the anon func
			err := item.Value(func(val []byte) error {
				a, err := AnalysisDecode(val)
				if err != nil {
					slog.Error("BadgerOutput failed to decode analysis", slog.Any("error", err))
					return fmt.Errorf("analysis decode error: %w", err)
				}
				analyses = append(analyses, a)
				return nil
			})
			if err != nil {
				slog.Error("BadgerOutput callback failure", slog.Any("error", err))
				return fmt.Errorf("item data error: %w", err)
			}
		}
		return nil
	})

	slog.Info("BadgerOutput QueryRecord successful",
		slog.String("record", record),
		slog.Int("count", len(analyses)))

	return analyses, err
}
