package recording

import (
	"context"
	"database/sql"
	"encoding/binary"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Dataset keys of the recording container.
const (
	keyStatistics = "statistics"
	keyTimestamps = "timestamps"
)

const (
	dtypeFloat32 = "float32"
	dtypeFloat64 = "float64"
)

// ErrNotFound reports a missing or incomplete recording container. It is
// fatal for the run and surfaced to the caller verbatim; there are no
// retries at this layer.
var ErrNotFound = errors.New("recording data not found")

//go:embed schema.sql
var schemaSQL string

const (
	insertDatasetSQL = `
INSERT OR REPLACE INTO datasets (key, rank, dim0, dim1, dim2, dtype, data)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectDatasetSQL = `
SELECT
    rank,
    dim0,
    dim1,
    dim2,
    dtype,
    data
FROM datasets
WHERE
    key = ?`
)

// Store reads and writes recording containers: SQLite files holding keyed
// numeric datasets ("statistics" for the [T, P, F] intensity tensor,
// "timestamps" for the per-step time axis). Containers are opened lazily;
// reads use a dedicated read-only connection so concurrent analysis runs
// can share one source recording.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// NewStore creates a store for the container at dbPath. The file is not
// touched until the first read or write.
func NewStore(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		if _, err := os.Stat(s.dbPath); err != nil {
			s.readDBErr = fmt.Errorf("container %s: %w", s.dbPath, ErrNotFound)
			return
		}

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// PutTensor stores the intensity tensor under the "statistics" key,
// replacing any prior dataset.
func (s *Store) PutTensor(ctx context.Context, x *Tensor) error {
	t, p, f := x.Dims()
	return s.putDataset(ctx, keyStatistics, 3, [3]int{t, p, f}, dtypeFloat32, encodeFloat32(x.Raw()))
}

// PutTimestamps stores a flat [T] timestamp axis of fractional Unix
// seconds under the "timestamps" key.
func (s *Store) PutTimestamps(ctx context.Context, ts []float64) error {
	return s.putDataset(ctx, keyTimestamps, 1, [3]int{len(ts), 0, 0}, dtypeFloat64, encodeFloat64(ts))
}

// PutSplitTimestamps stores a [T, 2] timestamp axis of (seconds,
// milliseconds) pairs, the layout some interrogator firmwares emit.
func (s *Store) PutSplitTimestamps(ctx context.Context, pairs [][2]float64) error {
	flat := make([]float64, 0, len(pairs)*2)
	for _, p := range pairs {
		flat = append(flat, p[0], p[1])
	}
	return s.putDataset(ctx, keyTimestamps, 2, [3]int{len(pairs), 2, 0}, dtypeFloat64, encodeFloat64(flat))
}

func (s *Store) putDataset(ctx context.Context, key string, rank int, dims [3]int, dtype string, data []byte) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertDatasetSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, key, rank, dims[0], dims[1], dims[2], dtype, data); err != nil {
		return fmt.Errorf("inserting dataset %s: %w", key, err)
	}
	return nil
}

type dataset struct {
	rank  int
	dims  [3]int
	dtype string
	data  []byte
}

func (s *Store) readDataset(ctx context.Context, key string) (ds *dataset, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	stmt, err := db.PrepareContext(ctx, selectDatasetSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var d dataset
	err = stmt.QueryRowContext(ctx, key).Scan(&d.rank, &d.dims[0], &d.dims[1], &d.dims[2], &d.dtype, &d.data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning dataset %s: %w", key, err)
	}
	return &d, nil
}

// Load reads the full recording from the container. It fails with
// ErrNotFound when the container file or either dataset is missing.
func (s *Store) Load(ctx context.Context) (*Recording, error) {
	stats, err := s.readDataset(ctx, keyStatistics)
	if err != nil {
		return nil, err
	}
	if stats.rank != 3 || stats.dtype != dtypeFloat32 {
		return nil, fmt.Errorf("dataset %s: expected rank-3 float32, got rank-%d %s",
			keyStatistics, stats.rank, stats.dtype)
	}

	t, p, f := stats.dims[0], stats.dims[1], stats.dims[2]
	values, err := decodeFloat32(stats.data, t*p*f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", keyStatistics, err)
	}

	timestamps, err := s.loadTimestamps(ctx, t)
	if err != nil {
		return nil, err
	}

	return &Recording{
		Intensity:  &Tensor{data: values, t: t, p: p, f: f},
		Timestamps: timestamps,
	}, nil
}

func (s *Store) loadTimestamps(ctx context.Context, wantT int) ([]float64, error) {
	ds, err := s.readDataset(ctx, keyTimestamps)
	if err != nil {
		return nil, err
	}
	if ds.dtype != dtypeFloat64 {
		return nil, fmt.Errorf("dataset %s: expected float64, got %s", keyTimestamps, ds.dtype)
	}

	switch ds.rank {
	case 1:
		ts, err := decodeFloat64(ds.data, ds.dims[0])
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", keyTimestamps, err)
		}
		if len(ts) != wantT {
			return nil, fmt.Errorf("dataset %s: %d timestamps for %d time steps", keyTimestamps, len(ts), wantT)
		}
		return ts, nil

	case 2:
		// (seconds, milliseconds) pairs collapse to fractional seconds.
		if ds.dims[1] != 2 {
			return nil, fmt.Errorf("dataset %s: expected [T,2] pairs, got [%d,%d]", keyTimestamps, ds.dims[0], ds.dims[1])
		}
		flat, err := decodeFloat64(ds.data, ds.dims[0]*2)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", keyTimestamps, err)
		}
		if ds.dims[0] != wantT {
			return nil, fmt.Errorf("dataset %s: %d timestamps for %d time steps", keyTimestamps, ds.dims[0], wantT)
		}
		ts := make([]float64, ds.dims[0])
		for i := range ts {
			ts[i] = flat[2*i] + flat[2*i+1]/1000.0
		}
		return ts, nil

	default:
		return nil, fmt.Errorf("dataset %s: unsupported rank %d", keyTimestamps, ds.rank)
	}
}

// Close closes both connections. It is safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}

func encodeFloat32(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32(buf []byte, want int) ([]float32, error) {
	if len(buf) != 4*want {
		return nil, fmt.Errorf("blob holds %d bytes, want %d", len(buf), 4*want)
	}
	values := make([]float32, want)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return values, nil
}

func encodeFloat64(values []float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeFloat64(buf []byte, want int) ([]float64, error) {
	if len(buf) != 8*want {
		return nil, fmt.Errorf("blob holds %d bytes, want %d", len(buf), 8*want)
	}
	values := make([]float64, want)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return values, nil
}
