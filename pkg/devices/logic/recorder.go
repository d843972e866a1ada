package logic

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/mash-protocol/mash-logic/pkg/device"
	"github.com/mash-protocol/mash-logic/pkg/lease"
	"github.com/mash-protocol/mash-logic/pkg/signal"
	"github.com/mash-protocol/mash-logic/pkg/wake"
)

// RecorderIn is the input of a recorder.
const RecorderIn signal.ID = 0

// RecordExt is the file extension of recorder files.
const RecordExt = ".rec"

// Record is one recorded value.
type Record struct {
	Session uuid.UUID `cbor:"1,keyasint"`
	Seq     uint64    `cbor:"2,keyasint"`
	Time    time.Time `cbor:"3,keyasint"`
	Value   float64   `cbor:"4,keyasint"`
}

var recordEncMode cbor.EncMode

func init() {
	var err error
	recordEncMode, err = cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create record CBOR encoder mode: %v", err))
	}
}

// recordWriter is the file side of a recorder. Only the lease holder may
// touch it.
type recordWriter struct {
	f   *os.File
	buf *bufio.Writer
	enc *cbor.Encoder
}

// Recorder appends every value it receives to a CBOR record file. Values
// are buffered in TargetsChanged and written by the device task.
type Recorder struct {
	device.Base
	in *signal.StateTargetQueued[float64]

	session uuid.UUID
	path    string
	writer  *lease.Lease[*recordWriter]
	flush   wake.Signal
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	seq     uint64
	pending []Record

	written atomic.Uint64
	syncReq atomic.Bool
	synced  atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

// NewRecorder opens (or creates) path for appending and starts a new
// recording session.
func NewRecorder(path string, logger *slog.Logger) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	buf := bufio.NewWriter(f)
	w := &recordWriter{f: f, buf: buf, enc: recordEncMode.NewEncoder(buf)}

	return &Recorder{
		in:      signal.NewStateTargetQueued[float64](),
		session: uuid.New(),
		path:    path,
		writer:  lease.New(path, w),
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (r *Recorder) Class() string { return ClassRecorder }

func (r *Recorder) Signals() signal.Map {
	return signal.Map{RecorderIn: r.in}
}

func (r *Recorder) SignalNames() map[signal.ID]string {
	return map[signal.ID]string{RecorderIn: "in"}
}

// Session returns the session ID stamped on this run's records.
func (r *Recorder) Session() uuid.UUID { return r.session }

// Path returns the record file path.
func (r *Recorder) Path() string { return r.path }

// Written returns the number of records written to the file.
func (r *Recorder) Written() uint64 { return r.written.Load() }

func (r *Recorder) TargetsChanged() {
	values := r.in.TakePending()
	if len(values) == 0 {
		return
	}
	now := r.now()

	r.mu.Lock()
	for _, v := range values {
		r.seq++
		r.pending = append(r.pending, Record{Session: r.session, Seq: r.seq, Time: now, Value: v})
	}
	r.mu.Unlock()

	r.flush.Wake()
}

// Run writes buffered records until ctx is done, then writes what is left
// and closes the file.
func (r *Recorder) Run(ctx context.Context) device.Exited {
	defer r.Close()
	for {
		if err := r.flush.Wait(ctx); err != nil {
			return device.Exited{}
		}
		if err := r.writePending("recorder task"); err != nil {
			r.logger.Error("record write failed", "path", r.path, "error", err)
		}
	}
}

func (r *Recorder) writePending(holder string) error {
	r.mu.Lock()
	batch := r.pending
	r.pending = nil
	r.mu.Unlock()

	g := r.writer.Acquire(holder)
	defer g.Release()
	w := g.Value()

	for _, rec := range batch {
		if err := w.enc.Encode(rec); err != nil {
			return err
		}
		r.written.Add(1)
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	if r.syncReq.Swap(false) {
		if err := w.f.Sync(); err != nil {
			return err
		}
		r.synced.Add(1)
	}
	return nil
}

// Close writes what is buffered and closes the record file. Run closes on
// exit; a recorder that never runs must be closed by its owner. Only the
// first call has an effect.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() { r.closeErr = r.close() })
	return r.closeErr
}

func (r *Recorder) close() error {
	writeErr := r.writePending("recorder close")
	if writeErr != nil {
		r.logger.Error("record write failed", "path", r.path, "error", writeErr)
	}
	g := r.writer.Acquire("recorder close")
	defer g.Release()
	if err := g.Value().f.Close(); err != nil {
		r.logger.Error("record file close failed", "path", r.path, "error", err)
		return err
	}
	return writeErr
}

// HandleRequest implements device.RequestHandler.
//
//	stats  returns session, written and pending counts
//	sync   asks the task to flush the file to disk
func (r *Recorder) HandleRequest(_ context.Context, req device.Request) device.Response {
	switch req.Method {
	case "stats":
		r.mu.Lock()
		pending := len(r.pending)
		r.mu.Unlock()
		return device.OK(map[string]any{
			"session": r.session.String(),
			"written": r.Written(),
			"pending": pending,
			"synced":  r.synced.Load(),
		})
	case "sync":
		r.syncReq.Store(true)
		r.flush.Wake()
		return device.OK(nil)
	default:
		return device.Fail(device.StatusInvalidMethod, fmt.Sprintf("unknown method %q", req.Method))
	}
}

// ReadRecords decodes every record in rd.
func ReadRecords(rd io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(rd)
	var out []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// ReadRecordFile decodes every record in the file at path.
func ReadRecordFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f)
}
