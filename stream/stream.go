// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package stream implements a single-use stream of records drawn from one or
// more sources of JSON text.
//
// A Stream may be consumed exactly once, by one of three methods:
//
//	Method    | Delivers
//	--------- | ------------------------------------------------
//	Records   | each record as a materialized *doc.Map
//	Readers   | each record as a *jrecord.Reader
//	StreamTo  | each record as a *doc.Map, pushed to a Listener
//
// Once one of these has been called, calls to any of them report an error of
// kind jrecord.StreamInUse. This holds even when the first calls race from
// separate goroutines: exactly one caller wins.
//
// Close releases the sources of a stream. It may be called at any time, and
// more than once.
package stream

import (
	"errors"
	"io"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/creachadair/jrecord"
	"github.com/creachadair/jrecord/doc"
)

type lifecycle int32

const (
	unconsumed lifecycle = iota
	consuming
	closedUnused // closed before any consumer method was called
	closed
)

var stateName = [...]string{"unconsumed", "consuming", "closed-unused", "closed"}

func (c lifecycle) String() string { return stateName[c] }

// Options control the behavior of a Stream. A nil *Options is ready for use
// and provides default values.
type Options struct {
	// Options for reading records from the sources.
	jrecord.Options

	// The policy for duplicate field names in materialized records.
	Duplicates doc.DuplicatePolicy
}

func (o *Options) reader() *jrecord.Options {
	if o == nil {
		return nil
	}
	return &o.Options
}

func (o *Options) doc() *doc.Options {
	if o == nil {
		return nil
	}
	return &doc.Options{Duplicates: o.Duplicates}
}

// A Stream is a sequence of records read from one or more sources.
type Stream struct {
	opts *Options
	log  *slog.Logger
	srcs []io.Reader

	state atomic.Int32 // a lifecycle value

	mu      sync.Mutex
	cur     *jrecord.Reader // the reader most recently delivered, or nil
	nrec    int             // number of records delivered
	closers []io.Closer
}

// New constructs a Stream of the records in r, which may contain any number
// of records separated by whitespace. If r implements io.Closer, it is closed
// when the stream is closed.
func New(r io.Reader, opts *Options) *Stream { return FromSources(opts, r) }

// FromSources constructs a Stream of the records in each of srcs in turn.
// When the stream is closed, each source that implements io.Closer is closed,
// whether or not the stream has reached it.
func FromSources(opts *Options, srcs ...io.Reader) *Stream {
	s := &Stream{opts: opts, log: opts.reader().Log(), srcs: srcs}
	for _, src := range srcs {
		if c, ok := src.(io.Closer); ok {
			s.closers = append(s.closers, c)
		}
	}
	return s
}

// acquire transitions s from unconsumed to consuming on behalf of the named
// consumer method.
func (s *Stream) acquire(method string) error {
	if s.state.CompareAndSwap(int32(unconsumed), int32(consuming)) {
		s.log.Debug("stream consumed", "method", method, "sources", len(s.srcs))
		return nil
	}
	// A stream closed before its first use is not "in use".
	if lifecycle(s.state.Load()) == closedUnused {
		return jrecord.Errorf(jrecord.IllegalState, "%s: stream is closed", method)
	}
	return jrecord.Errorf(jrecord.StreamInUse, "%s: stream has already been consumed", method)
}

func (s *Stream) isClosed() bool { return lifecycle(s.state.Load()) >= closedUnused }

// setCurrent records r as the reader most recently delivered. It reports
// false if the stream has been closed, in which case r is closed.
func (s *Stream) setCurrent(r *jrecord.Reader) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		r.Close()
		return false
	}
	s.cur = r
	s.nrec++
	return true
}

// readers is the common producer for all consumer methods.  It delivers each
// record of the stream to yield as a fresh reader. When yield returns, the
// remainder of the record is discarded and the reader is invalidated.
func (s *Stream) readers(yield func(*jrecord.Reader, error) bool) {
	ropts := s.opts.reader()
	for i, src := range s.srcs {
		sc := ropts.NewScanner(src)
		for {
			if s.isClosed() {
				return
			}
			if err := sc.Advance(); err == io.EOF {
				break
			} else if err != nil {
				e := jrecord.Errorf(jrecord.MalformedInput, "source %d: %w", i, err)
				e.Location = sc.Location().First
				yield(nil, e)
				return
			}
			r := jrecord.NewScannerReader(sc, ropts)
			if !s.setCurrent(r) {
				return
			}
			if !yield(r, nil) {
				r.Close()
				return
			} else if s.isClosed() {
				return
			}
			if r.Event() != jrecord.EventEOF && r.Err() == nil {
				s.log.Debug("discarding unread record", "record", s.nrec, "depth", r.Depth())
			}
			err := r.Err()
			if err == nil {
				err = r.Discard()
			}
			r.Close()
			if err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// Readers returns a single-use iterator over a reader for each record of s.
//
// A reader is valid only until the iterator advances. Any part of its record
// not yet read is then discarded, and its methods report IllegalState. If
// the stream cannot advance, the iterator yields a nil reader and the error,
// and stops.
func (s *Stream) Readers() (iter.Seq2[*jrecord.Reader, error], error) {
	if err := s.acquire("Readers"); err != nil {
		return nil, err
	}
	return once[*jrecord.Reader](s.readers), nil
}

// Records returns a single-use iterator over the materialized records of s.
// If a record cannot be read, the iterator yields a nil map and the error,
// and stops.
func (s *Stream) Records() (iter.Seq2[*doc.Map, error], error) {
	if err := s.acquire("Records"); err != nil {
		return nil, err
	}
	return once[*doc.Map](s.records), nil
}

func (s *Stream) records(yield func(*doc.Map, error) bool) {
	dopts := s.opts.doc()
	for r, err := range s.readers {
		if err != nil {
			yield(nil, err)
			return
		}
		m, err := doc.Materialize(r, dopts)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(m, nil) {
			return
		}
	}
}

// once wraps seq so that ranging over it more than once reports StreamInUse.
func once[T any](seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	var ran atomic.Bool
	return func(yield func(T, error) bool) {
		if !ran.CompareAndSwap(false, true) {
			var zero T
			yield(zero, jrecord.Errorf(jrecord.StreamInUse, "iterator has already been used"))
			return
		}
		seq(yield)
	}
}

// A Listener receives the records of a stream from StreamTo.
type Listener interface {
	// Record is called with each record of the stream in order. If it reports
	// an error, streaming stops and StreamTo returns that error.
	Record(*doc.Map) error

	// Failed is called if the stream cannot read a record. No further
	// methods of the listener are called.
	Failed(error)

	// EndOfStream is called after the last record has been delivered.
	EndOfStream()
}

// StreamTo reads each record of s and delivers it to l. If all the records
// are delivered, StreamTo calls l.EndOfStream and returns nil. If a record
// cannot be read, StreamTo calls l.Failed and returns the error.
//
// If s is closed while StreamTo is running, delivery stops without calling
// EndOfStream, and StreamTo reports IllegalState.
func (s *Stream) StreamTo(l Listener) error {
	if err := s.acquire("StreamTo"); err != nil {
		return err
	}
	for m, err := range s.records {
		if err != nil {
			l.Failed(err)
			return err
		}
		if err := l.Record(m); err != nil {
			return err
		}
	}
	if s.isClosed() {
		return jrecord.Errorf(jrecord.IllegalState, "stream closed during delivery")
	}
	l.EndOfStream()
	return nil
}

// Close closes s, invalidating any reader it has delivered, and closes each
// source that implements io.Closer. Close is safe to call in any state and
// more than once; only the first call reports errors from the sources.
func (s *Stream) Close() error {
	var prev lifecycle
	for {
		prev = lifecycle(s.state.Load())
		if prev >= closedUnused {
			return nil
		}
		next := closed
		if prev == unconsumed {
			next = closedUnused
		}
		if s.state.CompareAndSwap(int32(prev), int32(next)) {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		s.cur.Close()
		s.cur = nil
	}
	var errs []error
	for i, c := range s.closers {
		if err := c.Close(); err != nil {
			s.log.Warn("closing stream source", "source", i, "error", err)
			errs = append(errs, err)
		}
	}
	s.closers = nil
	s.log.Debug("stream closed", "from", prev.String(), "records", s.nrec)
	return errors.Join(errs...)
}

// A Planner is implemented by record sources that can describe how their
// records are produced.
type Planner interface {
	// QueryPlan returns a document describing the plan. It may return nil if
	// no plan is available.
	QueryPlan() *doc.Map
}

// QueryPlan returns the plan reported by x, if x implements Planner and
// reports a plan; otherwise it returns a new empty document.
func QueryPlan(x any) *doc.Map {
	if p, ok := x.(Planner); ok {
		if plan := p.QueryPlan(); plan != nil {
			return plan
		}
	}
	return new(doc.Map)
}
