// Package fid implements a Fast Interval Database: an append-only,
// disk-resident sequence of monotonically non-decreasing sample values,
// queryable by the ordinal index of the first sample greater than or
// equal to a given key.
package fid

import (
	"errors"
	"fmt"

	"github.com/navi-cx/fid/cursor"
	"github.com/navi-cx/fid/page"
)

// DefaultPageSize is used by callers that don't need a specific layout.
// Production FID files historically use 4096; tests commonly shrink this
// to exercise page-boundary behavior without huge sample counts.
const DefaultPageSize = 4096

// MaxSample is the largest representable sample value (56 bits).
const MaxSample = (1 << 56) - 1

// Kind classifies a FID error.
type Kind int

const (
	// Io covers failures reading from or writing to the underlying file.
	Io Kind = iota
	// Monotonicity is returned when an appended sample is smaller than
	// the previous one.
	Monotonicity
	// BadValue is returned when a sample is outside [0, MaxSample].
	BadValue
	// CorruptIndex is returned when an L1 page's on-disk structure can't
	// be interpreted: a t_delta entry with no matching n_delta, or a
	// reverse header that hits its fence before decoding completely.
	// Either can only happen from a truncated or corrupted file.
	CorruptIndex
	// ShortRead classifies a file that yields fewer bytes than the page
	// layout requires for an already-written page. No operation in this
	// package returns it: a short page read is zero-filled and treated as
	// an incomplete tail page.
	ShortRead
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "io"
	case Monotonicity:
		return "monotonicity"
	case BadValue:
		return "bad value"
	case CorruptIndex:
		return "corrupt index"
	case ShortRead:
		return "short read"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func wrapCursorErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cursor.ErrMonotonicity) {
		return newError(Monotonicity, err)
	}
	if errors.Is(err, cursor.ErrCorruptIndex) {
		return newError(CorruptIndex, err)
	}
	return newError(Io, err)
}

// validateAppendValue rejects a sample outright if it's outside
// [0, MaxSample]; append_samples takes only non-negative 56-bit values.
func validateAppendValue(v int64) (uint64, error) {
	if v < 0 {
		return 0, newError(BadValue, fmt.Errorf("sample %d is negative", v))
	}
	if uint64(v) > MaxSample {
		return 0, newError(BadValue, fmt.Errorf("sample %d exceeds %d-bit limit", v, 56))
	}
	return uint64(v), nil
}

// validateKey clamps a negative query key to 0, matching spec for seeks:
// a key less than every stored sample gives the same result as zero.
func validateKey(v int64) (uint64, error) {
	if v < 0 {
		v = 0
	}
	if uint64(v) > MaxSample {
		return 0, newError(BadValue, fmt.Errorf("key %d exceeds %d-bit limit", v, 56))
	}
	return uint64(v), nil
}

// AppendSamples seeks to the end of the file behind f and appends each of
// samples in order, flushing once at the end. samples must already be
// sorted and each value must be greater than or equal to the last sample
// already stored in f. A negative value, or one above MaxSample, fails
// with BadValue (unlike QuerySamples, which treats negative keys as zero).
func AppendSamples(f page.File, pageSize int, samples []int64) error {
	c := cursor.New(f, pageSize)
	if err := c.Seek(cursor.Infinity); err != nil {
		return wrapCursorErr(err)
	}

	for _, s := range samples {
		v, err := validateAppendValue(s)
		if err != nil {
			c.Flush()
			return err
		}
		if err := c.Append(v); err != nil {
			c.Flush()
			return wrapCursorErr(err)
		}
	}

	if err := c.Flush(); err != nil {
		return wrapCursorErr(err)
	}
	return nil
}

// QuerySamples seeks to each of keys in turn and returns, for each, the
// ordinal index of the first sample greater than or equal to that key. If
// a key is greater than every stored sample, its result is one past the
// index of the last sample (i.e. the count of samples that are < key).
// Negative keys are treated as zero.
func QuerySamples(f page.File, pageSize int, keys []int64) ([]int64, error) {
	c := cursor.New(f, pageSize)
	results := make([]int64, 0, len(keys))

	for _, k := range keys {
		v, err := validateKey(k)
		if err != nil {
			return nil, err
		}
		if err := c.Seek(v); err != nil {
			return nil, wrapCursorErr(err)
		}
		idx := c.Ordinal()
		if c.EOF() {
			idx++
		}
		results = append(results, idx)
	}

	return results, nil
}
