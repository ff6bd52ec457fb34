// Package cursor implements the FID cursor: the object that walks all
// three skiplist levels of a FID file to seek to a sample and to append
// new ones. It knows nothing about validating sample values or reporting
// them to a caller in any particular shape; see package fid for that.
package cursor

import (
	"errors"
	"fmt"

	"github.com/navi-cx/fid/list"
	"github.com/navi-cx/fid/page"
	"github.com/navi-cx/fid/varint"
)

// Infinity is a key guaranteed greater than any real sample, used to seek
// to the end of a file (where no sample exists yet) before appending.
const Infinity = uint64(0x7FFFFFFFFFFFFFFE)

// needReset is one greater than Infinity, so it can never collide with a
// real key or with Infinity itself. Assigning it to a cursor's Sample
// field (or, at the L0 level, to l0Watermark) forces the next seek at that
// level to treat the seek as moving backwards and resync from its upstream
// anchor.
const needReset = uint64(0x7FFFFFFFFFFFFFFF)

// l1Reserve is the worst-case number of bytes a single L1 append could
// still need to write: a separator byte, the L2 sample (time delta plus
// two counts), and the L1 sample (time delta plus count). An L1 page
// that can't guarantee this much headroom is considered full.
const l1Reserve = 29

// ErrMonotonicity is returned by Append when the sample given is smaller
// than the last one appended.
var ErrMonotonicity = errors.New("cursor: sample is not greater than or equal to the previous sample")

// ErrCorruptIndex is returned when an L1 page's on-disk structure can't be
// interpreted: a t_delta entry with no matching n_delta, or a reverse
// header that hits its fence before decoding all three of its fields. A
// correctly written page never leaves either half-finished, so either
// condition can only mean the file was truncated or corrupted.
var ErrCorruptIndex = errors.New("cursor: corrupt index page")

// Cursor is positioned at a particular sample (or at end-of-file) within
// a single FID file, and can be moved forward by Seek or extended by
// Append.
type Cursor struct {
	file     page.File
	pageSize int

	l2 list.Cursor
	l1 list.Cursor
	l0 list.Cursor

	// l1Page doubles as the current L2 sample: its reverse-header holds
	// the L2 skiplist entry for this page.
	l1Page *page.Page
	l0Page *page.Page

	// l1Pos and l0Pos point just past the current sample in their
	// respective page's buffer. Pointing to the start of a page means
	// the same thing as pointing past the last sample of the previous
	// one.
	l1Pos int
	l0Pos int

	l0EOF bool

	// l0Watermark detects reverse seeks at the L0 level without relying
	// on the L0 cursor itself, which already points at the second of
	// any two samples straddling a query - using the cursor directly
	// would treat most same-page repeat seeks as reverse seeks.
	l0Watermark uint64

	// Trace, if set, receives a line of narration for every seek and
	// append decision. Nil by default.
	Trace func(format string, args ...any)
}

// New returns a Cursor over file using the given page size. The page size
// must match whatever the file was (or will be) written with.
func New(file page.File, pageSize int) *Cursor {
	return &Cursor{
		file:        file,
		pageSize:    pageSize,
		l1Page:      page.New(pageSize),
		l0Page:      page.New(pageSize),
		l2:          list.Cursor{Sample: needReset},
		l1:          list.Cursor{Sample: needReset},
		l0Watermark: needReset,
	}
}

func (c *Cursor) trace(format string, args ...any) {
	if c.Trace != nil {
		c.Trace(format, args...)
	}
}

// Ordinal returns the 0-based index of the sample the cursor is currently
// positioned on.
func (c *Cursor) Ordinal() int64 { return c.l0.Ordinal }

// EOF reports whether the cursor's last seek ran off the end of the file
// without finding a sample satisfying the key.
func (c *Cursor) EOF() bool { return c.l0EOF }

// Seek moves the cursor to the first sample greater than or equal to key.
// Seeking with Infinity moves to end-of-file, ready for Append.
func (c *Cursor) Seek(key uint64) error {
	c.trace("seeking to %d", key)
	if err := c.seekL2(key); err != nil {
		return fmt.Errorf("cursor: seek l2: %w", err)
	}
	if err := c.seekL1(key); err != nil {
		return fmt.Errorf("cursor: seek l1: %w", err)
	}
	if err := c.seekL0(key); err != nil {
		return fmt.Errorf("cursor: seek l0: %w", err)
	}
	return nil
}

// seekL2 walks the L1 page chain forward, consulting each page's
// reverse-header (the L2 sample for that page), skipping whole L1 pages
// at a time until the next page's L2 sample would be too big.
func (c *Cursor) seekL2(key uint64) error {
	if key < c.l2.Sample {
		c.trace("L2 cursor reset")
		c.l2 = list.Reset()
		if err := c.l1Page.Seek(c.file, 0); err != nil {
			return err
		}
		c.l1.Sample = needReset
	}

	for {
		if err := c.l1Page.Read(c.file); err != nil {
			return err
		}
		buf := c.l1Page.Buf()

		// An incomplete page (no reverse-header yet) ends the seek.
		if buf[c.pageSize-1] == 0x00 {
			break
		}

		// The page's last byte is non-zero, so its reverse header is
		// claimed complete: any read failure past this point means the
		// three fields it promises were truncated or corrupted.
		pos := c.pageSize - 1
		timeDelta, pos, err := varint.ReadReverse(buf, pos, 0)
		if err != nil {
			return ErrCorruptIndex
		}
		nSamples, pos, err := varint.ReadReverse(buf, pos, 0)
		if err != nil {
			return ErrCorruptIndex
		}
		nPages, _, err := varint.ReadReverse(buf, pos, 0)
		if err != nil {
			return ErrCorruptIndex
		}

		if c.l2.Sample+timeDelta < key {
			c.trace("L2 seeking forward by %d pages", nPages)
			c.l2.Advance(list.Delta{Time: timeDelta, N: int64(nSamples)})
			next := c.l1Page.Offset() + int64(1+nPages)*int64(c.pageSize)
			if err := c.l1Page.Seek(c.file, next); err != nil {
				return err
			}
			c.l1.Sample = needReset
		} else {
			break
		}
	}
	return nil
}

// seekL1 walks forward sample-by-sample within the current L1 page, and
// moves the L0 page one page forward for each L1 sample it steps over.
func (c *Cursor) seekL1(key uint64) error {
	if err := c.l1Page.Read(c.file); err != nil {
		return err
	}

	if key < c.l1.Sample {
		c.trace("L1 cursor reset")
		c.l1 = c.l2
		c.l1Pos = 0
		if err := c.l0Page.Seek(c.file, c.l1Page.Offset()+int64(c.pageSize)); err != nil {
			return err
		}
		c.l0Watermark = needReset
	}

	buf := c.l1Page.Buf()
	for {
		timeDelta, pos, err := varint.ReadForward(buf, c.l1Pos, c.pageSize)
		if err != nil {
			// Only expected on an incomplete page: we'd have skipped
			// to the next L1 page already during the L2 seek otherwise.
			break
		}
		nSamples, pos, err := varint.ReadForward(buf, pos, c.pageSize)
		if err != nil {
			// The t_delta decoded fine, so this page already committed
			// to a complete entry; a missing n_delta can only mean the
			// file was truncated or corrupted after that write.
			return ErrCorruptIndex
		}

		if c.l1.Sample+timeDelta < key {
			c.l1.Advance(list.Delta{Time: timeDelta, N: int64(nSamples)})
			c.l1Pos = pos
			if err := c.l0Page.Seek(c.file, c.l0Page.Offset()+int64(c.pageSize)); err != nil {
				return err
			}
			c.l0Watermark = needReset
		} else {
			break
		}
	}
	return nil
}

// seekL0 walks forward sample-by-sample within the current L0 page until
// it finds a sample satisfying key, or runs off the end of the page.
func (c *Cursor) seekL0(key uint64) error {
	if key < c.l0Watermark {
		c.trace("L0 cursor reset")
		c.l0 = c.l1
		c.l0Pos = 0
		c.l0EOF = false
	}
	c.l0Watermark = key

	if err := c.l0Page.Read(c.file); err != nil {
		return err
	}

	buf := c.l0Page.Buf()
	for {
		if c.l0.Sample >= key && c.l0.Ordinal >= 0 {
			break
		}
		timeDelta, pos, err := varint.ReadForward(buf, c.l0Pos, c.l0Page.Size())
		if err != nil {
			c.trace("L0 hit the end")
			c.l0EOF = true
			break
		}
		c.l0.Advance(list.Delta{Time: timeDelta, N: 1})
		c.l0Pos = pos
	}
	return nil
}

// Append adds a new sample after the cursor's current position, which
// must already be seeked to Infinity (end-of-file). Sample must be
// greater than or equal to the last sample appended.
func (c *Cursor) Append(sample uint64) error {
	if sample < c.l0.Sample {
		return ErrMonotonicity
	}
	timeDelta := sample - c.l0.Sample

	if c.l0Pos+varint.Len(timeDelta) > c.pageSize {
		if err := c.completeL0Page(); err != nil {
			return err
		}
	}

	l0buf := c.l0Page.Buf()
	varint.WriteForward(l0buf, c.l0Pos, timeDelta)
	c.l0.Advance(list.Delta{Time: timeDelta, N: 1})
	c.l0Pos += varint.Len(timeDelta)
	c.l0Page.Grow(c.l0Pos)

	return nil
}

// completeL0Page is called when the current L0 page has no room left for
// the sample about to be appended: it writes the L1 sample summarizing
// the page just finished, opens a new L1 sample slot (completing the L1
// page too, if that one is now out of room), and opens a new L0 page.
func (c *Cursor) completeL0Page() error {
	l1Delta := list.Delta{
		Time: c.l0.Sample - c.l1.Sample,
		N:    c.l0.Ordinal - c.l1.Ordinal,
	}
	c.trace("L1 append: %d, %d at %#x", l1Delta.Time, l1Delta.N, c.l1Pos)

	l1buf := c.l1Page.Buf()
	pos := varint.WriteForward(l1buf, c.l1Pos, l1Delta.Time)
	pos = varint.WriteForward(l1buf, pos, uint64(l1Delta.N))
	c.l1Pos = pos
	c.l1.Advance(l1Delta)
	c.l1Page.Grow(c.l1Pos)

	if c.l1Pos+l1Reserve > c.pageSize {
		return c.completeL1Page()
	}

	if err := c.l0Page.Seek(c.file, c.l0Page.Offset()+int64(c.pageSize)); err != nil {
		return err
	}
	c.l0Pos = 0
	return nil
}

// completeL1Page finishes the current L1 page by giving it an L2 sample
// (written as a reverse-header), then opens a new L1 page followed by a
// new L0 page.
func (c *Cursor) completeL1Page() error {
	l2Delta := list.Delta{
		Time: c.l0.Sample - c.l2.Sample,
		N:    c.l0.Ordinal - c.l2.Ordinal,
	}
	l2Pages := (c.l0Page.Offset() - c.l1Page.Offset()) / int64(c.pageSize)
	c.trace("L2 append: %d, %d, %d", l2Delta.Time, l2Delta.N, l2Pages)

	l1buf := c.l1Page.Buf()
	rpos := c.pageSize - 1
	rpos = varint.WriteReverse(l1buf, rpos, l2Delta.Time)
	rpos = varint.WriteReverse(l1buf, rpos, uint64(l2Delta.N))
	varint.WriteReverse(l1buf, rpos, uint64(l2Pages))

	c.l2.Advance(l2Delta)
	c.l1Page.MarkFull()

	if err := c.l1Page.Seek(c.file, c.l0Page.Offset()+int64(c.pageSize)); err != nil {
		return err
	}
	c.l1Pos = 0

	if err := c.l0Page.Seek(c.file, c.l1Page.Offset()+int64(c.pageSize)); err != nil {
		return err
	}
	c.l0Pos = 0
	return nil
}

// Flush writes both resident pages back to file if they have unwritten
// changes.
func (c *Cursor) Flush() error {
	if err := c.l0Page.Write(c.file); err != nil {
		return err
	}
	if err := c.l1Page.Write(c.file); err != nil {
		return err
	}
	return nil
}
