// Package page implements the paged I/O cache described by the FID file
// format: a single fixed-size buffer mirroring one page-aligned region of an
// open file, tracking whether its buffer needs to be refreshed from disk or
// flushed back to it.
//
// Unlike the original C implementation, which tracked a cached kernel file
// offset to avoid redundant lseek calls, this package reads and writes
// through io.ReaderAt/io.WriterAt (pread/pwrite under the hood on *os.File),
// so there is no file-offset bookkeeping to economize in the first place.
package page

import "io"

// File is the single open file descriptor a Page operates against. *os.File
// satisfies this; callers needing an in-memory database use MemoryFile.
type File interface {
	io.ReaderAt
	io.WriterAt
}

// Page is one page-size buffer, resident at a particular file offset.
type Page struct {
	buf       []byte
	offset    int64
	size      int
	needRead  bool
	needWrite bool
}

// New returns a Page sized for the given page size, positioned at file
// offset 0 and flagged to be read before its contents are trusted.
func New(size int) *Page {
	return &Page{
		buf:      make([]byte, size),
		needRead: true,
	}
}

// Buf returns the page's full fixed-size buffer. Bytes at or beyond Size are
// always zero.
func (p *Page) Buf() []byte { return p.buf }

// Size returns the number of meaningful bytes currently occupied, starting
// from the front of the buffer.
func (p *Page) Size() int { return p.size }

// Offset returns the page's current file offset.
func (p *Page) Offset() int64 { return p.offset }

// Dirty reports whether the page has unwritten changes.
func (p *Page) Dirty() bool { return p.needWrite }

// Read loads the page's buffer from file at its current offset, if it isn't
// already loaded. Bytes beyond what the file actually holds are zero-filled
// ("incomplete" tail pages and not-yet-existing pages both read as zero).
func (p *Page) Read(f File) error {
	if !p.needRead {
		return nil
	}
	n, err := f.ReadAt(p.buf, p.offset)
	if err != nil && err != io.EOF {
		return err
	}
	p.size = n
	for i := n; i < len(p.buf); i++ {
		p.buf[i] = 0
	}
	p.needRead = false
	return nil
}

// Write flushes the page's buffer to file at its current offset, if it has
// unwritten changes. Only the meaningful prefix (Size bytes) is written.
func (p *Page) Write(f File) error {
	if !p.needWrite {
		return nil
	}
	if _, err := f.WriteAt(p.buf[:p.size], p.offset); err != nil {
		return err
	}
	p.needWrite = false
	return nil
}

// Seek moves the page to a new file offset, flushing first if dirty. A
// no-op if already at newOffset. After a successful seek the buffer is
// zeroed and the page is marked to be re-read on next access.
func (p *Page) Seek(f File, newOffset int64) error {
	if newOffset == p.offset {
		return nil
	}
	if err := p.Write(f); err != nil {
		return err
	}
	p.offset = newOffset
	p.size = 0
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.needRead = true
	p.needWrite = false
	return nil
}

// Grow extends the page's logical size to cover pos (an offset into Buf),
// never shrinking it, and marks the page dirty. Callers pass the position
// just past whatever they wrote.
func (p *Page) Grow(pos int) {
	if pos > p.size {
		p.size = pos
	}
	p.needWrite = true
}

// MarkFull grows the page to the full buffer length, used when a page's
// reverse-header region has been written and the page is now complete.
func (p *Page) MarkFull() {
	p.Grow(len(p.buf))
}
