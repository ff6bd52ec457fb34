package page

import (
	"bytes"
	"io"
	"testing"
)

func TestPageReadWrite(t *testing.T) {
	const size = 32
	f := NewMemoryFile()

	t.Run("fresh page reads as zero", func(t *testing.T) {
		p := New(size)
		if err := p.Read(f); err != nil {
			t.Fatal(err)
		}
		if p.Size() != 0 {
			t.Errorf("Size() = %d, want 0", p.Size())
		}
		if !bytes.Equal(p.Buf(), make([]byte, size)) {
			t.Errorf("Buf() not all zero: % x", p.Buf())
		}
	})

	t.Run("grow marks dirty and write persists", func(t *testing.T) {
		p := New(size)
		p.Read(f)
		copy(p.Buf(), []byte{1, 2, 3, 4})
		p.Grow(4)
		if !p.Dirty() {
			t.Fatal("expected page to be dirty after Grow")
		}
		if err := p.Write(f); err != nil {
			t.Fatal(err)
		}
		if p.Dirty() {
			t.Fatal("expected page to be clean after Write")
		}

		p2 := New(size)
		if err := p2.Read(f); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(p2.Buf()[:4], []byte{1, 2, 3, 4}) {
			t.Errorf("reloaded page content = % x", p2.Buf()[:4])
		}
	})

	t.Run("grow does not shrink", func(t *testing.T) {
		p := New(size)
		p.Grow(10)
		p.Grow(4)
		if p.Size() != 10 {
			t.Errorf("Size() = %d, want 10", p.Size())
		}
	})
}

func TestPageSeekFlushesDirty(t *testing.T) {
	const size = 16
	f := NewMemoryFile()
	p := New(size)
	p.Read(f)
	copy(p.Buf(), []byte{9, 9, 9})
	p.Grow(3)

	if err := p.Seek(f, size); err != nil {
		t.Fatal(err)
	}

	readBack := make([]byte, 3)
	if _, err := f.ReadAt(readBack, 0); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if !bytes.Equal(readBack, []byte{9, 9, 9}) {
		t.Errorf("old page not flushed before seek: % x", readBack)
	}
	if p.Offset() != size {
		t.Errorf("Offset() = %d, want %d", p.Offset(), size)
	}
	if p.Size() != 0 {
		t.Errorf("Size() = %d after seek, want 0", p.Size())
	}
}

func TestPageSeekSameOffsetIsNoop(t *testing.T) {
	f := NewMemoryFile()
	p := New(16)
	p.Read(f)
	copy(p.Buf(), []byte{1})
	p.Grow(1)
	if err := p.Seek(f, 0); err != nil {
		t.Fatal(err)
	}
	// Still dirty: a same-offset seek must not have flushed or reset it.
	if !p.Dirty() {
		t.Fatal("expected page to remain dirty across a same-offset seek")
	}
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1", p.Size())
	}
}

func TestMemoryFileGrowsOnWrite(t *testing.T) {
	f := NewMemoryFile()
	if _, err := f.WriteAt([]byte{1, 2, 3}, 10); err != nil {
		t.Fatal(err)
	}
	if f.Len() != 13 {
		t.Errorf("Len() = %d, want 13", f.Len())
	}
	buf := make([]byte, 3)
	if _, err := f.ReadAt(buf, 10); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3}) {
		t.Errorf("read back % x", buf)
	}
}
