package main

import (
	"os"

	"github.com/navi-cx/fid/page"
	"github.com/navi-cx/fid/varint"
)

// l1Summary is everything fidinspect shows about one L1 page: its offset,
// whether it carries a valid reverse-header yet, and the L2 record that
// header encodes if so.
type l1Summary struct {
	offset    int64
	complete  bool
	timeDelta uint64
	nSamples  uint64
	nPages    uint64
}

// walkL1Pages reads every L1 page in f from offset 0 onward, following
// each complete page's reverse-header to find the next one. It stops at
// the first incomplete page (or a read error) and returns everything
// seen so far.
func walkL1Pages(f *os.File, pageSize int) ([]l1Summary, error) {
	var out []l1Summary
	offset := int64(0)

	for {
		p := page.New(pageSize)
		if err := p.Seek(f, offset); err != nil {
			return out, err
		}
		if err := p.Read(f); err != nil {
			return out, err
		}
		buf := p.Buf()

		if buf[pageSize-1] == 0x00 {
			out = append(out, l1Summary{offset: offset, complete: false})
			return out, nil
		}

		pos := pageSize - 1
		timeDelta, pos, err := varint.ReadReverse(buf, pos, 0)
		if err != nil {
			return out, err
		}
		nSamples, pos, err := varint.ReadReverse(buf, pos, 0)
		if err != nil {
			return out, err
		}
		nPages, _, err := varint.ReadReverse(buf, pos, 0)
		if err != nil {
			return out, err
		}

		out = append(out, l1Summary{
			offset:    offset,
			complete:  true,
			timeDelta: timeDelta,
			nSamples:  nSamples,
			nPages:    nPages,
		})
		offset += int64(1+nPages) * int64(pageSize)
	}
}
