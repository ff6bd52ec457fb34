// fidinspect is a read-only terminal browser of a FID file's L1 page
// chain: its reverse headers, completeness, and L0-page counts.
package main

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/navi-cx/fid/fid"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: fidinspect <file> [page-size]")
		os.Exit(2)
	}

	path := os.Args[1]
	pageSize := fid.DefaultPageSize
	if len(os.Args) > 2 {
		v, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, "fidinspect:", err)
			os.Exit(1)
		}
		pageSize = v
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fidinspect:", err)
		os.Exit(1)
	}
	defer f.Close()

	pages, err := walkL1Pages(f, pageSize)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fidinspect:", err)
		os.Exit(1)
	}

	m := model{path: path, pageSize: pageSize, pages: pages}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "fidinspect:", err)
		os.Exit(1)
	}
}
