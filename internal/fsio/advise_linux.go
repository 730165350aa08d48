//go:build linux

package fsio

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential is best effort; a failed hint never fails the open.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
