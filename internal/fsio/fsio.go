// Package fsio opens checkpoint files and reports the host byte order.
package fsio

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/cpu"
)

// OpenError reports which side of a conversion could not be opened.
type OpenError struct {
	Op   string // "source" or "destination"
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("unable to open the %s file %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// OpenSource opens path read-only and hints the kernel that it will be read
// front to back once.
func OpenSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{Op: "source", Path: path, Err: err}
	}
	adviseSequential(f)
	return f, nil
}

// CreateDestination creates or truncates path. Parent directories are not
// created.
func CreateDestination(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &OpenError{Op: "destination", Path: path, Err: err}
	}
	return f, nil
}

// HostOrder returns the byte order of the machine running the process.
func HostOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// ParseOrder accepts little, big or native (case-insensitive). Empty means little.
func ParseOrder(s string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "little", "le":
		return binary.LittleEndian, nil
	case "big", "be", "network":
		return binary.BigEndian, nil
	case "native", "host":
		return HostOrder(), nil
	default:
		return nil, fmt.Errorf("unknown byte order %q (want little, big or native)", s)
	}
}
