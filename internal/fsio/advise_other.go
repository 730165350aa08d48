//go:build !linux

package fsio

import "os"

func adviseSequential(*os.File) {}
