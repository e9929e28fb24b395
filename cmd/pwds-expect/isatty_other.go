//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package main

import "os"

// isatty reports whether fd is one of the standard streams and a character device
func isatty(fd uintptr) bool {
	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		if f.Fd() != fd {
			continue
		}
		info, err := f.Stat()
		return err == nil && info.Mode()&os.ModeCharDevice != 0
	}
	return false
}
