//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package sppfcpg

import (
	"os"

	"golang.org/x/sys/unix"
)

func platformOpenMapping(path string) (*mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(IoFailure, err, "opening %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, wrapErr(IoFailure, err, "stat %s", path)
	}
	size := info.Size()
	if size == 0 {
		return nil, newErr(Truncated, "%s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, wrapErr(IoFailure, err, "mmap %s", path)
	}
	return &mapping{
		data: data,
		closer: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
