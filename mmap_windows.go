//go:build windows

package sppfcpg

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
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

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, wrapErr(IoFailure, err, "CreateFileMapping %s", path)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, wrapErr(IoFailure, err, "MapViewOfFile %s", path)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return &mapping{
		data: data,
		closer: func() error {
			err1 := windows.UnmapViewOfFile(addr)
			err2 := windows.CloseHandle(h)
			if err1 != nil {
				return err1
			}
			return err2
		},
	}, nil
}
