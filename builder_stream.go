package sppfcpg

import "os"

// BuildToFile is the file-backed builder variant (spec §4.7, "A parallel
// builder variant, used for file-backed persistence, writes directly to a
// stream; it buffers enough to back-patch the header region"). The image
// is still assembled in memory by Build — the streaming discipline that
// matters for correctness is the write order to the file: every byte
// after the header is written first, and the header (which begins with
// the magic tag) is written last, so a process that crashes mid-write
// leaves behind a file that fails Open's magic check rather than one that
// silently validates with a torn body (spec §5 "Cancellation").
func (b *Builder) BuildToFile(path string, rootOffset Offset, sourceText string, intervalIndex []IntervalEntry) error {
	image, err := b.Build(rootOffset, sourceText, intervalIndex)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return wrapErr(IoFailure, err, "opening %s for write", path)
	}
	defer f.Close()

	if _, err := f.Seek(headerSize, 0); err != nil {
		return wrapErr(IoFailure, err, "seeking past header in %s", path)
	}
	if _, err := f.Write(image[headerSize:]); err != nil {
		return wrapErr(IoFailure, err, "writing body to %s", path)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return wrapErr(IoFailure, err, "seeking to header in %s", path)
	}
	if _, err := f.Write(image[:headerSize]); err != nil {
		return wrapErr(IoFailure, err, "writing header to %s", path)
	}
	if err := f.Sync(); err != nil {
		return wrapErr(IoFailure, err, "syncing %s", path)
	}
	return nil
}
