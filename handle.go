package vdisk

import (
	"github.com/ertancg/Comp304-FatFileSystem/allocator"
	"github.com/ertancg/Comp304-FatFileSystem/blockio"
	"github.com/ertancg/Comp304-FatFileSystem/directory"
	"github.com/ertancg/Comp304-FatFileSystem/errs"
)

// OpenFile is a transient cursor over a File, bound to a read or write
// mode. It borrows its File; the Filesystem owns the File, the File
// (via the Filesystem's bookkeeping) owns the count of its handles.
//
// Mirrors the original FAT_OPEN_FILE (original_source/fat.h) and the
// non-owning handle idiom of drivers/common/basedriver/file.go.
type OpenFile struct {
	file     *directory.File
	position int
	isWrite  bool
}

func blockIndex(blockSize, position int) int {
	return position / blockSize
}

func byteIndex(blockSize, position int) int {
	return position % blockSize
}

// Open finds filename in the directory. A read-mode open on a missing
// file fails; a write-mode open on a missing file creates it. At most
// one write handle per file is allowed at any time.
func (fs *Filesystem) Open(filename string, isWrite bool) (*OpenFile, error) {
	f, ok := fs.dir.Find(filename)
	if !ok {
		if !isWrite {
			return nil, errs.ErrNotFound
		}
		var err error
		f, err = fs.createFile(filename)
		if err != nil {
			return nil, err
		}
	}

	if isWrite && f.OpenWriteCount > 0 {
		return nil, errs.ErrAlreadyOpenForWrite
	}

	if isWrite {
		f.OpenWriteCount++
	} else {
		f.OpenReadCount++
	}

	return &OpenFile{file: f, position: 0, isWrite: isWrite}, nil
}

// Close removes the handle from its owning file's open-handle count. It
// fails if handle is nil.
func (fs *Filesystem) Close(handle *OpenFile) (bool, error) {
	if handle == nil {
		return false, errs.ErrInvalidArgument.WithMessage("nil handle")
	}

	if handle.isWrite {
		if handle.file.OpenWriteCount == 0 {
			return false, errs.ErrInvalidArgument.WithMessage("handle not open")
		}
		handle.file.OpenWriteCount--
	} else {
		if handle.file.OpenReadCount == 0 {
			return false, errs.ErrInvalidArgument.WithMessage("handle not open")
		}
		handle.file.OpenReadCount--
	}
	handle.file = nil
	return true, nil
}

// Seek moves the handle's position cursor. When fromStart is true, offset
// is an absolute target in [0, size]; otherwise it's relative to the
// current position. Any out-of-range request fails and leaves position
// unchanged.
func (fs *Filesystem) Seek(handle *OpenFile, offset int, fromStart bool) (bool, error) {
	if handle == nil || handle.file == nil {
		return false, errs.ErrInvalidArgument.WithMessage("handle not open")
	}

	var target int
	if fromStart {
		target = offset
	} else {
		target = handle.position + offset
	}

	if target < 0 || target > handle.file.Size {
		return false, errs.ErrOutOfRange
	}

	handle.position = target
	return true, nil
}

// Write writes up to len(buffer) bytes to handle starting at its current
// position, extending the file one block at a time. Aligned writes
// always allocate a fresh data block and grow size (extend-only
// semantics per spec.md Open Question 1); this is preserved verbatim,
// not "fixed", because reimplementers are required to match it.
func (fs *Filesystem) Write(handle *OpenFile, buffer []byte) (int, error) {
	if handle == nil || handle.file == nil {
		return 0, nil
	}

	size := len(buffer)
	written := 0
	f := handle.file
	device := fs.device()

	for written < size {
		bOff := byteIndex(fs.BlockSize, handle.position)

		var blockID int
		var chunk int
		if bOff == 0 {
			if len(f.BlockIDs) >= fs.maxFileBlockCount {
				return written, errs.ErrTooManyBlocks
			}
			newBlock, err := fs.blockMap.AllocateBlock(allocator.FileDataBlock)
			if err != nil {
				return written, nil
			}
			f.BlockIDs = append(f.BlockIDs, newBlock)
			blockID = newBlock
			chunk = min(size-written, fs.BlockSize)
		} else {
			blockID = f.BlockIDs[blockIndex(fs.BlockSize, handle.position)]
			chunk = min(size-written, fs.BlockSize-bOff)
		}

		n, err := blockio.WriteInBlock(device, blockID, bOff, buffer[written:written+chunk])
		if err != nil || n == 0 {
			return written, err
		}

		f.Size += n
		written += n
		if _, err := fs.Seek(handle, n, false); err != nil {
			return written, err
		}
	}

	return written, nil
}

// Read reads up to len(buffer) bytes from handle starting at its current
// position. Reads never allocate blocks and never grow size; the loop
// terminates at len(buffer) or at end of file, whichever comes first.
func (fs *Filesystem) Read(handle *OpenFile, buffer []byte) (int, error) {
	if handle == nil || handle.file == nil || handle.file.Size == 0 {
		return 0, nil
	}

	size := len(buffer)
	read := 0
	f := handle.file
	device := fs.device()

	for read < size {
		if handle.position >= f.Size {
			break
		}

		bOff := byteIndex(fs.BlockSize, handle.position)
		blockID := f.BlockIDs[blockIndex(fs.BlockSize, handle.position)]

		var chunk int
		remaining := f.Size - handle.position
		if bOff == 0 {
			if remaining < fs.BlockSize {
				chunk = min(remaining, size-read)
			} else {
				chunk = min(size-read, fs.BlockSize)
			}
		} else {
			chunk = min(size-read, fs.BlockSize-bOff)
			if chunk > remaining {
				chunk = remaining
			}
		}

		n, err := blockio.ReadInBlock(device, blockID, bOff, buffer[read:read+chunk])
		if err != nil || n == 0 {
			return read, err
		}

		read += n
		if _, err := fs.Seek(handle, n, false); err != nil {
			return read, err
		}
	}

	return read, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
