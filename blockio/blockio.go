// Package blockio implements the lowest layer of the virtual disk engine:
// bounded transfers against a single block of the backing file. It mirrors
// the teacher's BlockDevice.Read/Write (drivers/common/blockdevice.go) but
// trades the multi-block, whole-device abstraction for the single bounded
// transfer the spec calls for, with the backing file opened and closed on
// every call rather than held open.
package blockio

import (
	"os"

	"github.com/ertancg/Comp304-FatFileSystem/errs"
)

// Device describes the fixed geometry a set of block transfers are bounded
// against.
type Device struct {
	// Filename is the path to the backing file on the host.
	Filename string
	// BlockSize is the number of bytes per block.
	BlockSize int
	// BlockCount is the total number of blocks in the backing file.
	BlockCount int
}

func checkBounds(d Device, blockID, blockOffset, size int) error {
	if blockID < 0 || blockID >= d.BlockCount {
		return errs.ErrInvalidArgument.WithMessage("block id out of range")
	}
	if blockOffset < 0 || blockOffset >= d.BlockSize {
		return errs.ErrInvalidArgument.WithMessage("block offset out of range")
	}
	if blockOffset+size > d.BlockSize {
		return errs.ErrInvalidArgument.WithMessage("transfer crosses block boundary")
	}
	return nil
}

// WriteInBlock writes exactly len(buffer) bytes to the block at blockID,
// starting at blockOffset. It opens and closes the backing file on every
// call; there is no cached descriptor. On success it returns len(buffer);
// on a short or failed transfer it returns 0 and ErrIOFailed.
func WriteInBlock(d Device, blockID, blockOffset int, buffer []byte) (int, error) {
	if err := checkBounds(d, blockID, blockOffset, len(buffer)); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(d.Filename, os.O_RDWR, 0o644)
	if err != nil {
		return 0, errs.ErrIOFailed.WithMessage(err.Error())
	}
	defer f.Close()

	offset := int64(blockID)*int64(d.BlockSize) + int64(blockOffset)
	if _, err := f.Seek(offset, 0); err != nil {
		return 0, errs.ErrIOFailed.WithMessage(err.Error())
	}

	n, err := f.Write(buffer)
	if err != nil {
		return 0, errs.ErrIOFailed.WithMessage(err.Error())
	}
	if n < len(buffer) {
		return 0, errs.ErrIOFailed.WithMessage("short write")
	}
	return n, nil
}

// ReadInBlock reads exactly len(buffer) bytes from the block at blockID,
// starting at blockOffset. Same open/seek/transfer/close-per-call contract
// as WriteInBlock.
func ReadInBlock(d Device, blockID, blockOffset int, buffer []byte) (int, error) {
	if err := checkBounds(d, blockID, blockOffset, len(buffer)); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(d.Filename, os.O_RDONLY, 0o644)
	if err != nil {
		return 0, errs.ErrIOFailed.WithMessage(err.Error())
	}
	defer f.Close()

	offset := int64(blockID)*int64(d.BlockSize) + int64(blockOffset)
	if _, err := f.Seek(offset, 0); err != nil {
		return 0, errs.ErrIOFailed.WithMessage(err.Error())
	}

	n, err := f.Read(buffer)
	if err != nil {
		return 0, errs.ErrIOFailed.WithMessage(err.Error())
	}
	if n < len(buffer) {
		return 0, errs.ErrIOFailed.WithMessage("short read")
	}
	return n, nil
}
