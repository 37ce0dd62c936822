// Package vdisk implements a miniature FAT-style filesystem inside a
// single real-disk backing file: a fixed number of equally sized blocks,
// a directory of named files each occupying a metadata block plus zero or
// more data blocks, and an open-handle table enforcing single-writer-per-
// file. See SPEC_FULL.md for the full component breakdown; this file is
// the composition root, mirroring driver/driver.go's BaseDriver shape in
// the teacher repo.
package vdisk

import (
	"fmt"
	"io"
	"os"

	"github.com/ertancg/Comp304-FatFileSystem/allocator"
	"github.com/ertancg/Comp304-FatFileSystem/blockio"
	"github.com/ertancg/Comp304-FatFileSystem/directory"
	"github.com/ertancg/Comp304-FatFileSystem/errs"
	multierror "github.com/hashicorp/go-multierror"
)

// MaxFilenameLength bounds the length of a filename accepted by CreateFile.
const MaxFilenameLength = 32

// fileEntryHeaderSize is the most space a FILE_ENTRY block needs ahead of
// its block-id list: size:u32 + name_length:u32 + a name of up to
// MaxFilenameLength bytes. The name is stored at its own length and the
// block-id list follows it directly.
const fileEntryHeaderSize = 4 + 4 + MaxFilenameLength

// Filesystem is the in-memory representation of a mounted virtual disk.
// It is not safe for concurrent use; callers that need concurrency must
// serialize externally (spec.md §5).
type Filesystem struct {
	Filename   string
	BlockSize  int
	BlockCount int

	blockMap *allocator.Map
	dir      *directory.Directory
	// maxFileBlockCount is MAX_FILE_BLOCK_COUNT (spec.md Open Question 2),
	// sized against BlockSize so a FILE_ENTRY block always fits in one
	// block: (BlockSize - fileEntryHeaderSize) / 4.
	maxFileBlockCount int
}

func (fs *Filesystem) device() blockio.Device {
	return blockio.Device{
		Filename:   fs.Filename,
		BlockSize:  fs.BlockSize,
		BlockCount: fs.BlockCount,
	}
}

// Create makes a new virtual disk backed by filename, with the given
// block size and block count. The backing file is created (or
// overwritten) to be exactly blockSize*blockCount bytes.
func Create(filename string, blockSize, blockCount int) (*Filesystem, error) {
	if blockSize <= 0 || blockCount <= 0 {
		return nil, errs.ErrInvalidArgument.WithMessage("block size and block count must be positive")
	}
	if blockSize < 8+blockCount {
		return nil, errs.ErrInvalidArgument.WithMessage("block size too small to hold the block-0 header")
	}

	maxFileBlockCount := (blockSize - fileEntryHeaderSize) / 4
	if maxFileBlockCount < 1 {
		return nil, errs.ErrInvalidArgument.WithMessage("block size too small to hold a FILE_ENTRY block")
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, errs.ErrIOFailed.WithMessage(err.Error())
	}
	if err := f.Truncate(int64(blockSize) * int64(blockCount)); err != nil {
		f.Close()
		return nil, errs.ErrIOFailed.WithMessage(err.Error())
	}
	if err := f.Close(); err != nil {
		return nil, errs.ErrIOFailed.WithMessage(err.Error())
	}

	return &Filesystem{
		Filename:          filename,
		BlockSize:         blockSize,
		BlockCount:        blockCount,
		blockMap:          allocator.New(blockCount),
		dir:               directory.New(),
		maxFileBlockCount: maxFileBlockCount,
	}, nil
}

// createFile allocates a FILE_ENTRY block and appends a zero-size File to
// the directory. It rejects duplicate names (spec.md Open Question 3).
func (fs *Filesystem) createFile(name string) (*directory.File, error) {
	if len(name) >= MaxFilenameLength {
		return nil, errs.ErrNameTooLong
	}
	if err := fs.dir.CheckNameAvailable(name); err != nil {
		return nil, err
	}

	blockID, err := fs.blockMap.AllocateBlock(allocator.FileEntryBlock)
	if err != nil {
		return nil, err
	}

	f := &directory.File{
		Name:            name,
		Size:            0,
		MetadataBlockID: blockID,
		BlockIDs:        nil,
	}
	fs.dir.Add(f)
	return f, nil
}

// CreateFile is the public form of createFile, exposed for callers that
// want to pre-create an empty file without opening it for write.
func (fs *Filesystem) CreateFile(name string) (*directory.File, error) {
	return fs.createFile(name)
}

// FileSize returns the named file's size, or 0 if it doesn't exist.
func (fs *Filesystem) FileSize(name string) int {
	return fs.dir.FileSize(name)
}

// Files returns the filesystem's directory entries in creation order.
func (fs *Filesystem) Files() []*directory.File {
	return fs.dir.Files()
}

// Delete removes a file from the filesystem, freeing its metadata and
// data blocks. It fails if the file doesn't exist or still has open
// handles.
func (fs *Filesystem) Delete(name string) (bool, error) {
	f, ok := fs.dir.Find(name)
	if !ok {
		return false, errs.ErrNotFound
	}
	if f.HasOpenHandles() {
		return false, errs.ErrBusy
	}

	fs.blockMap.FreeBlock(f.MetadataBlockID)
	for _, b := range f.BlockIDs {
		fs.blockMap.FreeBlock(b)
	}
	fs.dir.Remove(f)
	return true, nil
}

// Dump writes a human-readable summary of the block map and every file's
// metadata to w. Grounded on the original mini_fat_dump / mini_file_dump
// in original_source/fat.cpp and fat_file.cpp.
func (fs *Filesystem) Dump(w io.Writer) {
	fmt.Fprintf(w, "Dumping fat with %d blocks of size %d:\n", fs.BlockCount, fs.BlockSize)
	for i := 0; i < fs.blockMap.Len(); i++ {
		fmt.Fprintf(w, "%d ", fs.blockMap.At(i))
	}
	fmt.Fprintln(w)

	for _, f := range fs.dir.Files() {
		fmt.Fprintf(w, "Filename: %s\tFilesize: %d\tBlock count: %d\n", f.Name, f.Size, len(f.BlockIDs))
		fmt.Fprintf(w, "\tMetadata block: %d\n", f.MetadataBlockID)
		fmt.Fprint(w, "\tBlock list: ")
		for _, b := range f.BlockIDs {
			fmt.Fprintf(w, "%d ", b)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "\tOpen handles: %d write, %d read\n", f.OpenWriteCount, f.OpenReadCount)
	}
}

// Check validates the filesystem's current in-memory state, returning
// every violation found rather than stopping at the first. It checks that
// block 0 is tagged METADATA, that each file's metadata and data blocks
// carry the right tags, that no block is claimed twice, that no file's
// size exceeds its blocks' capacity, and that no file has more than one
// write handle. It does not check handle positions (the filesystem keeps
// only per-file handle counts) or the size of the backing file.
func (fs *Filesystem) Check() error {
	var result *multierror.Error

	if fs.blockMap.At(0) != allocator.MetadataBlock {
		result = multierror.Append(result, fmt.Errorf("block 0 is not tagged METADATA"))
	}

	claimed := make(map[int]string)
	for _, f := range fs.dir.Files() {
		if fs.blockMap.At(f.MetadataBlockID) != allocator.FileEntryBlock {
			result = multierror.Append(result, fmt.Errorf(
				"file %q: metadata block %d is not tagged FILE_ENTRY", f.Name, f.MetadataBlockID))
		}
		if owner, dup := claimed[f.MetadataBlockID]; dup {
			result = multierror.Append(result, fmt.Errorf(
				"block %d claimed by both %q and %q", f.MetadataBlockID, owner, f.Name))
		}
		claimed[f.MetadataBlockID] = f.Name

		for _, b := range f.BlockIDs {
			if fs.blockMap.At(b) != allocator.FileDataBlock {
				result = multierror.Append(result, fmt.Errorf(
					"file %q: data block %d is not tagged FILE_DATA", f.Name, b))
			}
			if owner, dup := claimed[b]; dup {
				result = multierror.Append(result, fmt.Errorf(
					"block %d claimed by both %q and %q", b, owner, f.Name))
			}
			claimed[b] = f.Name
		}

		if f.Size > fs.BlockSize*len(f.BlockIDs) {
			result = multierror.Append(result, fmt.Errorf(
				"file %q: size %d exceeds capacity of its %d blocks", f.Name, f.Size, len(f.BlockIDs)))
		}
		if f.OpenWriteCount > 1 {
			result = multierror.Append(result, fmt.Errorf(
				"file %q: %d write handles open, at most one allowed", f.Name, f.OpenWriteCount))
		}
	}

	return result.ErrorOrNil()
}
