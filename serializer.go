package vdisk

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/ertancg/Comp304-FatFileSystem/allocator"
	"github.com/ertancg/Comp304-FatFileSystem/directory"
	"github.com/ertancg/Comp304-FatFileSystem/errs"
	"github.com/noxer/bytewriter"
)

// Save persists the filesystem's in-memory state into its backing file:
// block count, block size and the block map go into block 0; each file's
// size, name and data-block list go into its own FILE_ENTRY block. File
// data bytes are untouched — they were written in place by Write.
//
// The on-disk header and FILE_ENTRY layout are built up in a fixed-size
// buffer via bytewriter.New before being flushed, mirroring the
// bytewriter+encoding/binary pattern in file_systems/unixv1/format.go.
func (fs *Filesystem) Save() error {
	f, err := os.OpenFile(fs.Filename, os.O_RDWR, 0o644)
	if err != nil {
		return errs.ErrIOFailed.WithMessage(err.Error())
	}
	defer f.Close()

	header := make([]byte, fs.BlockSize)
	writer := bytewriter.New(header)
	binary.Write(writer, binary.LittleEndian, uint32(fs.BlockCount))
	binary.Write(writer, binary.LittleEndian, uint32(fs.BlockSize))
	writer.Write(fs.blockMap.Bytes())

	if _, err := f.WriteAt(header, 0); err != nil {
		return errs.ErrIOFailed.WithMessage(err.Error())
	}

	for _, file := range fs.dir.Files() {
		entry, err := encodeFileEntry(fs.BlockSize, fs.maxFileBlockCount, file)
		if err != nil {
			return err
		}
		offset := int64(file.MetadataBlockID) * int64(fs.BlockSize)
		if _, err := f.WriteAt(entry, offset); err != nil {
			return errs.ErrIOFailed.WithMessage(err.Error())
		}
	}

	return nil
}

func encodeFileEntry(blockSize, maxFileBlockCount int, file *directory.File) ([]byte, error) {
	if len(file.BlockIDs) > maxFileBlockCount {
		return nil, errs.ErrTooManyBlocks
	}

	entry := make([]byte, blockSize)
	writer := bytewriter.New(entry)

	binary.Write(writer, binary.LittleEndian, uint32(file.Size))
	binary.Write(writer, binary.LittleEndian, uint32(len(file.Name)))
	writer.Write([]byte(file.Name))

	rawBlockIDs := make([]uint32, maxFileBlockCount)
	for i, b := range file.BlockIDs {
		rawBlockIDs[i] = uint32(b)
	}
	binary.Write(writer, binary.LittleEndian, rawBlockIDs)

	return entry, nil
}

// Load reconstructs a Filesystem from an existing backing file, reading
// block count, block size and the block map from block 0, and each
// file's metadata from its FILE_ENTRY block. The reconstructed
// filesystem has no open handles.
func Load(filename string) (*Filesystem, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, errs.ErrIOFailed.WithMessage(err.Error())
	}

	if len(raw) < 8 {
		return nil, errs.ErrIOFailed.WithMessage("backing file too small to hold a block-0 header")
	}

	header := bytes.NewReader(raw)
	var blockCount, blockSize uint32
	binary.Read(header, binary.LittleEndian, &blockCount)
	binary.Read(header, binary.LittleEndian, &blockSize)

	mapBytes := make([]byte, blockCount)
	if _, err := header.Read(mapBytes); err != nil {
		return nil, errs.ErrIOFailed.WithMessage(err.Error())
	}

	maxFileBlockCount := (int(blockSize) - fileEntryHeaderSize) / 4
	fs := &Filesystem{
		Filename:          filename,
		BlockSize:         int(blockSize),
		BlockCount:        int(blockCount),
		blockMap:          allocator.FromBytes(mapBytes),
		dir:               directory.New(),
		maxFileBlockCount: maxFileBlockCount,
	}

	for i := 0; i < fs.blockMap.Len(); i++ {
		if fs.blockMap.At(i) != allocator.FileEntryBlock {
			continue
		}

		entryOffset := int64(i) * int64(fs.BlockSize)
		entry := raw[entryOffset : entryOffset+int64(fs.BlockSize)]
		file, err := decodeFileEntry(entry, i, maxFileBlockCount)
		if err != nil {
			return nil, err
		}
		fs.dir.Add(file)
	}

	return fs, nil
}

func decodeFileEntry(entry []byte, metadataBlockID, maxFileBlockCount int) (*directory.File, error) {
	reader := bytes.NewReader(entry)

	var size, nameLength uint32
	binary.Read(reader, binary.LittleEndian, &size)
	binary.Read(reader, binary.LittleEndian, &nameLength)

	nameBytes := make([]byte, nameLength)
	if _, err := reader.Read(nameBytes); err != nil {
		return nil, errs.ErrIOFailed.WithMessage(err.Error())
	}

	rawBlockIDs := make([]uint32, maxFileBlockCount)
	binary.Read(reader, binary.LittleEndian, rawBlockIDs)

	// Block 0 is always METADATA, so 0 is a safe "unused slot" sentinel in
	// the fixed-capacity block-ids array.
	blockIDs := make([]int, 0, maxFileBlockCount)
	for _, b := range rawBlockIDs {
		if b == 0 {
			break
		}
		blockIDs = append(blockIDs, int(b))
	}

	return &directory.File{
		Name:            string(nameBytes),
		Size:            int(size),
		MetadataBlockID: metadataBlockID,
		BlockIDs:        blockIDs,
	}, nil
}
