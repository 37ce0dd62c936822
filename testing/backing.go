// Package testing provides fixtures for building virtual-disk backing
// files in tests. Grounded on dargueta-disko's testing/images.go, adapted
// from "decompress a canned image into a stream" to "flush a hand-built
// image into a real temp file", since vdisk's block I/O layer opens a
// real path rather than accepting an injected stream.
package testing

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// NewBackingFile builds a backing file of exactly len(imageBytes) on disk,
// in a directory the test framework cleans up automatically, and returns
// its path. imageBytes is staged through an in-memory
// io.ReadWriteSeeker before being flushed, mirroring the stream-backed
// fixture shape of the teacher's LoadDiskImage.
func NewBackingFile(t *testing.T, imageBytes []byte) string {
	t.Helper()

	stream := bytesextra.NewReadWriteSeeker(imageBytes)
	_, err := stream.Seek(0, io.SeekStart)
	require.NoError(t, err)

	dir := t.TempDir()
	path := dir + "/disk.img"

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = io.Copy(f, stream)
	require.NoError(t, err)

	return path
}
