package vdisk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vdisk "github.com/ertancg/Comp304-FatFileSystem"
)

func tempDisk(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "disk.img")
}

func TestCreateSizesBackingFileExactly(t *testing.T) {
	path := tempDisk(t)
	fs, err := vdisk.Create(path, 64, 16)
	require.NoError(t, err)
	require.NotNil(t, fs)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(64*16), info.Size())
}

// Scenario 1: create/write/read tiny file.
func TestCreateWriteReadTinyFile(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	wh, err := fs.Open("a.txt", true)
	require.NoError(t, err)

	n, err := fs.Write(wh, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	ok, err := fs.Close(wh)
	require.NoError(t, err)
	assert.True(t, ok)

	rh, err := fs.Open("a.txt", false)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err = fs.Read(rh, buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))

	assert.Equal(t, 5, fs.FileSize("a.txt"))
}

// Scenario 2: multi-block file.
func TestMultiBlockFile(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i % 256)
	}

	wh, err := fs.Open("big", true)
	require.NoError(t, err)
	n, err := fs.Write(wh, data)
	require.NoError(t, err)
	require.Equal(t, 150, n)
	_, err = fs.Close(wh)
	require.NoError(t, err)

	files := fs.Files()
	require.Len(t, files, 1)
	assert.Equal(t, 3, len(files[0].BlockIDs))
	assert.Equal(t, 150, files[0].Size)

	rh, err := fs.Open("big", false)
	require.NoError(t, err)
	readBack := make([]byte, 150)
	n, err = fs.Read(rh, readBack)
	require.NoError(t, err)
	assert.Equal(t, 150, n)
	assert.Equal(t, data, readBack)
}

// Scenario 3: fill disk.
func TestFillDiskThenCreateFileFails(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	created := 0
	for {
		_, err := fs.CreateFile(filepathName(created))
		if err != nil {
			break
		}
		created++
	}

	_, err = fs.CreateFile("overflow")
	assert.Error(t, err)
	assert.Equal(t, 15, created, "block 0 is reserved, so at most blockCount-1 files fit")
}

func filepathName(i int) string {
	return "f" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}

// Scenario 4: save/load round trip.
func TestSaveLoadRoundTrip(t *testing.T) {
	path := tempDisk(t)
	fs, err := vdisk.Create(path, 64, 16)
	require.NoError(t, err)

	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i % 256)
	}
	wh, err := fs.Open("big", true)
	require.NoError(t, err)
	_, err = fs.Write(wh, data)
	require.NoError(t, err)
	_, err = fs.Close(wh)
	require.NoError(t, err)

	require.NoError(t, fs.Save())

	reloaded, err := vdisk.Load(path)
	require.NoError(t, err)

	files := reloaded.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "big", files[0].Name)
	assert.Equal(t, 150, files[0].Size)

	rh, err := reloaded.Open("big", false)
	require.NoError(t, err)
	buf := make([]byte, 150)
	n, err := reloaded.Read(rh, buf)
	require.NoError(t, err)
	assert.Equal(t, 150, n)
	assert.Equal(t, data, buf)
}

// Scenario 5: delete reclaims blocks.
func TestDeleteReclaimsBlocks(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	wh, err := fs.Open("big", true)
	require.NoError(t, err)
	_, err = fs.Write(wh, make([]byte, 150))
	require.NoError(t, err)
	_, err = fs.Close(wh)
	require.NoError(t, err)

	ok, err := fs.Delete("big")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = fs.CreateFile("new")
	require.NoError(t, err)

	files := fs.Files()
	require.Len(t, files, 1)
	assert.Equal(t, 1, files[0].MetadataBlockID, "reused lowest reclaimed index")
}

// Scenario 6: write lock.
func TestWriteLock(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	first, err := fs.Open("x", true)
	require.NoError(t, err)

	_, err = fs.Open("x", true)
	assert.Error(t, err)

	_, err = fs.Close(first)
	require.NoError(t, err)

	_, err = fs.Open("x", true)
	assert.NoError(t, err)
}

func TestOpenMissingFileReadOnlyFails(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	_, err = fs.Open("nope", false)
	assert.Error(t, err)
}

func TestOpenMissingFileWriteCreatesIt(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	_, err = fs.Open("fresh", true)
	require.NoError(t, err)
	assert.Equal(t, 0, fs.FileSize("fresh"))
}

func TestDeleteOpenFileFails(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	_, err = fs.Open("x", true)
	require.NoError(t, err)

	ok, err := fs.Delete("x")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestCreateFileRejectsDuplicateNames(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	_, err = fs.CreateFile("dup")
	require.NoError(t, err)

	_, err = fs.CreateFile("dup")
	assert.Error(t, err)
}

func TestCheckOnHealthyFilesystemPasses(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)

	wh, err := fs.Open("x", true)
	require.NoError(t, err)
	_, err = fs.Write(wh, []byte("hi"))
	require.NoError(t, err)
	_, err = fs.Close(wh)
	require.NoError(t, err)

	assert.NoError(t, fs.Check())
}

func TestDumpDoesNotPanic(t *testing.T) {
	fs, err := vdisk.Create(tempDisk(t), 64, 16)
	require.NoError(t, err)
	wh, err := fs.Open("x", true)
	require.NoError(t, err)
	_, err = fs.Write(wh, []byte("hi"))
	require.NoError(t, err)
	_, err = fs.Close(wh)
	require.NoError(t, err)

	fs.Dump(os.Stdout)
}
