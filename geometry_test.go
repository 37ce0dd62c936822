package vdisk_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vdisk "github.com/ertancg/Comp304-FatFileSystem"
)

func TestGetGeometryKnownSlug(t *testing.T) {
	g, err := vdisk.GetGeometry("tiny")
	require.NoError(t, err)
	assert.Equal(t, 64, g.BlockSize)
	assert.Equal(t, 16, g.BlockCount)
}

func TestGetGeometryUnknownSlug(t *testing.T) {
	_, err := vdisk.GetGeometry("does-not-exist")
	assert.Error(t, err)
}

func TestCreateWithGeometry(t *testing.T) {
	path := tempDisk(t)
	fs, err := vdisk.CreateWithGeometry(path, "tiny")
	require.NoError(t, err)
	assert.Equal(t, 64, fs.BlockSize)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(64*16), info.Size())
}
