package vdisk

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"
)

// Geometry is a named (block size, block count) preset, letting callers
// pick a disk shape without doing the arithmetic themselves. Grounded on
// disks/disks.go's DiskGeometry + GetPredefinedDiskGeometry, trimmed down
// to what this engine actually needs: block size and block count.
type Geometry struct {
	Slug       string `csv:"slug"`
	Name       string `csv:"name"`
	BlockSize  int    `csv:"block_size"`
	BlockCount int    `csv:"block_count"`
}

//go:embed geometry-presets.csv
var geometryPresetsRawCSV string
var geometryPresets map[string]Geometry

func init() {
	geometryPresets = make(map[string]Geometry)
	reader := strings.NewReader(geometryPresetsRawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Geometry) error {
		if _, exists := geometryPresets[row.Slug]; exists {
			return fmt.Errorf("duplicate geometry preset slug %q", row.Slug)
		}
		geometryPresets[row.Slug] = row
		return nil
	})
	if err != nil {
		panic(err)
	}
}

// GetGeometry looks up a predefined disk geometry by slug.
func GetGeometry(slug string) (Geometry, error) {
	geometry, ok := geometryPresets[slug]
	if !ok {
		return Geometry{}, fmt.Errorf("no predefined disk geometry exists with slug %q", slug)
	}
	return geometry, nil
}

// CreateWithGeometry is a convenience wrapper around Create that looks up
// a named preset instead of requiring the caller to pass raw block
// size/count.
func CreateWithGeometry(filename, geometrySlug string) (*Filesystem, error) {
	g, err := GetGeometry(geometrySlug)
	if err != nil {
		return nil, err
	}
	return Create(filename, g.BlockSize, g.BlockCount)
}
