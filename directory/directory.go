// Package directory is the in-memory list of files known to a virtual
// disk: each entry carries a name, size, metadata-block index, and
// ordered data-block list. Grounded on the shape of
// drivers/common/basedriver/dirent.go and the original mini_file_find /
// mini_file_create_file in original_source/fat_file.cpp.
package directory

import "github.com/ertancg/Comp304-FatFileSystem/errs"

// File is one directory entry. Open handles are recorded here only as
// counts (OpenWriteCount, OpenReadCount), tracked by the caller, so this
// package has no dependency on the handle type; the vdisk package is the
// one place that owns both.
type File struct {
	Name            string
	Size            int
	MetadataBlockID int
	BlockIDs        []int
	// OpenWriteCount and OpenReadCount are maintained by the owning
	// filesystem so Busy/write-lock checks don't need a second table scan.
	OpenWriteCount int
	OpenReadCount  int
}

// HasOpenHandles reports whether any handle, read or write, currently
// references this file.
func (f *File) HasOpenHandles() bool {
	return f.OpenWriteCount > 0 || f.OpenReadCount > 0
}

// Directory is the ordered list of files in a filesystem.
type Directory struct {
	files []*File
}

// New returns an empty directory.
func New() *Directory {
	return &Directory{}
}

// Files returns the directory's entries in creation order. Callers must
// not retain the slice past further mutation of the directory.
func (d *Directory) Files() []*File {
	return d.files
}

// Find performs an exact byte-wise name match over the directory, or
// returns false if no such file exists.
func (d *Directory) Find(name string) (*File, bool) {
	for _, f := range d.files {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Add appends a fully constructed file to the directory. It assumes the
// caller has already checked for duplicate names.
func (d *Directory) Add(f *File) {
	d.files = append(d.files, f)
}

// Remove deletes the given file from the directory by identity.
func (d *Directory) Remove(target *File) bool {
	for i, f := range d.files {
		if f == target {
			d.files = append(d.files[:i], d.files[i+1:]...)
			return true
		}
	}
	return false
}

// FileSize returns the named file's size, or 0 if it doesn't exist.
func (d *Directory) FileSize(name string) int {
	f, ok := d.Find(name)
	if !ok {
		return 0
	}
	return f.Size
}

// CheckNameAvailable returns ErrExists if name is already taken. Resolves
// spec.md Open Question 3: duplicate names are rejected rather than
// silently shadowing an earlier entry.
func (d *Directory) CheckNameAvailable(name string) error {
	if _, ok := d.Find(name); ok {
		return errs.ErrExists.WithMessage("a file named " + name + " already exists")
	}
	return nil
}
