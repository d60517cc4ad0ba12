// Package dataset locates paired clean/noisy recordings on disk, bulk-loads
// waveforms and prepares output directories.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// WavExt is the extension matched by FindWavFiles, compared case-insensitively.
const WavExt = ".wav"

var (
	// ErrMisaligned is returned when two directories do not hold the same
	// set of file names in the same sorted order.
	ErrMisaligned = errors.New("dataset: directories are not aligned")
	// ErrInvalidWindow is returned for a negative limit or offset.
	ErrInvalidWindow = errors.New("dataset: limit and offset must be non-negative")
)

// AlignedFiles holds two path lists where A[i] and B[i] share a base name.
type AlignedFiles struct {
	A      []string
	B      []string
	Length int
}

// Pairs returns the aligned lists as [A, B] tuples.
func (a *AlignedFiles) Pairs() [][2]string {
	pairs := make([][2]string, a.Length)
	for i := range a.Length {
		pairs[i] = [2]string{a.A[i], a.B[i]}
	}
	return pairs
}

// FindWavFiles walks dir recursively and returns the absolute paths of
// files ending in ext (any case), sorted lexicographically, after skipping
// offset entries and keeping at most limit (0 means no limit).
func FindWavFiles(dir, ext string, limit, offset int) ([]string, error) {
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit=%d offset=%d", ErrInvalidWindow, limit, offset)
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	sort.Strings(files)

	if offset >= len(files) {
		return []string{}, nil
	}
	files = files[offset:]
	if limit > 0 && limit < len(files) {
		files = files[:limit]
	}
	return files, nil
}

// FindAlignedWavFiles lists the WAV files of dirA and dirB with the same
// limit and offset and checks that they pair up by sorted position: both
// lists must be non-empty, equally long, and share base names index by
// index. Callers must keep identically named files in both directories.
func FindAlignedWavFiles(dirA, dirB string, limit, offset int) (*AlignedFiles, error) {
	filesA, err := FindWavFiles(dirA, WavExt, limit, offset)
	if err != nil {
		return nil, err
	}
	filesB, err := FindWavFiles(dirB, WavExt, limit, offset)
	if err != nil {
		return nil, err
	}

	if len(filesA) != len(filesB) || len(filesA) == 0 {
		return nil, fmt.Errorf("%w: %s has %d files and %s has %d (counts differ or a directory is empty)",
			ErrMisaligned, dirA, len(filesA), dirB, len(filesB))
	}

	for i := range filesA {
		if filepath.Base(filesA[i]) != filepath.Base(filesB[i]) {
			return nil, fmt.Errorf("%w: %s and %s do not match at index %d",
				ErrMisaligned, filesA[i], filesB[i], i)
		}
	}

	return &AlignedFiles{A: filesA, B: filesB, Length: len(filesA)}, nil
}

// NameAndExt splits the base name of path into name and extension.
func NameAndExt(path string) (name, ext string) {
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
