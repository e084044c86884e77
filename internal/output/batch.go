package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tropestats/internal/types"
)

// Batch stages a set of output files. Each file is written to a temporary
// sibling; Commit renames them all into place once every file was closed
// cleanly, Abort removes them. A run that fails part-way therefore never
// leaves a complete-looking file at a final path.
type Batch struct {
	dir     string
	pending []*stagedFile
	closed  bool

	// rename defaults to os.Rename.
	rename func(oldpath, newpath string) error
}

type stagedFile struct {
	final string
	tmp   string
	f     *os.File
	done  bool

	backup    string
	committed bool
}

// NewBatch prepares dir (created if missing) for staged writes.
func NewBatch(dir string) (*Batch, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", types.ErrIOFailure, err)
	}
	return &Batch{dir: dir}, nil
}

// Create opens a staged file that will become dir/name on Commit.
func (b *Batch) Create(name string) (*os.File, error) {
	if b.closed {
		return nil, errors.New("output: batch already committed or aborted")
	}
	final := filepath.Join(b.dir, name)
	f, err := os.CreateTemp(b.dir, "."+name+".*.partial")
	if err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", types.ErrIOFailure, final, err)
	}
	b.pending = append(b.pending, &stagedFile{final: final, tmp: f.Name(), f: f})
	return f, nil
}

// Finish syncs and closes a staged file. Every file must be finished before
// Commit.
func (b *Batch) Finish(f *os.File) error {
	for _, sf := range b.pending {
		if sf.f != f {
			continue
		}
		if sf.done {
			return nil
		}
		sf.done = true
		if err := f.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("%w: syncing %s: %v", types.ErrIOFailure, sf.final, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: closing %s: %v", types.ErrIOFailure, sf.final, err)
		}
		return nil
	}
	return errors.New("output: file not part of batch")
}

// Commit renames every staged file to its final path and returns the paths.
// It is all-or-nothing: when any rename fails, the files already moved into
// place are removed, the files they replaced are restored and every staged
// file is deleted.
func (b *Batch) Commit() ([]string, error) {
	if b.closed {
		return nil, errors.New("output: batch already committed or aborted")
	}
	for _, sf := range b.pending {
		if !sf.done {
			b.Abort()
			return nil, fmt.Errorf("output: %s was not finished", sf.final)
		}
		if fi, err := os.Lstat(sf.final); err == nil && !fi.Mode().IsRegular() {
			b.Abort()
			return nil, fmt.Errorf("%w: committing %s: not a regular file", types.ErrIOFailure, sf.final)
		}
	}
	b.closed = true

	rename := b.rename
	if rename == nil {
		rename = os.Rename
	}
	for _, sf := range b.pending {
		if err := b.swap(sf, rename); err != nil {
			b.rollback(rename)
			return nil, fmt.Errorf("%w: committing %s: %v", types.ErrIOFailure, sf.final, err)
		}
	}

	paths := make([]string, 0, len(b.pending))
	for _, sf := range b.pending {
		if sf.backup != "" {
			os.Remove(sf.backup)
		}
		paths = append(paths, sf.final)
	}
	return paths, nil
}

// swap moves an existing file at the final path aside, then moves the staged
// file into place.
func (b *Batch) swap(sf *stagedFile, rename func(string, string) error) error {
	if _, err := os.Lstat(sf.final); err == nil {
		backup := sf.tmp + ".previous"
		if err := rename(sf.final, backup); err != nil {
			return err
		}
		sf.backup = backup
	}
	if err := rename(sf.tmp, sf.final); err != nil {
		return err
	}
	sf.committed = true
	return nil
}

func (b *Batch) rollback(rename func(string, string) error) {
	for i := len(b.pending) - 1; i >= 0; i-- {
		sf := b.pending[i]
		if sf.committed {
			os.Remove(sf.final)
		} else {
			os.Remove(sf.tmp)
		}
		if sf.backup != "" {
			rename(sf.backup, sf.final)
		}
	}
}

// Abort closes and removes every staged file. It is safe to call after
// Commit, where it does nothing.
func (b *Batch) Abort() {
	if b.closed {
		return
	}
	b.closed = true
	for _, sf := range b.pending {
		if !sf.done {
			sf.f.Close()
		}
		os.Remove(sf.tmp)
	}
}
