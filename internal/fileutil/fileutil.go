package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// renameFunc is swapped in tests to simulate cross-device renames.
var renameFunc = renameNoReplace

// ErrDestinationExists is returned by MoveFile when dst is already present.
var ErrDestinationExists = errors.New("destination exists")

// Exists reports whether path names an existing filesystem entry.
func Exists(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MoveFile renames src to dst without replacing an existing dst, returning
// ErrDestinationExists when dst is taken even if it appears concurrently.
// When the two paths live on different filesystems the file is copied with
// verification under a hidden temporary name, renamed into place, and the
// source removed.
func MoveFile(src, dst string) error {
	if exists, err := Exists(dst); err != nil {
		return fmt.Errorf("stat destination: %w", err)
	} else if exists {
		return ErrDestinationExists
	}

	err := renameFunc(src, dst)
	if err == nil {
		return nil
	}
	if !IsCrossDevice(err) {
		return err
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".moving")
	if err := CopyFileVerified(src, tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cross-device copy: %w", err)
	}
	if err := renameNoReplace(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		if errors.Is(err, ErrDestinationExists) {
			return err
		}
		return fmt.Errorf("finalize cross-device move: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// renameChecked is the non-atomic fallback for filesystems that cannot
// refuse to replace dst themselves.
func renameChecked(src, dst string) error {
	if exists, err := Exists(dst); err != nil {
		return err
	} else if exists {
		return ErrDestinationExists
	}
	return os.Rename(src, dst)
}

// IsCrossDevice reports whether err is a rename failure caused by src and
// dst residing on different filesystems.
func IsCrossDevice(err error) bool {
	return errors.Is(err, unix.EXDEV)
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Sync(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}
