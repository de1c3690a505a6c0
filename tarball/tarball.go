// Copyright 2026 The Dockhand Authors
// SPDX-License-Identifier: Apache-2.0

// Package tarball packages a build context directory for upload to the
// daemon: a gzip-compressed tar of the directory's contents with paths
// relativized to the context root. The daemon only ever sees the
// archive bytes; symlinks are stored as links, not followed.
package tarball

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Pack writes dir's contents to w as a gzip-compressed tar archive.
// Entry names are relative to dir, so "dir/Dockerfile" is stored as
// "Dockerfile".
func Pack(dir string, w io.Writer) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("tarball: resolving context directory: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("tarball: reading context directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("tarball: context %s is not a directory", dir)
	}

	compressor := gzip.NewWriter(w)
	archive := tar.NewWriter(compressor)

	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return appendEntry(archive, path, filepath.ToSlash(relative), entry)
	})
	if err != nil {
		return fmt.Errorf("tarball: packaging %s: %w", dir, err)
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("tarball: finishing archive: %w", err)
	}
	if err := compressor.Close(); err != nil {
		return fmt.Errorf("tarball: finishing compression: %w", err)
	}
	return nil
}

func appendEntry(archive *tar.Writer, path, name string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}

	if err := archive.WriteHeader(header); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := io.Copy(archive, file); err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}
	return nil
}
