// Package sortdir re-creates a directory's subdirectories in name order.
// Some portable players list folders by creation order rather than name;
// moving every subdirectory out and back in sorted order fixes that.
package sortdir

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TempName is the scratch directory created inside the sorted directory.
const TempName = "sortdir"

var (
	// ErrNotDir indicates the path to sort is not a directory.
	ErrNotDir = errors.New("not a directory")

	// ErrTempExists indicates a scratch directory from an earlier sort is in the way.
	ErrTempExists = errors.New("sortdir scratch directory already exists")
)

// Sort moves every non-hidden subdirectory of path into a scratch
// directory and back again in ascending name order. Files and hidden
// entries are left alone. Whatever was moved out is moved back even if a
// later move fails.
func Sort(path string, log *slog.Logger) (err error) {
	if log == nil {
		log = slog.Default()
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("sortdir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDir, path)
	}

	temp := filepath.Join(path, TempName)
	if _, err := os.Lstat(temp); err == nil {
		return fmt.Errorf("%w: %s", ErrTempExists, temp)
	}

	names, err := subdirs(path)
	if err != nil {
		return err
	}
	if len(names) < 2 {
		return nil
	}

	if err := os.Mkdir(temp, 0755); err != nil {
		return fmt.Errorf("sortdir: create scratch: %w", err)
	}

	var moved []string
	defer func() {
		var restoreErrs []error
		for _, name := range moved {
			if rerr := os.Rename(filepath.Join(temp, name), filepath.Join(path, name)); rerr != nil {
				restoreErrs = append(restoreErrs, fmt.Errorf("restore %s: %w", name, rerr))
				continue
			}
			log.Debug("sorted", "path", path, "name", name)
		}
		if len(restoreErrs) == 0 {
			if rerr := os.Remove(temp); rerr != nil {
				restoreErrs = append(restoreErrs, fmt.Errorf("remove scratch: %w", rerr))
			}
		}
		if len(restoreErrs) > 0 {
			err = errors.Join(append([]error{err}, restoreErrs...)...)
		}
	}()

	for _, name := range names {
		if err := os.Rename(filepath.Join(path, name), filepath.Join(temp, name)); err != nil {
			return fmt.Errorf("sortdir: move %s: %w", name, err)
		}
		moved = append(moved, name)
	}

	log.Info("directory sorted", "path", path, "subdirs", len(names))
	return nil
}

func subdirs(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("sortdir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
