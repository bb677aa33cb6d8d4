// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
)

// DefaultFile is the name of the cached master inside the cache directory.
const DefaultFile = "Shoonya_BFO_Modified_Master.csv"

// Dir resolves the base cache directory.
// Precedence:
//  1. BFOMASTER_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/bfomaster
//  3. the working directory
func Dir() string {
	if c, ok := os.LookupEnv("BFOMASTER_CACHE_DIR"); ok && c != "" {
		return c
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "bfomaster")
	}
	return "."
}

// EnsureBaseDir creates the base cache directory and returns its path.
func EnsureBaseDir() (string, error) {
	base := Dir()
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, nil
}

// MasterPath returns where the cached master lives. An absolute file is used
// as-is; a relative one (or the default, when empty) is placed under Dir.
func MasterPath(file string) string {
	if file == "" {
		file = DefaultFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(Dir(), file)
}

// ModTime returns the modification time of path and whether it exists as a
// regular file.
func ModTime(path string) (time.Time, bool) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return time.Time{}, false
	}
	return fi.ModTime(), true
}

// SameDay reports whether a and b fall on the same calendar day in b's
// location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsFromToday reports whether the file at path was last modified on today's
// calendar date. A missing file is never from today.
func IsFromToday(path string, today time.Time) bool {
	mt, ok := ModTime(path)
	if !ok {
		return false
	}
	log.Debugf("file modify date: %s", mt.In(today.Location()).Format(time.DateOnly))
	return SameDay(mt, today)
}

// Age renders how long ago path was modified, e.g. "3 hours ago".
func Age(path string, now time.Time) string {
	mt, ok := ModTime(path)
	if !ok {
		return "never"
	}
	return humanize.RelTime(mt, now, "ago", "from now")
}

// Purge removes leftover temp files (*.tmp) in dir older than maxAge. These
// come from writes interrupted before the final rename.
func Purge(dir string, maxAge time.Duration) error {
	if maxAge <= 0 {
		log.Debug("cache cleaning disabled")
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmp") {
			continue
		}
		info, err := e.Info()
		if err != nil || time.Since(info.ModTime()) <= maxAge {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if err := os.Remove(p); err == nil {
			log.Debugf("removed stale cache file %s", p)
		} else {
			log.WithError(err).Warnf("failed to remove cache file %s", p)
		}
	}
	return nil
}
