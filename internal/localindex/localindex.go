// Package localindex persists the client's belief about the server state:
// one line per tracked filename, written in full on every mutation via
// write-to-temp-then-rename so a crash mid-write never leaves a torn
// index.txt behind.
package localindex

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/surfsync/surfsync/internal/surfproto"
)

const indexFileName = "index.txt"

// Index is the on-disk index.txt for one watched directory.
type Index struct {
	baseDir string
}

// Open binds an Index to baseDir. The file need not exist yet; a missing
// file behaves as an empty index.
func Open(baseDir string) *Index {
	return &Index{baseDir: baseDir}
}

func (idx *Index) path() string {
	return filepath.Join(idx.baseDir, indexFileName)
}

// Lookup returns the recorded (version, hashlist) for filename, or
// (surfproto.NoVersion, nil, false) if there is no entry.
func (idx *Index) Lookup(filename string) (version int, hashlist []string, found bool) {
	f, err := os.Open(idx.path())
	if err != nil {
		return surfproto.NoVersion, nil, false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) < 2 || parts[0] != filename {
			continue
		}
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		return v, append([]string(nil), parts[2:]...), true
	}
	return surfproto.NoVersion, nil, false
}

// Filenames returns every filename with an entry in index.txt, in file
// order. Used to find entries whose file has disappeared from disk.
func (idx *Index) Filenames() ([]string, error) {
	f, err := os.Open(idx.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) == 0 {
			continue
		}
		names = append(names, parts[0])
	}
	return names, sc.Err()
}

// Set records (version, hashlist) for filename, rewriting index.txt in
// full: the matching line is replaced in place if it already exists,
// otherwise the new line is appended. The write goes to a temp file that
// is renamed over index.txt, so a crash mid-write never produces a torn
// read of the old or new content.
func (idx *Index) Set(filename string, version int, hashlist []string) error {
	if err := os.MkdirAll(idx.baseDir, 0o755); err != nil {
		return err
	}

	var lines []string
	set := false
	if f, err := os.Open(idx.path()); err == nil {
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			line := sc.Text()
			parts := strings.Fields(line)
			if len(parts) > 0 && parts[0] == filename {
				lines = append(lines, formatLine(filename, version, hashlist))
				set = true
			} else if len(parts) > 0 {
				lines = append(lines, line)
			}
		}
		f.Close()
	}
	if !set {
		lines = append(lines, formatLine(filename, version, hashlist))
	}

	tmpPath := idx.path() + ".new"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, idx.path())
}

func formatLine(filename string, version int, hashlist []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", filename, version)
	for _, h := range hashlist {
		b.WriteByte(' ')
		b.WriteString(h)
	}
	return b.String()
}
