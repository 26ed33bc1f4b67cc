// Package ignore loads an optional glob-pattern ignore file consulted
// during the client's directory scan, supplementing the hardcoded
// exclusion of index.txt and dot-prefixed names.
package ignore

import (
	"bufio"
	"os"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher holds the compiled set of ignore globs for one watched
// directory. A nil or zero-value Matcher matches nothing.
type Matcher struct {
	globs []glob.Glob
}

// Load reads patterns (one per line, blank lines and '#' comments
// skipped) from path. A missing file is not an error — it yields an empty
// Matcher, since the ignore file is optional.
func Load(path string) (*Matcher, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Matcher{}, nil
		}
		return nil, err
	}
	defer f.Close()

	m := &Matcher{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		g, err := glob.Compile(line)
		if err != nil {
			continue
		}
		m.globs = append(m.globs, g)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Match reports whether name should be excluded from the sync pass.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return false
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
