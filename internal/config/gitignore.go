package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GitignoreParser loads and matches .gitignore-style patterns for
// DiscoverSourceFiles. It intentionally does not reimplement glob matching:
// every pattern is lowered once, at parse time, into a doublestar glob (the
// same library Config.Include/Exclude already use), so matching itself is
// a single doublestar.Match call rather than a hand-rolled optimizer.
type GitignoreParser struct {
	patterns []gitignorePattern
}

type gitignorePattern struct {
	glob      string // doublestar glob, rooted at the project directory
	negate    bool
	directory bool
}

// NewGitignoreParser creates an empty parser.
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore reads rootPath/.gitignore, if present. A missing file is not
// an error: most discovered projects won't have one.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.AddPattern(line)
	}
	return scanner.Err()
}

// AddPattern parses and adds a single gitignore-syntax line.
func (gp *GitignoreParser) AddPattern(line string) {
	gp.patterns = append(gp.patterns, parseGitignoreLine(line))
}

// parseGitignoreLine lowers one gitignore line to a doublestar glob.
// A pattern containing a slash other than a trailing one is anchored to
// the project root; a pattern with no other slash matches at any depth,
// which doublestar expresses with a leading "**/".
func parseGitignoreLine(line string) gitignorePattern {
	p := gitignorePattern{}

	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.directory = true
		line = strings.TrimSuffix(line, "/")
	}

	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")
	anchored = anchored || strings.Contains(line, "/")

	if anchored {
		p.glob = line
	} else {
		p.glob = "**/" + line
	}
	return p
}

// ShouldIgnore reports whether path (relative to the project root, using
// either slash convention) should be excluded from discovery.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	ignored := false
	for _, p := range gp.patterns {
		if p.matches(path, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

func (p gitignorePattern) matches(path string, isDir bool) bool {
	if p.directory {
		if isDir {
			ok, _ := doublestar.Match(p.glob, path)
			return ok
		}
		ok, _ := doublestar.Match(p.glob+"/**", path)
		return ok
	}

	ok, _ := doublestar.Match(p.glob, path)
	return ok
}
