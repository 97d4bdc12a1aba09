package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads configuration from projectRoot/.mylang.kdl. It returns
// (nil, nil) when the file does not exist — the caller falls back to
// DefaultConfig in that case.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".mylang.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .mylang.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root != "" {
		if filepath.IsAbs(cfg.Project.Root) {
			cfg.Project.Root = filepath.Clean(cfg.Project.Root)
		} else {
			cfg.Project.Root = filepath.Clean(filepath.Join(projectRoot, cfg.Project.Root))
		}
	} else if abs, err := filepath.Abs(projectRoot); err == nil {
		cfg.Project.Root = abs
	} else {
		cfg.Project.Root = projectRoot
	}

	return cfg, nil
}

// parseKDL parses a .mylang.kdl document against a DefaultConfig baseline,
// overwriting whichever fields the document sets.
func parseKDL(content string) (*Config, error) {
	defaultRoot, _ := os.Getwd()
	if defaultRoot == "" {
		defaultRoot = "."
	}
	cfg := DefaultConfig(defaultRoot)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .mylang.kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}

		case "arena":
			for _, cn := range n.Children {
				if nodeName(cn) == "block_size" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Arena.BlockSize = int64(v)
					}
				}
			}

		case "intern":
			for _, cn := range n.Children {
				if nodeName(cn) == "initial_capacity" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Intern.InitialCapacity = v
					}
				}
			}

		case "files":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Files.MaxFileSize = sz
						}
					}
				case "max_total_size_mb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.MaxTotalSizeMB = int64(v)
					}
				case "max_open_files":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.MaxOpenFiles = v
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Files.FollowSymlinks = b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Files.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.WatchDebounceMs = v
					}
				case "parallel_workers":
					if v, ok := firstIntArg(cn); ok {
						cfg.Files.ParallelWorkers = v
					}
				}
			}

		case "lexer":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "retain_comments":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Lexer.RetainComments = b
					}
				case "retain_whitespace":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Lexer.RetainWhitespace = b
					}
				case "allow_unicode_identifiers":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Lexer.AllowUnicodeIdentifiers = b
					}
				case "strict_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Lexer.StrictMode = b
					}
				}
			}

		case "diagnostics":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "suppress_warnings":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Diag.SuppressWarnings = b
					}
				case "suppress_notes":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Diag.SuppressNotes = b
					}
				case "warnings_as_errors":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Diag.WarningsAsErrors = b
					}
				case "max_errors":
					if v, ok := firstIntArg(cn); ok {
						cfg.Diag.MaxErrors = v
					}
				case "format":
					if s, ok := firstStringArg(cn); ok {
						cfg.Diag.Format = s
					}
				case "color":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Diag.Color = b
					}
				}
			}

		case "include":
			if args := collectStringArgs(n); len(args) > 0 {
				cfg.Include = args
			}

		case "exclude":
			if args := collectStringArgs(n); len(args) > 0 {
				cfg.Exclude = args
			}
		}
	}

	return cfg, nil
}

// nodeName returns n's KDL node name, or "" for a nil node.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads a node's string arguments (inline form) or, if
// there are none, falls back to reading child node names (block form):
//
//	exclude "a/**" "b/**"      // inline
//	exclude { "a/**"; "b/**" } // block
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize parses a human size like "10mb" or "512kb"; a bare number is
// bytes.
func parseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "kb"):
		mult = 1024
		s = strings.TrimSuffix(s, "kb")
	case strings.HasSuffix(s, "mb"):
		mult = 1024 * 1024
		s = strings.TrimSuffix(s, "mb")
	case strings.HasSuffix(s, "gb"):
		mult = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "gb")
	case strings.HasSuffix(s, "b"):
		s = strings.TrimSuffix(s, "b")
	}
	s = strings.TrimSpace(s)
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n * mult, nil
}
