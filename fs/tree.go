// Package fs reads the local corpus: directory trees and text files.
package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/wikidocu"
)

// DefaultExtensions is the allow-list applied to files found by expanding a
// directory scan unit.
var DefaultExtensions = []string{
	".md", ".markdown", ".txt", ".rst",
	".py", ".go", ".js", ".ts", ".java", ".c", ".h", ".cpp", ".rs",
	".json", ".yaml", ".yml", ".toml", ".html", ".csv",
}

// TreeOptions controls which entries BuildTree visits.
type TreeOptions struct {
	// IncludeHidden includes entries whose name starts with ".".
	IncludeHidden bool

	// Extensions, when non-empty, restricts files to these extensions
	// (compared case-insensitively, with the leading dot). Directories are
	// never filtered by extension.
	Extensions []string
}

func (o TreeOptions) allows(entry fs.DirEntry) bool {
	if !o.IncludeHidden && strings.HasPrefix(entry.Name(), ".") {
		return false
	}
	if entry.IsDir() || len(o.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(entry.Name()))
	return slices.ContainsFunc(o.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// BuildTree walks the directory at root and returns its hierarchy with
// entries sorted by name. Subdirectories that cannot be read are left out.
// Returns ENOTFOUND if root does not exist and EINVALID if it is not a
// directory.
func BuildTree(root string, opts TreeOptions) (*wikidocu.DirectoryNode, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "resolve path %q: %v", root, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, wikidocu.Errorf(wikidocu.ENOTFOUND, "path not found: %s", root)
	} else if err != nil {
		return nil, wikidocu.Errorf(wikidocu.EUNREADABLE, "stat %s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, wikidocu.Errorf(wikidocu.EINVALID, "not a directory: %s", root)
	}

	node := &wikidocu.DirectoryNode{Name: filepath.Base(abs), Path: abs, Dir: true}
	children, err := buildChildren(abs, opts)
	if err != nil {
		return nil, wikidocu.Errorf(wikidocu.EUNREADABLE, "read directory %s: %v", root, err)
	}
	node.Children = children
	return node, nil
}

func buildChildren(dir string, opts TreeOptions) ([]*wikidocu.DirectoryNode, error) {
	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var nodes []*wikidocu.DirectoryNode
	for _, entry := range entries {
		if !opts.allows(entry) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		node := &wikidocu.DirectoryNode{Name: entry.Name(), Path: path}
		if entry.IsDir() {
			children, err := buildChildren(path, opts)
			if err != nil {
				continue
			}
			node.Dir = true
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Files returns the paths of every file under node in tree order.
func Files(node *wikidocu.DirectoryNode) []string {
	var paths []string
	var visit func(n *wikidocu.DirectoryNode)
	visit = func(n *wikidocu.DirectoryNode) {
		for _, child := range n.Children {
			if child.Dir {
				visit(child)
				continue
			}
			paths = append(paths, child.Path)
		}
	}
	visit(node)
	return paths
}
