package wikidocu

import "strings"

// DirectoryNode is one entry of a rendered directory hierarchy.
// Path is absolute and identifies the node.
type DirectoryNode struct {
	Name     string
	Path     string
	Dir      bool
	Children []*DirectoryNode
}

// Render formats the hierarchy rooted at n as an indented tree whose first
// line is the root's absolute path.
func (n *DirectoryNode) Render() string {
	var sb strings.Builder
	sb.WriteString(n.Path)
	renderChildren(&sb, n, "")
	return sb.String()
}

func renderChildren(sb *strings.Builder, n *DirectoryNode, prefix string) {
	for i, child := range n.Children {
		connector, next := "├── ", prefix+"│   "
		if i == len(n.Children)-1 {
			connector, next = "└── ", prefix+"    "
		}
		sb.WriteByte('\n')
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(child.Name)
		if child.Dir {
			renderChildren(sb, child, next)
		}
	}
}
