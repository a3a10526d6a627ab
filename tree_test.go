package wikidocu_test

import (
	"testing"

	"github.com/fwojciec/wikidocu"
	"github.com/stretchr/testify/assert"
)

func TestDirectoryNode_Render(t *testing.T) {
	t.Parallel()

	t.Run("renders nested entries with connectors", func(t *testing.T) {
		t.Parallel()

		root := &wikidocu.DirectoryNode{
			Name: "docs",
			Path: "/tmp/docs",
			Dir:  true,
			Children: []*wikidocu.DirectoryNode{
				{Name: "a.md", Path: "/tmp/docs/a.md"},
				{Name: "guide", Path: "/tmp/docs/guide", Dir: true, Children: []*wikidocu.DirectoryNode{
					{Name: "b.md", Path: "/tmp/docs/guide/b.md"},
					{Name: "c.md", Path: "/tmp/docs/guide/c.md"},
				}},
				{Name: "z.txt", Path: "/tmp/docs/z.txt"},
			},
		}

		want := "/tmp/docs\n" +
			"├── a.md\n" +
			"├── guide\n" +
			"│   ├── b.md\n" +
			"│   └── c.md\n" +
			"└── z.txt"
		assert.Equal(t, want, root.Render())
	})

	t.Run("renders empty directory as its path", func(t *testing.T) {
		t.Parallel()

		root := &wikidocu.DirectoryNode{Name: "docs", Path: "/tmp/docs", Dir: true}

		assert.Equal(t, "/tmp/docs", root.Render())
	})
}
