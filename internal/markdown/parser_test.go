package markdown

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CageChen/anydir"
)

func TestParse(t *testing.T) {
	p := NewParser()
	source := []byte("# Hello World\n\nThis is a *test*.")

	page, err := p.Parse(source)
	require.NoError(t, err)

	assert.Contains(t, page.HTML, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, page.HTML, "<em>test</em>")
	assert.Equal(t, "Hello World", page.Title)
}

func TestParseTOC(t *testing.T) {
	p := NewParser()
	source := []byte("# Head 1\n## Head *2*\n### Head 3\n## Head 1")

	page, err := p.Parse(source)
	require.NoError(t, err)

	assert.Equal(t, []TOCItem{
		{Level: 1, Title: "Head 1", Anchor: "head-1"},
		{Level: 2, Title: "Head 2", Anchor: "head-2"},
		{Level: 3, Title: "Head 3", Anchor: "head-3"},
		{Level: 2, Title: "Head 1", Anchor: "head-1-1"},
	}, page.TOC)
}

func TestParseHighlighting(t *testing.T) {
	page, err := NewParser().Parse([]byte("```go\nfunc main() {}\n```\n"))
	require.NoError(t, err)
	assert.Contains(t, page.HTML, `class="chroma"`)
}

func TestParseNoHeadings(t *testing.T) {
	page, err := NewParser().Parse([]byte("just text"))
	require.NoError(t, err)
	assert.Empty(t, page.Title)
	assert.Empty(t, page.TOC)
}

func TestRender(t *testing.T) {
	dir, err := anydir.NewCtDir(fstest.MapFS{
		"README.md": &fstest.MapFile{Data: []byte("# Readme\n")},
		"bad.md":    &fstest.MapFile{Data: []byte{'#', ' ', 0xff}},
	}, ".")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		entry, err := dir.Open("README.md")
		require.NoError(t, err)

		page, err := NewParser().Render(entry)
		require.NoError(t, err)
		assert.Equal(t, "Readme", page.Title)
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		entry, err := dir.Open("bad.md")
		require.NoError(t, err)

		_, err = NewParser().Render(entry)
		assert.ErrorIs(t, err, anydir.ErrInvalidData)
	})
}
