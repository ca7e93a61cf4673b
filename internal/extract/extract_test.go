package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "note.txt", []byte("Hello world"))

	text, err := NewRegistry().Extract(path, ".txt")
	require.NoError(t, err)
	require.Equal(t, "Hello world", text)
}

func TestExtract_UnknownExtensionReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "binary.bin", []byte{0x00, 0x01})

	text, err := NewRegistry().Extract(path, ".bin")
	require.NoError(t, err)
	require.Empty(t, text)
}

func TestExtract_CorruptPDFReturnsPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", []byte("this is not a pdf"))

	text, err := NewRegistry().Extract(path, ".pdf")
	require.Error(t, err)
	require.Contains(t, text, "broken.pdf")
	require.Contains(t, text, "content extraction failed")
}

func TestExtract_CorruptWorkbookPlaceholderCarriesError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "numbers.xlsx", []byte("garbage"))

	text, err := NewRegistry().Extract(path, ".xlsx")
	require.Error(t, err)
	require.Contains(t, text, "numbers.xlsx")
	require.Contains(t, text, err.Error())
}

func TestExtract_CSVRendersRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", []byte("name,score\nalice,10\nbob,\n"))

	text, err := NewRegistry().Extract(path, ".csv")
	require.NoError(t, err)
	require.Contains(t, text, "name\tscore")
	require.Contains(t, text, "alice\t10")
	require.Contains(t, text, "bob\t")
}

func TestExtract_Markdown(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.md", []byte("# Title\n\nSome **bold** body text.\n"))

	text, err := NewRegistry().Extract(path, ".md")
	require.NoError(t, err)
	require.Contains(t, text, "Title")
	require.Contains(t, text, "bold")
	require.NotContains(t, text, "**")
	require.NotContains(t, text, "#")
}

func TestExtract_PresentationPartition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	slide, err := zw.Create("ppt/slides/slide1.xml")
	require.NoError(t, err)
	_, err = slide.Write([]byte(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:txBody><a:p><a:r><a:t>Quarterly goals</a:t></a:r><a:r><a:t>Carbon footprint</a:t></a:r></a:p></p:txBody></p:sld>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	text, extractErr := NewRegistry().Extract(path, ".pptx")
	require.NoError(t, extractErr)
	require.Contains(t, text, "Quarterly goals")
	require.Contains(t, text, "Carbon footprint")
}

func TestExtract_LegacyPresentationPlaceholder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "old.ppt", []byte{0xd0, 0xcf, 0x11, 0xe0})

	text, err := NewRegistry().Extract(path, ".ppt")
	require.Error(t, err)
	require.Contains(t, text, "old.ppt")
}

func TestRegistry_Supported(t *testing.T) {
	r := NewRegistry()
	require.True(t, r.Supported(".PDF"))
	require.True(t, r.Supported("xlsx"))
	require.False(t, r.Supported(".exe"))
}
