package archive

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"tankobon/internal/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngPayload(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testPages(t *testing.T) []fetch.Result {
	t.Helper()

	payload := pngPayload(t)
	return []fetch.Result{
		{Index: 0, Data: payload, Ext: ".png"},
		{Index: 1, Data: payload, Ext: ".png"},
		{Index: 2, Data: payload, Ext: ".png"},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("CBZ")
	require.NoError(t, err)
	assert.Equal(t, FormatCBZ, format)

	format, err = ParseFormat("raw")
	require.NoError(t, err)
	assert.Equal(t, FormatRaw, format)

	format, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)

	_, err = ParseFormat("tar")
	assert.Error(t, err)
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".cbz", FormatCBZ.Ext())
	assert.Equal(t, ".pdf", FormatPDF.Ext())
	assert.Equal(t, "", FormatRaw.Ext())
}

func TestWriteCBZ(t *testing.T) {
	pages := testPages(t)
	cbzPath := filepath.Join(t.TempDir(), "chapter.cbz")

	require.NoError(t, WriteCBZ(pages, cbzPath))

	reader, err := zip.OpenReader(cbzPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 3)

	// entry order matches page order, names are zero padded
	wantNames := []string{"001.png", "002.png", "003.png"}
	for i, file := range reader.File {
		assert.Equal(t, wantNames[i], file.Name)

		rc, err := file.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		assert.Equal(t, pages[i].Data, data)
	}
}

func TestWriteCBZ_SkipsMissingPages(t *testing.T) {
	pages := testPages(t)
	pages[1].Data = nil

	cbzPath := filepath.Join(t.TempDir(), "chapter.cbz")
	require.NoError(t, WriteCBZ(pages, cbzPath))

	reader, err := zip.OpenReader(cbzPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 2)
	assert.Equal(t, "001.png", reader.File[0].Name)
	assert.Equal(t, "003.png", reader.File[1].Name)
}

func TestWriteRaw(t *testing.T) {
	pages := testPages(t)
	dir := filepath.Join(t.TempDir(), "chapter")

	require.NoError(t, WriteRaw(pages, dir))

	for i, name := range []string{"001.png", "002.png", "003.png"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, pages[i].Data, data)
	}
}

func TestWritePDF(t *testing.T) {
	pages := testPages(t)
	pdfPath := filepath.Join(t.TempDir(), "chapter.pdf")

	require.NoError(t, WritePDF(pages, pdfPath))

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(Format("tar"), testPages(t), filepath.Join(t.TempDir(), "chapter.tar"))
	assert.Error(t, err)
}
