// Package archive writes the ordered page sequence to an output
// container. Pages are always written in the index order declared by
// the chapter, with zero-padded sequential names.
package archive

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // needed to transcode gif pages for pdf output
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"tankobon/internal/fetch"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp" // needed to decode webp
)

type Format string

const (
	FormatRaw Format = "raw"
	FormatCBZ Format = "cbz"
	FormatPDF Format = "pdf"
)

func IsValidLocation(location string) error {
	if _, err := os.Stat(location); err != nil {
		return err
	}

	return nil
}

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatRaw:
		return FormatRaw, nil
	case FormatCBZ:
		return FormatCBZ, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Ext returns the path extension for a format; raw output is a
// directory and has none.
func (f Format) Ext() string {
	switch f {
	case FormatCBZ:
		return ".cbz"
	case FormatPDF:
		return ".pdf"
	default:
		return ""
	}
}

// Write assembles the pages into the chosen container. Slots without
// data are skipped; callers only pass those through after accepting a
// partial archive.
func Write(format Format, pages []fetch.Result, path string) error {
	switch format {
	case FormatRaw:
		return WriteRaw(pages, path)
	case FormatCBZ:
		return WriteCBZ(pages, path)
	case FormatPDF:
		return WritePDF(pages, path)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// pageName returns the zero-padded entry name for a page slot.
func pageName(page fetch.Result) string {
	return fmt.Sprintf("%03d%s", page.Index+1, page.Ext)
}

// WriteRaw writes one image file per page into a directory.
func WriteRaw(pages []fetch.Result, dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	for _, page := range pages {
		if page.Data == nil {
			continue
		}

		if err := os.WriteFile(filepath.Join(dir, pageName(page)), page.Data, 0o644); err != nil {
			return errors.Wrapf(err, "writing page %d", page.Index+1)
		}
	}

	return nil
}

// WriteCBZ writes the pages into a zip container whose entry order
// matches chapter page order exactly.
func WriteCBZ(pages []fetch.Result, cbzPath string) error {
	if err := os.MkdirAll(filepath.Dir(cbzPath), os.ModePerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	cbzFile, err := os.Create(cbzPath)
	if err != nil {
		return errors.Wrap(err, "creating archive")
	}
	defer cbzFile.Close()

	writeBuf := bufio.NewWriter(cbzFile)
	defer writeBuf.Flush()

	zipWriter := zip.NewWriter(writeBuf)
	defer zipWriter.Close()

	for _, page := range pages {
		if page.Data == nil {
			continue
		}

		writer, err := zipWriter.Create(pageName(page))
		if err != nil {
			return errors.Wrapf(err, "adding page %d", page.Index+1)
		}
		if _, err := writer.Write(page.Data); err != nil {
			return errors.Wrapf(err, "writing page %d", page.Index+1)
		}
	}

	return nil
}

// WritePDF writes one pdf page per image, sized to the image extent.
func WritePDF(pages []fetch.Result, pdfPath string) error {
	if err := os.MkdirAll(filepath.Dir(pdfPath), os.ModePerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	pdf := fpdf.New(fpdf.OrientationPortrait, fpdf.UnitMillimeter, "", "")

	for _, page := range pages {
		if page.Data == nil {
			continue
		}

		data, imageType, err := pdfImage(page)
		if err != nil {
			return errors.Wrapf(err, "converting page %d", page.Index+1)
		}

		name := pageName(page)
		opts := fpdf.ImageOptions{ImageType: imageType}

		info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if pdf.Err() {
			return errors.Wrapf(pdf.Error(), "registering page %d", page.Index+1)
		}

		imgWidth, imgHeight := info.Extent()

		pdf.AddPageFormat(fpdf.OrientationPortrait, fpdf.SizeType{Wd: imgWidth, Ht: imgHeight})
		pdf.ImageOptions(name, 0, 0, imgWidth, imgHeight, false, opts, 0, "")
	}

	return pdf.OutputFileAndClose(pdfPath)
}

// pdfImage prepares a page payload for fpdf, which cannot embed webp
// or gif payloads directly; those are transcoded to png.
func pdfImage(page fetch.Result) ([]byte, string, error) {
	switch page.Ext {
	case ".jpg":
		return page.Data, "JPG", nil
	case ".png":
		return page.Data, "PNG", nil
	}

	img, _, err := image.Decode(bytes.NewReader(page.Data))
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "PNG", nil
}
