// Package protobuf implements the wire codec for the Fuz
// web_manga_viewer endpoint. The platform speaks protobuf over HTTP;
// the messages are small enough that an explicit protowire codec is
// used instead of generated code, which keeps optional-field semantics
// and unknown-variant rejection visible at the call site.
package protobuf

import (
	"fmt"
)

type DeviceType int32

const (
	DeviceTypeIOS DeviceType = iota
	DeviceTypeAndroid
	DeviceTypeBrowser
)

type ImageQuality int32

const (
	ImageQualityNormal ImageQuality = iota
	ImageQualityHigh
)

type ChapterPosition int32

const (
	ChapterPositionFirst ChapterPosition = iota
	ChapterPositionLast
	ChapterPositionDetail
)

// SchemaError marks a response that does not match the documented
// schema. Decoding fails closed: an unrecognized page variant is never
// guessed at, since treating it as an image would corrupt output
// silently.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("schema error: %s", e.Field)
	}
	return fmt.Sprintf("schema error: %s: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaErr(field string, err error) *SchemaError {
	return &SchemaError{Field: field, Err: err}
}

type DeviceInfo struct {
	Secret       string
	AppVer       string
	DeviceType   DeviceType
	OSVer        string
	IsTablet     bool
	ImageQuality ImageQuality
}

type UserPoint struct {
	Free uint32
	Paid uint32
}

// MangaChapter selects a chapter relative to a manga instead of by a
// direct chapter id.
type MangaChapter struct {
	MangaID  uint32
	Position ChapterPosition
}

// WebMangaViewerRequest carries device identity, consumption flags and
// a chapter selector. Exactly one of ChapterID and MangaChapter must be
// set; they form a oneof on the wire.
type WebMangaViewerRequest struct {
	DeviceInfo   *DeviceInfo
	UseTicket    bool
	ConsumePoint *UserPoint
	ChapterID    *uint32
	MangaChapter *MangaChapter
}

// ViewerPageImage is one image page entry. IV and EncryptionKey are
// hex strings, present only when the page bytes are encrypted; their
// absence means "not encrypted", which is distinct from empty strings.
type ViewerPageImage struct {
	ImageURL      string
	IV            *string
	EncryptionKey *string
	ImageWidth    int32
	ImageHeight   int32
}

type ViewerPageWebView struct {
	URL string
}

type ViewerPageLast struct {
	ChapterID *uint32
}

// ViewerPage is a three-way variant; exactly one field is non-nil.
type ViewerPage struct {
	Image   *ViewerPageImage
	WebView *ViewerPageWebView
	Last    *ViewerPageLast
}

// WebMangaViewerResponse carries chapter metadata plus the page list.
// ChapterID optionality is ambiguous in the source schema, so it is
// decoded as optional.
type WebMangaViewerResponse struct {
	UserPoint    *UserPoint
	ChapterID    *uint32
	ChapterTitle *string
	Pages        []*ViewerPage
}
