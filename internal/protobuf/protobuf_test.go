package protobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func encryptedImagePage(url, iv, key string) []byte {
	var img []byte
	img = appendString(img, 1, url)
	img = appendString(img, 2, iv)
	img = appendString(img, 3, key)
	img = appendUint(img, 4, 822)
	img = appendUint(img, 5, 1200)
	return appendMessage(nil, 1, img)
}

func TestMarshalRequest_ChapterID(t *testing.T) {
	id := uint32(42)
	req := &WebMangaViewerRequest{
		DeviceInfo: &DeviceInfo{
			Secret:       "secret",
			DeviceType:   DeviceTypeBrowser,
			ImageQuality: ImageQualityHigh,
		},
		ConsumePoint: &UserPoint{},
		ChapterID:    &id,
	}

	b, err := req.Marshal()
	require.NoError(t, err)

	// walk the top-level fields back out
	seen := map[protowire.Number]bool{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		require.Positive(t, n)
		b = b[n:]
		seen[num] = true

		switch num {
		case 4:
			require.Equal(t, protowire.VarintType, typ)
			v, n := protowire.ConsumeVarint(b)
			require.Positive(t, n)
			b = b[n:]
			assert.Equal(t, uint64(42), v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			require.Positive(t, n)
			b = b[n:]
		}
	}

	assert.True(t, seen[1], "device info missing")
	assert.True(t, seen[4], "chapter id missing")
	assert.False(t, seen[5], "manga chapter must not be set")
}

func TestMarshalRequest_MangaChapter(t *testing.T) {
	req := &WebMangaViewerRequest{
		DeviceInfo:   &DeviceInfo{Secret: "secret"},
		MangaChapter: &MangaChapter{MangaID: 7, Position: ChapterPositionLast},
	}

	b, err := req.Marshal()
	require.NoError(t, err)

	var body []byte
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		require.Positive(t, n)
		b = b[n:]

		if num == 5 {
			require.Equal(t, protowire.BytesType, typ)
			raw, n := protowire.ConsumeBytes(b)
			require.Positive(t, n)
			b = b[n:]
			body = raw
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, b)
		require.Positive(t, n)
		b = b[n:]
	}

	require.NotNil(t, body)

	mangaID, n := protowire.ConsumeVarint(body[1:])
	require.Positive(t, n)
	assert.Equal(t, uint64(7), mangaID)
}

func TestMarshalRequest_SelectorRequired(t *testing.T) {
	req := &WebMangaViewerRequest{DeviceInfo: &DeviceInfo{}}
	_, err := req.Marshal()
	assert.Error(t, err)

	id := uint32(1)
	req = &WebMangaViewerRequest{
		ChapterID:    &id,
		MangaChapter: &MangaChapter{MangaID: 2},
	}
	_, err = req.Marshal()
	assert.Error(t, err)
}

func TestUnmarshalResponse(t *testing.T) {
	var point []byte
	point = appendUint(point, 1, 10)
	point = appendUint(point, 2, 3)

	var b []byte
	b = appendMessage(b, 1, point)
	b = appendUint(b, 2, 99)
	b = appendString(b, 3, "Chapter Title")
	b = appendMessage(b, 4, encryptedImagePage("/page1.jpeg", "aabb", "ccdd"))
	b = appendMessage(b, 4, appendMessage(nil, 2, appendString(nil, 1, "https://example.com/extra")))
	b = appendMessage(b, 4, appendMessage(nil, 3, appendUint(nil, 1, 100)))

	resp, err := UnmarshalWebMangaViewerResponse(b)
	require.NoError(t, err)

	require.NotNil(t, resp.UserPoint)
	assert.Equal(t, uint32(10), resp.UserPoint.Free)
	assert.Equal(t, uint32(3), resp.UserPoint.Paid)

	require.NotNil(t, resp.ChapterID)
	assert.Equal(t, uint32(99), *resp.ChapterID)
	require.NotNil(t, resp.ChapterTitle)
	assert.Equal(t, "Chapter Title", *resp.ChapterTitle)

	require.Len(t, resp.Pages, 3)

	img := resp.Pages[0].Image
	require.NotNil(t, img)
	assert.Equal(t, "/page1.jpeg", img.ImageURL)
	require.NotNil(t, img.IV)
	assert.Equal(t, "aabb", *img.IV)
	require.NotNil(t, img.EncryptionKey)
	assert.Equal(t, "ccdd", *img.EncryptionKey)
	assert.Equal(t, int32(822), img.ImageWidth)
	assert.Equal(t, int32(1200), img.ImageHeight)

	view := resp.Pages[1].WebView
	require.NotNil(t, view)
	assert.Equal(t, "https://example.com/extra", view.URL)

	last := resp.Pages[2].Last
	require.NotNil(t, last)
	require.NotNil(t, last.ChapterID)
	assert.Equal(t, uint32(100), *last.ChapterID)
}

func TestUnmarshalResponse_OptionalAbsence(t *testing.T) {
	var img []byte
	img = appendString(img, 1, "/plain.jpeg")
	b := appendMessage(nil, 4, appendMessage(nil, 1, img))

	resp, err := UnmarshalWebMangaViewerResponse(b)
	require.NoError(t, err)

	assert.Nil(t, resp.ChapterID)
	assert.Nil(t, resp.ChapterTitle)
	assert.Nil(t, resp.UserPoint)

	require.Len(t, resp.Pages, 1)
	page := resp.Pages[0].Image
	require.NotNil(t, page)
	// absent key material stays absent, it never becomes an empty string
	assert.Nil(t, page.IV)
	assert.Nil(t, page.EncryptionKey)
}

func TestUnmarshalResponse_Deterministic(t *testing.T) {
	b := encryptedImagePage("/page1.jpeg", "aabb", "ccdd")
	b = appendMessage(nil, 4, b)

	first, err := UnmarshalWebMangaViewerResponse(b)
	require.NoError(t, err)

	second, err := UnmarshalWebMangaViewerResponse(b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestUnmarshalResponse_UnknownPageVariant(t *testing.T) {
	variant := appendMessage(nil, 9, appendString(nil, 1, "surprise"))
	b := appendMessage(nil, 4, variant)

	_, err := UnmarshalWebMangaViewerResponse(b)

	var schemaError *SchemaError
	require.ErrorAs(t, err, &schemaError)
	assert.Contains(t, schemaError.Field, "unknown page variant 9")
}

func TestUnmarshalResponse_EmptyPageVariant(t *testing.T) {
	b := appendMessage(nil, 4, nil)

	_, err := UnmarshalWebMangaViewerResponse(b)

	var schemaError *SchemaError
	require.ErrorAs(t, err, &schemaError)
}

func TestUnmarshalResponse_WireTypeMismatch(t *testing.T) {
	// chapter_id carried as bytes instead of varint
	b := appendString(nil, 2, "not a varint")

	_, err := UnmarshalWebMangaViewerResponse(b)

	var schemaError *SchemaError
	require.ErrorAs(t, err, &schemaError)
}

func TestUnmarshalResponse_UnknownScalarSkipped(t *testing.T) {
	var img []byte
	img = appendString(img, 1, "/page1.jpeg")
	img = appendUint(img, 77, 5)

	var b []byte
	b = appendUint(b, 50, 1)
	b = appendMessage(b, 4, appendMessage(nil, 1, img))

	resp, err := UnmarshalWebMangaViewerResponse(b)
	require.NoError(t, err)
	require.Len(t, resp.Pages, 1)
	assert.Equal(t, "/page1.jpeg", resp.Pages[0].Image.ImageURL)
}

func TestUnmarshalResponse_Truncated(t *testing.T) {
	b := appendString(nil, 3, "Chapter Title")

	_, err := UnmarshalWebMangaViewerResponse(b[:len(b)-4])

	var schemaError *SchemaError
	require.ErrorAs(t, err, &schemaError)
}
