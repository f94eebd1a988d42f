package protobuf

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// UnmarshalWebMangaViewerResponse decodes a response payload. The
// transform is pure: the same bytes always yield the same message or
// the same error. Unknown scalar fields are skipped for protocol
// evolution; unknown page-content variants are rejected.
func UnmarshalWebMangaViewerResponse(data []byte) (*WebMangaViewerResponse, error) {
	resp := &WebMangaViewerResponse{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, schemaErr("response tag", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case 1:
			raw, n, err := consumeBytes(data, typ, "user_point")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			point, err := unmarshalUserPoint(raw)
			if err != nil {
				return nil, err
			}
			resp.UserPoint = point

		case 2:
			v, n, err := consumeVarint(data, typ, "chapter_id")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			id := uint32(v)
			resp.ChapterID = &id

		case 3:
			raw, n, err := consumeBytes(data, typ, "chapter_title")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			title := string(raw)
			resp.ChapterTitle = &title

		case 4:
			raw, n, err := consumeBytes(data, typ, "pages")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			page, err := unmarshalViewerPage(raw)
			if err != nil {
				return nil, err
			}
			resp.Pages = append(resp.Pages, page)

		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, schemaErr(fmt.Sprintf("response field %d", num), protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return resp, nil
}

// unmarshalViewerPage decodes the three-way page variant. An
// unrecognized variant tag fails closed instead of defaulting to an
// image interpretation.
func unmarshalViewerPage(data []byte) (*ViewerPage, error) {
	page := &ViewerPage{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, schemaErr("page tag", protowire.ParseError(n))
		}
		data = data[n:]

		raw, n, err := consumeBytes(data, typ, fmt.Sprintf("page variant %d", num))
		if err != nil {
			return nil, err
		}
		data = data[n:]

		switch num {
		case 1:
			img, err := unmarshalImagePage(raw)
			if err != nil {
				return nil, err
			}
			page.Image = img
		case 2:
			view, err := unmarshalWebViewPage(raw)
			if err != nil {
				return nil, err
			}
			page.WebView = view
		case 3:
			last, err := unmarshalLastPage(raw)
			if err != nil {
				return nil, err
			}
			page.Last = last
		default:
			return nil, schemaErr(fmt.Sprintf("unknown page variant %d", num), nil)
		}
	}

	if page.Image == nil && page.WebView == nil && page.Last == nil {
		return nil, schemaErr("empty page variant", nil)
	}

	return page, nil
}

func unmarshalImagePage(data []byte) (*ViewerPageImage, error) {
	img := &ViewerPageImage{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, schemaErr("image page tag", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case 1:
			raw, n, err := consumeBytes(data, typ, "image_url")
			if err != nil {
				return nil, err
			}
			data = data[n:]
			img.ImageURL = string(raw)
		case 2:
			raw, n, err := consumeBytes(data, typ, "iv")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			iv := string(raw)
			img.IV = &iv
		case 3:
			raw, n, err := consumeBytes(data, typ, "encryption_key")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			key := string(raw)
			img.EncryptionKey = &key
		case 4:
			v, n, err := consumeVarint(data, typ, "image_width")
			if err != nil {
				return nil, err
			}
			data = data[n:]
			img.ImageWidth = int32(v)
		case 5:
			v, n, err := consumeVarint(data, typ, "image_height")
			if err != nil {
				return nil, err
			}
			data = data[n:]
			img.ImageHeight = int32(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, schemaErr(fmt.Sprintf("image page field %d", num), protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return img, nil
}

func unmarshalWebViewPage(data []byte) (*ViewerPageWebView, error) {
	view := &ViewerPageWebView{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, schemaErr("webview page tag", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case 1:
			raw, n, err := consumeBytes(data, typ, "webview url")
			if err != nil {
				return nil, err
			}
			data = data[n:]
			view.URL = string(raw)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, schemaErr(fmt.Sprintf("webview page field %d", num), protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return view, nil
}

func unmarshalLastPage(data []byte) (*ViewerPageLast, error) {
	last := &ViewerPageLast{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, schemaErr("last page tag", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case 1:
			v, n, err := consumeVarint(data, typ, "last page chapter_id")
			if err != nil {
				return nil, err
			}
			data = data[n:]

			id := uint32(v)
			last.ChapterID = &id
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, schemaErr(fmt.Sprintf("last page field %d", num), protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return last, nil
}

func unmarshalUserPoint(data []byte) (*UserPoint, error) {
	point := &UserPoint{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, schemaErr("user point tag", protowire.ParseError(n))
		}
		data = data[n:]

		switch num {
		case 1:
			v, n, err := consumeVarint(data, typ, "user point free")
			if err != nil {
				return nil, err
			}
			data = data[n:]
			point.Free = uint32(v)
		case 2:
			v, n, err := consumeVarint(data, typ, "user point paid")
			if err != nil {
				return nil, err
			}
			data = data[n:]
			point.Paid = uint32(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, schemaErr(fmt.Sprintf("user point field %d", num), protowire.ParseError(n))
			}
			data = data[n:]
		}
	}

	return point, nil
}

func consumeBytes(data []byte, typ protowire.Type, field string) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, schemaErr(fmt.Sprintf("%s: wire type %d", field, typ), nil)
	}
	raw, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return nil, 0, schemaErr(field, protowire.ParseError(n))
	}
	return raw, n, nil
}

func consumeVarint(data []byte, typ protowire.Type, field string) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, schemaErr(fmt.Sprintf("%s: wire type %d", field, typ), nil)
	}
	v, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return 0, 0, schemaErr(field, protowire.ParseError(n))
	}
	return v, n, nil
}
