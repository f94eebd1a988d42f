package protobuf

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Marshal encodes the request in protobuf wire format.
func (r *WebMangaViewerRequest) Marshal() ([]byte, error) {
	if (r.ChapterID == nil) == (r.MangaChapter == nil) {
		return nil, fmt.Errorf("request needs exactly one of chapter id and manga chapter")
	}

	var b []byte

	if r.DeviceInfo != nil {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, r.DeviceInfo.marshal())
	}

	if r.UseTicket {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}

	if r.ConsumePoint != nil {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, r.ConsumePoint.marshal())
	}

	switch {
	case r.ChapterID != nil:
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(*r.ChapterID))
	case r.MangaChapter != nil:
		b = protowire.AppendTag(b, 5, protowire.BytesType)
		b = protowire.AppendBytes(b, r.MangaChapter.marshal())
	}

	return b, nil
}

func (d *DeviceInfo) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, d.Secret)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, d.AppVer)
	if d.DeviceType != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.DeviceType))
	}
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendString(b, d.OSVer)
	if d.IsTablet {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if d.ImageQuality != 0 {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(d.ImageQuality))
	}
	return b
}

func (p *UserPoint) marshal() []byte {
	var b []byte
	if p.Free != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Free))
	}
	if p.Paid != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(p.Paid))
	}
	return b
}

func (m *MangaChapter) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.MangaID))
	if m.Position != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Position))
	}
	return b
}
