package domain

import (
	"context"
	"encoding/hex"
	"fmt"
)

// Provider is the capability set implemented once per platform family.
// Implementations differ in wire format and auth headers only; the rest
// of the pipeline never inspects which provider produced a Chapter.
type Provider interface {
	String() string
	ValidateInput() error
	ResolveChapter(context.Context) (Chapter, error)
	// FetchPage returns the raw bytes backing a page, encrypted or not.
	// Decryption is layered on top by the fetch scheduler.
	FetchPage(context.Context, Page) ([]byte, error)
}

// Chapter is one viewable unit of a series. The page list defines the
// canonical output order and is fixed at resolution time.
type Chapter struct {
	ID     string
	Title  string
	Number float32
	Pages  []Page
}

// ImagePages returns the image descriptors in declared order.
func (c Chapter) ImagePages() []Page {
	pages := make([]Page, 0, len(c.Pages))
	for _, p := range c.Pages {
		if p.Kind == PageImage {
			pages = append(pages, p)
		}
	}
	return pages
}

type PageKind int

const (
	// PageImage is a regular page backed by image bytes.
	PageImage PageKind = iota
	// PageWebView is an interstitial in-reader web page.
	PageWebView
	// PageLast marks the artificial end-of-chapter page.
	PageLast
)

func (k PageKind) String() string {
	switch k {
	case PageImage:
		return "image"
	case PageWebView:
		return "webview"
	case PageLast:
		return "last"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Page describes how to obtain and interpret one page's bytes.
// KeyHex and IVHex are present iff the platform encrypts page bytes;
// absence means the fetched bytes are directly usable. Scrambled marks
// pages whose image arrives with its tile grid shuffled.
type Page struct {
	Kind      PageKind
	SourceRef string
	KeyHex    string
	IVHex     string
	Scrambled bool
	Width     int
	Height    int
	TargetURL string
}

// Encrypted reports whether the page carries decryption material.
func (p Page) Encrypted() bool {
	return len(p.KeyHex) != 0 || len(p.IVHex) != 0
}

// Validate guards the pipeline from malformed descriptors before any
// network call is wasted. Keys must be AES sizes (16 or 32 bytes) and
// the iv must match the block size.
func (p Page) Validate() error {
	switch p.Kind {
	case PageImage:
		if len(p.SourceRef) == 0 {
			return fmt.Errorf("image page is missing a source reference")
		}
	case PageWebView:
		if len(p.TargetURL) == 0 {
			return fmt.Errorf("webview page is missing a target url")
		}
		return nil
	case PageLast:
		return nil
	default:
		return fmt.Errorf("unknown page kind: %d", int(p.Kind))
	}

	if !p.Encrypted() {
		return nil
	}

	if len(p.KeyHex) == 0 || len(p.IVHex) == 0 {
		return fmt.Errorf("page carries only one of encryption key and iv")
	}

	key, err := hex.DecodeString(p.KeyHex)
	if err != nil {
		return fmt.Errorf("malformed encryption key: %w", err)
	}
	if len(key) != 16 && len(key) != 32 {
		return fmt.Errorf("unsupported encryption key size: %d bytes", len(key))
	}

	iv, err := hex.DecodeString(p.IVHex)
	if err != nil {
		return fmt.Errorf("malformed encryption iv: %w", err)
	}
	if len(iv) != 16 {
		return fmt.Errorf("encryption iv must be 16 bytes, got %d", len(iv))
	}

	return nil
}
