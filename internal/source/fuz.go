package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"

	"tankobon/internal/domain"
	"tankobon/internal/parse"
	"tankobon/internal/protobuf"
	"tankobon/internal/sharedhttp"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
)

const (
	fuzBaseURL = "https://comic-fuz.com"
	fuzAPIURL  = "https://api.comic-fuz.com"
	fuzImgURL  = "https://img.comic-fuz.com"

	fuzViewerEndpoint = "/v1/web_manga_viewer"
)

var fuzURLPattern = regexp.MustCompile(`^https?://comic-fuz\.com/manga/`)

func init() {
	register("Fuz", fuzURLPattern, NewFuz)
}

type fuz struct {
	RawURL      string
	ChapterID   uint32
	MangaID     uint32
	RawPosition string
	Position    protobuf.ChapterPosition
	Quality     protobuf.ImageQuality
	Secret      string
	APIURL      string
	ImgURL      string
	Client      *http.Client
}

func NewFuz(rawURL string, opts Options) domain.Provider {
	quality := protobuf.ImageQualityNormal
	if opts.Quality == "high" {
		quality = protobuf.ImageQualityHigh
	}

	secret := opts.DeviceSecret
	if len(secret) == 0 {
		secret = uuid.NewString()
	}

	f := &fuz{
		RawURL:      rawURL,
		RawPosition: opts.Position,
		Quality:     quality,
		Secret:      secret,
		APIURL:      fuzAPIURL,
		ImgURL:      fuzImgURL,
		Client:      sharedhttp.NewClient(),
	}

	if len(opts.BaseURL) != 0 {
		f.APIURL = opts.BaseURL
	}

	return f
}

func (f *fuz) String() string {
	return "Fuz"
}

func (f *fuz) ValidateInput() error {
	// the detail position names no page list, so it cannot back a
	// download
	switch f.RawPosition {
	case "", "first":
		f.Position = protobuf.ChapterPositionFirst
	case "last":
		f.Position = protobuf.ChapterPositionLast
	default:
		return fmt.Errorf("unsupported chapter position: %s", f.RawPosition)
	}

	if chapterID, err := parse.FuzChapterID(f.RawURL); err == nil {
		f.ChapterID = chapterID
		return nil
	}

	mangaID, err := parse.FuzMangaID(f.RawURL)
	if err != nil {
		return fmt.Errorf("fuz url must name a chapter viewer or a manga: %s", f.RawURL)
	}

	f.MangaID = mangaID
	return nil
}

// ResolveChapter issues the binary metadata request and pipes the
// response through the wire decoder.
func (f *fuz) ResolveChapter(ctx context.Context) (domain.Chapter, error) {
	req := &protobuf.WebMangaViewerRequest{
		DeviceInfo: &protobuf.DeviceInfo{
			Secret:       f.Secret,
			DeviceType:   protobuf.DeviceTypeBrowser,
			ImageQuality: f.Quality,
		},
		UseTicket:    false,
		ConsumePoint: &protobuf.UserPoint{},
	}

	if f.ChapterID != 0 {
		id := f.ChapterID
		req.ChapterID = &id
	} else {
		req.MangaChapter = &protobuf.MangaChapter{
			MangaID:  f.MangaID,
			Position: f.Position,
		}
	}

	body, err := req.Marshal()
	if err != nil {
		return domain.Chapter{}, domain.NewProviderError(domain.CauseSchema, "fuz: encode request", err)
	}

	var resp *protobuf.WebMangaViewerResponse

	retryErr := retry.Do(func() error {
		raw, err := f.postProto(ctx, fuzViewerEndpoint, body)
		if err != nil {
			return err
		}

		decoded, err := protobuf.UnmarshalWebMangaViewerResponse(raw)
		if err != nil {
			return domain.NewProviderError(domain.CauseSchema, "fuz: decode response", err)
		}

		resp = decoded
		return nil
	}, sharedhttp.RetryOptions(ctx)...)
	if retryErr != nil {
		return domain.Chapter{}, retryErr
	}

	return f.buildChapter(resp)
}

func (f *fuz) buildChapter(resp *protobuf.WebMangaViewerResponse) (domain.Chapter, error) {
	chapter := domain.Chapter{
		ID: fmt.Sprintf("%d", f.ChapterID),
	}

	// chapter id is optional on the wire; fall back to the id the
	// caller requested
	if resp.ChapterID != nil {
		chapter.ID = fmt.Sprintf("%d", *resp.ChapterID)
	}
	if resp.ChapterTitle != nil {
		chapter.Title = *resp.ChapterTitle
	}

	for i, page := range resp.Pages {
		var p domain.Page

		switch {
		case page.Image != nil:
			p = domain.Page{
				Kind:      domain.PageImage,
				SourceRef: page.Image.ImageURL,
				Width:     int(page.Image.ImageWidth),
				Height:    int(page.Image.ImageHeight),
			}
			if page.Image.EncryptionKey != nil {
				p.KeyHex = *page.Image.EncryptionKey
			}
			if page.Image.IV != nil {
				p.IVHex = *page.Image.IV
			}
		case page.WebView != nil:
			p = domain.Page{Kind: domain.PageWebView, TargetURL: page.WebView.URL}
		case page.Last != nil:
			p = domain.Page{Kind: domain.PageLast}
		}

		if err := p.Validate(); err != nil {
			return domain.Chapter{}, domain.NewProviderError(domain.CauseSchema, fmt.Sprintf("fuz: page %d", i), err)
		}

		chapter.Pages = append(chapter.Pages, p)
	}

	if len(chapter.ImagePages()) == 0 {
		return domain.Chapter{}, domain.NewProviderError(domain.CauseNotFound, "fuz: resolve chapter", errors.New("response contains no image pages"))
	}

	return chapter, nil
}

// FetchPage retrieves the encrypted-or-plain bytes from the image CDN.
// Decryption is the scheduler's job.
func (f *fuz) FetchPage(ctx context.Context, page domain.Page) ([]byte, error) {
	imageURL, err := f.imageURL(page.SourceRef)
	if err != nil {
		return nil, domain.NewProviderError(domain.CauseSchema, "fuz: image url", err)
	}

	var data []byte

	retryErr := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return domain.NewProviderError(domain.CauseSchema, "fuz: create request", err)
		}

		req.Header.Set("User-Agent", "tankobon")
		req.Header.Set("Referer", fuzBaseURL)

		resp, err := f.Client.Do(req)
		if err != nil {
			return domain.NewProviderError(domain.CauseNetwork, "fuz: fetch page", err)
		}
		defer resp.Body.Close()

		if err := sharedhttp.CheckStatusCode("fuz: fetch page", resp.StatusCode); err != nil {
			return err
		}

		data, err = io.ReadAll(bufio.NewReader(resp.Body))
		if err != nil {
			return domain.NewProviderError(domain.CauseNetwork, "fuz: read page", err)
		}

		return nil
	}, sharedhttp.RetryOptions(ctx)...)

	return data, retryErr
}

func (f *fuz) postProto(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	path, err := url.JoinPath(f.APIURL, endpoint)
	if err != nil {
		return nil, domain.NewProviderError(domain.CauseSchema, "fuz: api url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewProviderError(domain.CauseSchema, "fuz: create request", err)
	}

	req.Header.Set("User-Agent", "tankobon")
	req.Header.Set("Referer", fuzBaseURL)
	req.Header.Set("Content-Type", "application/protobuf")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(domain.CauseNetwork, "fuz: request metadata", err)
	}
	defer resp.Body.Close()

	if err := sharedhttp.CheckStatusCode("fuz: request metadata", resp.StatusCode); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(bufio.NewReader(resp.Body))
	if err != nil {
		return nil, domain.NewProviderError(domain.CauseNetwork, "fuz: read metadata", err)
	}

	return raw, nil
}

// imageURL resolves a page reference against the image CDN. References
// arrive as CDN paths with a signed query; absolute URLs pass through.
func (f *fuz) imageURL(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return ref, nil
	}

	base, err := url.Parse(f.ImgURL)
	if err != nil {
		return "", err
	}

	return base.ResolveReference(parsed).String(), nil
}
