package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"tankobon/internal/domain"
	"tankobon/internal/parse"
	"tankobon/internal/sharedhttp"

	"github.com/avast/retry-go"
	"github.com/gocolly/colly"
	"github.com/gocolly/colly/extensions"
)

// gigaWebsites are the preset hosts sharing the viewer implementation.
var gigaWebsites = []string{
	"shonenjumpplus.com",
	"tonarinoyj.jp",
	"viewer.heros-web.com",
	"comicbushi-web.com",
	"comicborder.com",
	"comic-days.com",
	"comic-action.com",
	"comic-ogyaaa.com",
	"comic-gardo.com",
	"comic-zenon.com",
	"feelweb.jp",
	"kuragebunch.com",
	"www.sunday-webry.com",
	"magcomi.com",
}

var gigaURLPattern = regexp.MustCompile(
	`^https?://(` + strings.Join(escapeAll(gigaWebsites), "|") + `)/episode/\d+`,
)

func escapeAll(hosts []string) []string {
	escaped := make([]string, 0, len(hosts))
	for _, host := range hosts {
		escaped = append(escaped, regexp.QuoteMeta(host))
	}
	return escaped
}

func init() {
	register("Giga", gigaURLPattern, NewGiga)
}

type giga struct {
	RawURL    string
	EpisodeID string
	BaseURL   string
	Client    *http.Client
	Collector *colly.Collector
}

func NewGiga(rawURL string, opts Options) domain.Provider {
	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	extensions.RandomUserAgent(collector)

	collector.SetRequestTimeout(120 * time.Second)

	g := &giga{
		RawURL:    rawURL,
		Client:    sharedhttp.NewClient(),
		Collector: collector,
	}

	if len(opts.BaseURL) != 0 {
		g.BaseURL = opts.BaseURL
	}

	return g
}

func (g *giga) String() string {
	return "Giga"
}

func (g *giga) ValidateInput() error {
	episodeID, err := parse.GigaEpisodeID(g.RawURL)
	if err != nil {
		return fmt.Errorf("giga url must name an episode: %s", g.RawURL)
	}
	g.EpisodeID = episodeID

	if len(g.BaseURL) == 0 {
		parsed, err := url.Parse(g.RawURL)
		if err != nil {
			return err
		}
		g.BaseURL = parsed.Scheme + "://" + parsed.Host
	}

	return nil
}

type gigaEpisode struct {
	ReadableProduct struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		TypeName      string `json:"typeName"`
		IsPublic      bool   `json:"isPublic"`
		Number        int    `json:"number"`
		Permalink     string `json:"permalink"`
		PageStructure struct {
			ChoJuGiga        string `json:"choJuGiga"`
			ReadingDirection string `json:"readingDirection"`
			Pages            []struct {
				Type    string `json:"type"`
				Src     string `json:"src"`
				Width   int    `json:"width"`
				Height  int    `json:"height"`
				LinkURL string `json:"linkUrl"`
			} `json:"pages"`
		} `json:"pageStructure"`
	} `json:"readableProduct"`
}

// ResolveChapter fetches the episode metadata JSON. Some hosts stopped
// exposing the json endpoint, so a 404 falls back to scraping the
// episode JSON embedded in the viewer page.
func (g *giga) ResolveChapter(ctx context.Context) (domain.Chapter, error) {
	path, err := url.JoinPath(g.BaseURL, "episode", g.EpisodeID+".json")
	if err != nil {
		return domain.Chapter{}, domain.NewProviderError(domain.CauseSchema, "giga: episode url", err)
	}

	var episode gigaEpisode

	retryErr := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return domain.NewProviderError(domain.CauseSchema, "giga: create request", err)
		}

		req.Header.Set("User-Agent", "tankobon")

		resp, err := g.Client.Do(req)
		if err != nil {
			return domain.NewProviderError(domain.CauseNetwork, "giga: request episode", err)
		}
		defer resp.Body.Close()

		if err := sharedhttp.CheckStatusCode("giga: request episode", resp.StatusCode); err != nil {
			return err
		}

		if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(&episode); err != nil {
			return domain.NewProviderError(domain.CauseSchema, "giga: decode episode", err)
		}

		return nil
	}, sharedhttp.RetryOptions(ctx)...)

	if retryErr != nil {
		if domain.ErrorCauseOf(retryErr) != domain.CauseNotFound {
			return domain.Chapter{}, retryErr
		}

		scraped, err := g.scrapeEpisode()
		if err != nil {
			return domain.Chapter{}, err
		}
		episode = *scraped
	}

	return g.buildChapter(episode)
}

// scrapeEpisode reads the episode JSON embedded in the viewer page.
func (g *giga) scrapeEpisode() (*gigaEpisode, error) {
	c := g.Collector.Clone()

	var episode *gigaEpisode
	var decodeErr error

	c.OnHTML("script#episode-json", func(e *colly.HTMLElement) {
		var parsed gigaEpisode
		if err := json.Unmarshal([]byte(e.Attr("data-value")), &parsed); err != nil {
			decodeErr = domain.NewProviderError(domain.CauseSchema, "giga: decode embedded episode", err)
			return
		}
		episode = &parsed
	})

	path, err := url.JoinPath(g.BaseURL, "episode", g.EpisodeID)
	if err != nil {
		return nil, domain.NewProviderError(domain.CauseSchema, "giga: episode url", err)
	}

	if err := c.Visit(path); err != nil {
		return nil, domain.NewProviderError(domain.CauseNetwork, "giga: scrape episode", err)
	}

	if decodeErr != nil {
		return nil, decodeErr
	}
	if episode == nil {
		return nil, domain.NewProviderError(domain.CauseNotFound, "giga: scrape episode", errors.New("no embedded episode json"))
	}

	return episode, nil
}

func (g *giga) buildChapter(episode gigaEpisode) (domain.Chapter, error) {
	product := episode.ReadableProduct

	if len(product.ID) == 0 {
		return domain.Chapter{}, domain.NewProviderError(domain.CauseSchema, "giga: build chapter", errors.New("episode id missing"))
	}

	if !product.IsPublic {
		return domain.Chapter{}, domain.NewProviderError(domain.CauseAuthRequired, "giga: build chapter", fmt.Errorf("episode %s is not public", product.ID))
	}

	chapter := domain.Chapter{
		ID:     product.ID,
		Title:  product.Title,
		Number: float32(product.Number),
	}

	for i, page := range product.PageStructure.Pages {
		var p domain.Page

		switch {
		case len(page.Src) != 0:
			// every image page arrives with its tile grid shuffled
			p = domain.Page{
				Kind:      domain.PageImage,
				SourceRef: page.Src,
				Scrambled: true,
				Width:     page.Width,
				Height:    page.Height,
			}
		case len(page.LinkURL) != 0:
			p = domain.Page{Kind: domain.PageWebView, TargetURL: page.LinkURL}
		default:
			// trailing filler entries (ads, back matter) carry neither
			// src nor link
			p = domain.Page{Kind: domain.PageLast}
		}

		if err := p.Validate(); err != nil {
			return domain.Chapter{}, domain.NewProviderError(domain.CauseSchema, fmt.Sprintf("giga: page %d", i), err)
		}

		chapter.Pages = append(chapter.Pages, p)
	}

	if len(chapter.ImagePages()) == 0 {
		return domain.Chapter{}, domain.NewProviderError(domain.CauseNotFound, "giga: build chapter", errors.New("episode contains no image pages"))
	}

	return chapter, nil
}

// FetchPage retrieves one page image; giga page references are
// directly usable absolute URLs.
func (g *giga) FetchPage(ctx context.Context, page domain.Page) ([]byte, error) {
	var data []byte

	retryErr := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.SourceRef, nil)
		if err != nil {
			return domain.NewProviderError(domain.CauseSchema, "giga: create request", err)
		}

		req.Header.Set("User-Agent", "tankobon")

		resp, err := g.Client.Do(req)
		if err != nil {
			return domain.NewProviderError(domain.CauseNetwork, "giga: fetch page", err)
		}
		defer resp.Body.Close()

		if err := sharedhttp.CheckStatusCode("giga: fetch page", resp.StatusCode); err != nil {
			return err
		}

		data, err = io.ReadAll(bufio.NewReader(resp.Body))
		if err != nil {
			return domain.NewProviderError(domain.CauseNetwork, "giga: read page", err)
		}

		return nil
	}, sharedhttp.RetryOptions(ctx)...)

	return data, retryErr
}
