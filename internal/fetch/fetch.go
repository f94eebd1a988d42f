// Package fetch downloads all image pages of a chapter with bounded
// parallelism, decrypts the ones that need it, and hands back a
// strictly ordered result sequence.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"

	"tankobon/internal/crypto"
	"tankobon/internal/domain"
	"tankobon/internal/tiles"
)

// Result is the outcome of retrieving one page. Data is nil when the
// page failed; Index is the page's position among the chapter's image
// pages, which is also its slot in the returned slice.
type Result struct {
	Index int
	Data  []byte
	Ext   string
}

type PageFailure struct {
	Index int
	Err   error
}

// PartialFailure reports that some pages failed after all pages were
// attempted. The caller decides whether to abort or write a partial
// archive.
type PartialFailure struct {
	Failed []PageFailure
}

func (e *PartialFailure) Error() string {
	indices := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		indices = append(indices, fmt.Sprintf("%d", f.Index+1))
	}
	return fmt.Sprintf("%d of the chapter's pages failed: %s", len(e.Failed), strings.Join(indices, ", "))
}

type Options struct {
	// Workers bounds the number of simultaneous fetches. Zero means
	// DefaultWorkers.
	Workers int
}

// DefaultWorkers derives the worker budget from available parallelism,
// capped so a large machine does not hammer the remote host.
func DefaultWorkers() int {
	workers := runtime.GOMAXPROCS(0)
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Run fetches every image page of the chapter. Fetches complete out of
// order; each result lands in the slot matching the page's declared
// position, so the returned sequence is always in chapter order. A
// failed page never aborts its siblings and nothing is retried here;
// if any page failed the error is a *PartialFailure alongside the
// successful results. A canceled context stops new dispatches and
// returns the context error.
func Run(ctx context.Context, provider domain.Provider, chapter domain.Chapter, opts Options) ([]Result, error) {
	pages := chapter.ImagePages()
	if len(pages) == 0 {
		return nil, fmt.Errorf("chapter %s has no image pages", chapter.ID)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers > len(pages) {
		workers = len(pages)
	}

	results := make([]Result, len(pages))
	failures := make([]error, len(pages))

	jobs := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()

			for i := range jobs {
				data, ext, err := fetchPage(ctx, provider, pages[i])
				if err != nil {
					failures[i] = err
					results[i] = Result{Index: i}
					continue
				}
				results[i] = Result{Index: i, Data: data, Ext: ext}
			}
		}()
	}

	// dispatch cooperatively: no new fetch starts once the caller has
	// canceled, but in-flight ones run to completion
dispatch:
	for i := range pages {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)

	for w := 0; w < workers; w++ {
		<-done
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failed []PageFailure
	for i, err := range failures {
		if err != nil {
			failed = append(failed, PageFailure{Index: i, Err: err})
		}
	}

	if len(failed) > 0 {
		sort.Slice(failed, func(a, b int) bool { return failed[a].Index < failed[b].Index })
		return results, &PartialFailure{Failed: failed}
	}

	return results, nil
}

// fetchPage runs the per-page pipeline: validate, fetch, decrypt when
// the descriptor carries key material, restore shuffled tiles when the
// descriptor is marked scrambled, then sniff the image format.
func fetchPage(ctx context.Context, provider domain.Provider, page domain.Page) ([]byte, string, error) {
	if err := page.Validate(); err != nil {
		return nil, "", err
	}

	var params crypto.Params
	if page.Encrypted() {
		// reject malformed key material before spending a network call
		var err error
		params, err = crypto.ParseParams(page.KeyHex, page.IVHex)
		if err != nil {
			return nil, "", err
		}
	}

	data, err := provider.FetchPage(ctx, page)
	if err != nil {
		return nil, "", err
	}

	if page.Encrypted() {
		data, err = crypto.DecryptCBC(data, params)
		if err != nil {
			return nil, "", err
		}
	}

	if page.Scrambled {
		data, err = tiles.Unscramble(data)
		if err != nil {
			return nil, "", err
		}
	}

	return data, SniffExt(data), nil
}

// SniffExt infers the image extension from the payload itself,
// falling back to jpg for content the sniffer cannot place.
func SniffExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
