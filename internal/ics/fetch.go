package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "icalagg/internal/log"
)

// Source identifies one feed to fetch.
type Source struct {
	Room string
	URL  string
}

// FetchResult is the raw payload for one source.
type FetchResult struct {
	Source Source
	Body   []byte
}

// Fetcher retrieves iCalendar feeds over HTTP(S). There is no caching
// and no retry: a run either fetches every feed or fails.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchAll fetches all sources concurrently, one goroutine per room.
// The first failure cancels the remaining fetches and is returned,
// wrapped with the room name and URL; on success the results are in
// the same order as sources.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, error) {
	results := make([]FetchResult, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			body, err := f.fetchOne(ctx, src)
			if err != nil {
				return fmt.Errorf("fetch room %q (%s): %w", src.Room, src.URL, err)
			}
			results[i] = FetchResult{Source: src, Body: body}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	appLog.Info("fetch completed", "rooms", len(sources))
	return results, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, src Source) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}

	appLog.Debug("fetch start", "room", src.Room, "url", src.URL)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	appLog.Debug("fetch success", "room", src.Room, "bytes", len(body))
	return body, nil
}
