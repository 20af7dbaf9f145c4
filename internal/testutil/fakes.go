package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"foodcrimes/internal/imagegen"
)

// FakeGenerator returns Image or Err and counts calls. A positive Delay
// blocks until it elapses or the context ends.
type FakeGenerator struct {
	mu    sync.Mutex
	Image *imagegen.Image
	Err   error
	Delay time.Duration
	calls int
	last  string
}

func (g *FakeGenerator) Generate(ctx context.Context, prompt string) (*imagegen.Image, error) {
	g.mu.Lock()
	g.calls++
	g.last = prompt
	g.mu.Unlock()

	if g.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.Delay):
		}
	}
	return g.Image, g.Err
}

func (g *FakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *FakeGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// FakeUploader records uploads in memory and serves them from BaseURL.
type FakeUploader struct {
	mu       sync.Mutex
	BaseURL  string
	Err      error
	EmptyURL bool
	Delay    time.Duration
	Objects  map[string][]byte
	Types    map[string]string
}

func (u *FakeUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if u.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(u.Delay):
		}
	}
	if u.Err != nil {
		return "", u.Err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Objects == nil {
		u.Objects = make(map[string][]byte)
		u.Types = make(map[string]string)
	}
	u.Objects[key] = data
	u.Types[key] = contentType
	if u.EmptyURL {
		return "", nil
	}
	base := u.BaseURL
	if base == "" {
		base = "https://cdn.test"
	}
	return fmt.Sprintf("%s/%s", base, key), nil
}

func (u *FakeUploader) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.Objects)
}
