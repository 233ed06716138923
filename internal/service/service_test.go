package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatokurandom/hatokurandom/internal/cards"
	"github.com/hatokurandom/hatokurandom/internal/models"
	"github.com/hatokurandom/hatokurandom/internal/render"
	"github.com/hatokurandom/hatokurandom/internal/repository"
	"github.com/hatokurandom/hatokurandom/internal/supply"
	"github.com/hatokurandom/hatokurandom/pkg/cache"
)

type memStore struct {
	mu    sync.Mutex
	saved []models.SavedSupply
}

func (m *memStore) Save(_ context.Context, s *models.SavedSupply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = int64(len(m.saved) + 1)
	m.saved = append(m.saved, *s)
	return nil
}

func (m *memStore) FindByCode(_ context.Context, code string) (*models.SavedSupply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.saved {
		if m.saved[i].Code == code {
			s := m.saved[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteByCode(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.saved {
		if m.saved[i].Code == code {
			m.saved = append(m.saved[:i], m.saved[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", repository.ErrCodeNotFound, code)
}

func (m *memStore) ListRecent(_ context.Context, limit int) ([]models.SavedSupply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.SavedSupply(nil), m.saved...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memCounter struct {
	views map[string]int64
	err   error
}

func (c *memCounter) Increment(_ context.Context, sid string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.views[sid]++
	return c.views[sid], nil
}

func (c *memCounter) Views(_ context.Context, sid string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.views[sid], nil
}

type memShared struct {
	data map[string]supply.Supply
	gets int
}

func (m *memShared) Get(_ context.Context, key string, v interface{}) error {
	m.gets++
	s, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	*(v.(*supply.Supply)) = s
	return nil
}

func (m *memShared) Set(_ context.Context, key string, v interface{}) error {
	m.data[key] = *(v.(*supply.Supply))
	return nil
}

func (m *memShared) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTestService(t *testing.T) (*SupplyService, *memStore, *memCounter, *memShared) {
	t.Helper()
	gen, err := supply.NewRandomGenerator(1, cards.ExpansionBasic)
	require.NoError(t, err)

	store := &memStore{}
	counter := &memCounter{views: map[string]int64{}}
	shared := &memShared{data: map[string]supply.Supply{}}
	svc := NewSupplyService(Options{
		Store:     store,
		Generator: gen,
		Counter:   counter,
		L2:        shared,
		CacheSize: 16,
	})
	return svc, store, counter, shared
}

func TestViewPredefined(t *testing.T) {
	svc, _, counter, _ := newTestService(t)

	resp, err := svc.View(context.Background(), "basic-firstplay")
	require.NoError(t, err)
	assert.Equal(t, "basic-firstplay", resp.SID)
	assert.Equal(t, "BCEGHLMNSV", resp.Permalink)
	assert.Equal(t, "supply:basic-firstplay", resp.PID)
	assert.Len(t, resp.Cards, supply.Size)
	assert.Equal(t, int64(1), resp.Views)

	resp, err = svc.View(context.Background(), "basic-firstplay")
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Views)
	assert.Equal(t, int64(2), counter.views["BCEGHLMNSV"])

	// the permalink of a predefined supply shares its count
	resp, err = svc.View(context.Background(), "BCEGHLMNSV")
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Views)
	assert.NotContains(t, counter.views, "basic-firstplay")
}

func TestDescribeDoesNotCount(t *testing.T) {
	svc, _, counter, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.View(ctx, "basic-guide")
	require.NoError(t, err)

	resp, err := svc.Describe(ctx, "basic-guide")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Views)

	resp, err = svc.Describe(ctx, "basic-guide")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Views)
	assert.Equal(t, int64(1), counter.views[resp.Permalink])
}

func TestViewPermalink(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	resp, err := svc.View(context.Background(), "VSNMLHGECB")
	require.NoError(t, err)
	assert.Equal(t, "BCEGHLMNSV", resp.SID)
	assert.Equal(t, 1, resp.Cards[0].CID)
}

func TestViewNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.View(context.Background(), "This is not valid")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, supply.ErrUnknownSupply)

	_, err = svc.View(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestViewCounterFailureIsNotFatal(t *testing.T) {
	svc, _, counter, _ := newTestService(t)
	counter.err = errors.New("redis down")

	resp, err := svc.View(context.Background(), "basic-guide")
	require.NoError(t, err)
	assert.Zero(t, resp.Views)
}

func TestLookupUsesSharedCache(t *testing.T) {
	svc, _, _, shared := newTestService(t)
	shared.data["BCEGHLMNSV"] = supply.Supply{SID: "BCEGHLMNSV", Title: "From cache", CIDs: []int{1, 2, 4, 6, 7, 11, 12, 13, 18, 21}}

	// any card order reads the canonical entry
	sup, err := svc.Lookup(context.Background(), "VSNMLHGECB")
	require.NoError(t, err)
	assert.Equal(t, "From cache", sup.Title)

	// second lookup is served by L1
	_, err = svc.Lookup(context.Background(), "BCEGHLMNSV")
	require.NoError(t, err)
	assert.Equal(t, 1, shared.gets)

	_, err = svc.Lookup(context.Background(), "basic-guide")
	require.NoError(t, err)
	assert.Contains(t, shared.data, "basic-guide")
}

func TestCreate(t *testing.T) {
	svc, store, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Create(ctx, models.CreateSupplyRequest{CIDs: []int{21, 18, 13, 12, 11, 7, 6, 4, 2, 1}, Title: "Mine"})
	require.NoError(t, err)
	assert.Equal(t, "BCEGHLMNSV", resp.SID)
	assert.Equal(t, "Mine", resp.Title)

	// saving the same supply twice keeps one record
	_, err = svc.Create(ctx, models.CreateSupplyRequest{CIDs: []int{1, 2, 4, 6, 7, 11, 12, 13, 18, 21}})
	require.NoError(t, err)

	phrase, err := svc.Create(ctx, models.CreateSupplyRequest{Phrase: "hello"})
	require.NoError(t, err)
	random, err := svc.Create(ctx, models.CreateSupplyRequest{})
	require.NoError(t, err)
	assert.Len(t, random.Cards, supply.Size)

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	codes := make([]string, 0, len(recent))
	for _, s := range recent {
		codes = append(codes, s.Code)
	}
	assert.Contains(t, codes, phrase.SID)
	assert.Contains(t, codes, random.SID)
	assert.Len(t, store.saved, len(codes))
}

func TestCreatedTitleIsViewed(t *testing.T) {
	svc, _, _, shared := newTestService(t)
	ctx := context.Background()
	firstplay := []int{1, 2, 4, 6, 7, 11, 12, 13, 18, 21}

	// cache the default title before the supply is saved
	before, err := svc.View(ctx, "BCEGHLMNSV")
	require.NoError(t, err)
	require.NotEqual(t, "Mine", before.Title)

	created, err := svc.Create(ctx, models.CreateSupplyRequest{CIDs: firstplay, Title: "Mine"})
	require.NoError(t, err)
	assert.Equal(t, "Mine", created.Title)

	viewed, err := svc.View(ctx, created.SID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", viewed.Title)
	assert.Equal(t, "Mine", shared.data["BCEGHLMNSV"].Title)

	// a later save keeps the first title
	again, err := svc.Create(ctx, models.CreateSupplyRequest{CIDs: firstplay, Title: "Other"})
	require.NoError(t, err)
	assert.Equal(t, "Mine", again.Title)
}

func TestDelete(t *testing.T) {
	svc, store, _, shared := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateSupplyRequest{CIDs: []int{1, 2, 4, 6, 7, 11, 12, 13, 18, 21}, Title: "Mine"})
	require.NoError(t, err)
	_, err = svc.View(ctx, created.SID)
	require.NoError(t, err)
	require.Contains(t, shared.data, created.SID)

	require.NoError(t, svc.Delete(ctx, created.SID))
	assert.Empty(t, store.saved)
	assert.NotContains(t, shared.data, created.SID)

	viewed, err := svc.View(ctx, created.SID)
	require.NoError(t, err)
	assert.NotEqual(t, "Mine", viewed.Title)

	err = svc.Delete(ctx, created.SID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)

	err = svc.Delete(ctx, "This is not valid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateInvalid(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), models.CreateSupplyRequest{CIDs: []int{1, 2}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, supply.ErrInvalidSupply)
}

func TestPageService(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	tmpl, err := render.Default()
	require.NoError(t, err)
	pages, err := NewPageService(tmpl, svc, "hatokurandom", "1.2.3")
	require.NoError(t, err)
	ctx := context.Background()

	home, err := pages.Render(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, home, "<h1>hatokurandom</h1>")

	about, err := pages.Render(ctx, "about")
	require.NoError(t, err)
	assert.Contains(t, about, "Version 1.2.3.")

	list, err := pages.Render(ctx, "supplies:basic")
	require.NoError(t, err)
	assert.Contains(t, list, `href="#supply:basic-firstplay"`)
	assert.NotContains(t, list, "fareast-intro")

	page, err := pages.Render(ctx, "supply:basic-firstplay")
	require.NoError(t, err)
	assert.Contains(t, page, `href="#supply:BCEGHLMNSV"`)
	assert.Equal(t, supply.Size, strings.Count(page, `class="card"`))
	assert.Contains(t, page, "Farming Village")

	// rendering a page reads the count without adding to it
	_, err = svc.View(ctx, "basic-firstplay")
	require.NoError(t, err)
	_, err = pages.Render(ctx, "supply:basic-firstplay")
	require.NoError(t, err)
	resp, err := svc.Describe(ctx, "basic-firstplay")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Views)

	_, err = pages.Render(ctx, "nowhere")
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = pages.Render(ctx, "supply:bogus")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPageServiceRequiresTemplates(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	tmpl, err := render.Parse(strings.NewReader(`<div id="home"><p>{{title}}</p></div>`))
	require.NoError(t, err)

	_, err = NewPageService(tmpl, svc, "hatokurandom", "1.2.3")
	assert.ErrorIs(t, err, render.ErrTemplateNotFound)
}
