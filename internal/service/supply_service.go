package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hatokurandom/hatokurandom/internal/models"
	"github.com/hatokurandom/hatokurandom/internal/pid"
	"github.com/hatokurandom/hatokurandom/internal/repository"
	"github.com/hatokurandom/hatokurandom/internal/stats"
	"github.com/hatokurandom/hatokurandom/internal/supply"
	"github.com/hatokurandom/hatokurandom/pkg/cache"
	"github.com/hatokurandom/hatokurandom/pkg/metrics"
)

var (
	ErrNotFound       = errors.New("supply not found")
	ErrInvalidRequest = errors.New("invalid supply request")
)

const maxRecent = 100

// SupplyStore is the persistence used by SupplyService.
type SupplyStore interface {
	Save(ctx context.Context, s *models.SavedSupply) error
	FindByCode(ctx context.Context, code string) (*models.SavedSupply, error)
	ListRecent(ctx context.Context, limit int) ([]models.SavedSupply, error)
	DeleteByCode(ctx context.Context, code string) error
}

// SharedCache is an optional second cache level shared between servers.
type SharedCache interface {
	Get(ctx context.Context, key string, v interface{}) error
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, key string) error
}

// SupplyService resolves, creates and counts supplies.
type SupplyService struct {
	store     SupplyStore
	generator supply.Generator
	phrases   *supply.PhraseGenerator
	counter   stats.ViewCounter
	l1        *cache.LRU[string, *supply.Supply]
	l2        SharedCache
	logger    *zap.Logger
}

type Options struct {
	Store     SupplyStore
	Generator supply.Generator
	Phrases   *supply.PhraseGenerator
	Counter   stats.ViewCounter                  // optional
	L1        *cache.LRU[string, *supply.Supply] // optional, built from CacheSize when nil
	L2        SharedCache                        // optional
	CacheSize int
	Logger    *zap.Logger
}

func NewSupplyService(opts Options) *SupplyService {
	counter := opts.Counter
	if counter == nil {
		counter = stats.NopCounter{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	phrases := opts.Phrases
	if phrases == nil {
		phrases = supply.NewPhraseGenerator("")
	}
	l1 := opts.L1
	if l1 == nil {
		l1 = cache.NewLRU[string, *supply.Supply](opts.CacheSize)
	}
	return &SupplyService{
		store:     opts.Store,
		generator: opts.Generator,
		phrases:   phrases,
		counter:   counter,
		l1:        l1,
		l2:        opts.L2,
		logger:    logger,
	}
}

// Lookup resolves sid without counting a view. Supplies are cached under
// their canonical SID, so a permalink written in any card order shares one
// entry. A saved supply gets back the title it was saved with.
func (s *SupplyService) Lookup(ctx context.Context, sid string) (*supply.Supply, error) {
	if sid == "" {
		return nil, ErrNotFound
	}
	sup, err := supply.Resolve(sid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	key := sup.SID

	// ===== L1 =====
	if cached, ok := s.l1.Get(key); ok {
		return cached, nil
	}

	// ===== L2 =====
	if s.l2 != nil {
		var cached supply.Supply
		err := s.l2.Get(ctx, key, &cached)
		switch {
		case err == nil:
			metrics.CacheHits.WithLabelValues("l2").Inc()
			s.l1.Put(key, &cached)
			return &cached, nil
		case errors.Is(err, cache.ErrCacheMiss):
			metrics.CacheMisses.WithLabelValues("l2").Inc()
		default:
			s.logger.Warn("shared cache read failed", zap.String("sid", key), zap.Error(err))
		}
	}

	saved, err := s.store.FindByCode(ctx, key)
	if err != nil {
		return nil, err
	}
	if saved != nil && saved.Title != "" {
		sup.Title = saved.Title
	}

	s.l1.Put(key, sup)
	if s.l2 != nil {
		if err := s.l2.Set(ctx, key, sup); err != nil {
			s.logger.Warn("shared cache write failed", zap.String("sid", key), zap.Error(err))
		}
	}
	return sup, nil
}

// View resolves sid and counts a view. Views are counted per permalink, so a
// predefined supply shares its count with its permalink. A failing counter
// is logged and reported as zero views rather than failing the request.
func (s *SupplyService) View(ctx context.Context, sid string) (*models.SupplyResponse, error) {
	return s.describe(ctx, sid, s.counter.Increment)
}

// Describe is View without counting a view.
func (s *SupplyService) Describe(ctx context.Context, sid string) (*models.SupplyResponse, error) {
	return s.describe(ctx, sid, s.counter.Views)
}

func (s *SupplyService) describe(ctx context.Context, sid string, count func(context.Context, string) (int64, error)) (*models.SupplyResponse, error) {
	sup, err := s.Lookup(ctx, sid)
	if err != nil {
		return nil, err
	}
	permalink, err := supply.Permalink(sup.CIDs)
	if err != nil {
		return nil, err
	}

	views, err := count(ctx, permalink)
	if err != nil {
		s.logger.Warn("view counter failed", zap.String("permalink", permalink), zap.Error(err))
		views = 0
	}
	return s.response(sup, permalink, views)
}

// Delete forgets a saved supply and evicts it from both cache levels.
func (s *SupplyService) Delete(ctx context.Context, sid string) error {
	sup, err := supply.Resolve(sid)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if err := s.store.DeleteByCode(ctx, sup.SID); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return err
	}
	s.evict(ctx, sup.SID)
	s.logger.Info("supply deleted", zap.String("sid", sup.SID))
	return nil
}

func (s *SupplyService) evict(ctx context.Context, key string) {
	s.l1.Delete(key)
	if s.l2 != nil {
		if err := s.l2.Delete(ctx, key); err != nil {
			s.logger.Warn("shared cache delete failed", zap.String("sid", key), zap.Error(err))
		}
	}
}

// Create builds a supply from explicit cids, a phrase or the random
// generator, in that order of preference, and saves it.
func (s *SupplyService) Create(ctx context.Context, req models.CreateSupplyRequest) (*models.SupplyResponse, error) {
	var (
		sup    *supply.Supply
		source string
		err    error
	)
	switch {
	case len(req.CIDs) > 0:
		source = "cids"
		sup, err = supply.New(req.CIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	case req.Phrase != "":
		source = "phrase"
		sup, err = s.phrases.FromPhrase(ctx, req.Phrase)
	default:
		source = "random"
		sup, err = s.generator.Generate(ctx)
	}
	if err != nil {
		return nil, err
	}
	if req.Title != "" {
		sup.Title = req.Title
	}

	if err := s.save(ctx, sup); err != nil {
		return nil, err
	}
	// a view before saving may have cached the default title
	s.evict(ctx, sup.SID)
	metrics.SuppliesGenerated.WithLabelValues(source).Inc()
	s.logger.Info("supply created", zap.String("sid", sup.SID), zap.String("source", source))

	return s.response(sup, sup.SID, 0)
}

// Recent lists saved supplies, newest first.
func (s *SupplyService) Recent(ctx context.Context, limit int) ([]models.SavedSupply, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	return s.store.ListRecent(ctx, limit)
}

// save keeps the first title a supply was saved with.
func (s *SupplyService) save(ctx context.Context, sup *supply.Supply) error {
	existing, err := s.store.FindByCode(ctx, sup.SID)
	if err != nil {
		return err
	}
	if existing != nil {
		sup.Title = existing.Title
		return nil
	}

	err = s.store.Save(ctx, &models.SavedSupply{
		Code:      sup.SID,
		Title:     sup.Title,
		CreatedAt: time.Now().UTC(),
	})
	// lost a race with another request saving the same supply
	if errors.Is(err, repository.ErrDuplicateCode) {
		return nil
	}
	return err
}

func (s *SupplyService) response(sup *supply.Supply, permalink string, views int64) (*models.SupplyResponse, error) {
	cs, err := sup.Cards()
	if err != nil {
		return nil, err
	}
	return &models.SupplyResponse{
		SID:       sup.SID,
		Title:     sup.Title,
		Permalink: permalink,
		PID:       pid.PID{APID: "supply", Params: sup.SID}.String(),
		Cards:     cs,
		Views:     views,
	}, nil
}

