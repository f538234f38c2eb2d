package totals_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/equip-api/internal/engine/totals"
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

type CacheTestSuite struct {
	suite.Suite
	cache *totals.Cache
	calls int
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (s *CacheTestSuite) SetupTest() {
	s.cache = totals.NewCache()
	s.calls = 0
}

func (s *CacheTestSuite) compute() *equipment.VariantTotals {
	s.calls++
	return &equipment.VariantTotals{Totals: equipment.Totals{Price: float64(s.calls)}}
}

func (s *CacheTestSuite) TestSameVersionsReuseResult() {
	key := totals.CacheKey{LinksVersion: 3, EntriesVersion: 7}

	first, hit := s.cache.Compute("variant-1", key, s.compute)
	s.False(hit)

	second, hit := s.cache.Compute("variant-1", key, s.compute)
	s.True(hit)
	s.Same(first, second)
	s.Equal(1, s.calls)
	s.False(s.cache.ShouldRecompute("variant-1", key))
}

func (s *CacheTestSuite) TestEitherVersionChangeRecomputes() {
	key := totals.CacheKey{LinksVersion: 3, EntriesVersion: 7}
	s.cache.Compute("variant-1", key, s.compute)

	s.True(s.cache.ShouldRecompute("variant-1", totals.CacheKey{LinksVersion: 4, EntriesVersion: 7}))
	s.True(s.cache.ShouldRecompute("variant-1", totals.CacheKey{LinksVersion: 3, EntriesVersion: 8}))

	_, hit := s.cache.Compute("variant-1", totals.CacheKey{LinksVersion: 4, EntriesVersion: 7}, s.compute)
	s.False(hit)
	s.Equal(2, s.calls)

	// the old key is no longer cached
	s.True(s.cache.ShouldRecompute("variant-1", key))
}

func (s *CacheTestSuite) TestEntriesAreScopedPerVariant() {
	key := totals.CacheKey{LinksVersion: 1, EntriesVersion: 1}
	s.cache.Compute("variant-1", key, s.compute)

	s.True(s.cache.ShouldRecompute("variant-2", key))
}

func (s *CacheTestSuite) TestInvalidate() {
	key := totals.CacheKey{LinksVersion: 1, EntriesVersion: 1}
	s.cache.Compute("variant-1", key, s.compute)

	s.cache.Invalidate("variant-1")

	s.True(s.cache.ShouldRecompute("variant-1", key))
	s.Equal(0, s.cache.Len())
}

func (s *CacheTestSuite) TestPrune() {
	key := totals.CacheKey{LinksVersion: 1, EntriesVersion: 1}
	s.cache.Compute("variant-1", key, s.compute)
	s.cache.Compute("variant-2", key, s.compute)

	dropped := s.cache.Prune(func(variantID string) bool { return variantID == "variant-2" })

	s.Equal(1, dropped)
	s.Equal(1, s.cache.Len())
	s.False(s.cache.ShouldRecompute("variant-2", key))
}
