package resource

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lighthouse/internal/metrics"
	"github.com/mcoot/lighthouse/internal/model"
	"github.com/mcoot/lighthouse/internal/testutil"
)

type GateSuite struct {
	suite.Suite
	store *MemoryStore
	gate  *Gate
	ctx   context.Context
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.gate = s.newGate(DefaultConfig())
	s.ctx = context.Background()
}

func (s *GateSuite) newGate(cfg Config) *Gate {
	g, err := NewGate(s.store, cfg, metrics.New(), testutil.NopLogger())
	s.Require().NoError(err)
	return g
}

func (s *GateSuite) TestDefaultPolicy() {
	s.False(s.gate.IsSafe(KindScript))
	s.False(s.gate.IsSafe(KindFileArchive))
	s.False(s.gate.IsSafe(KindUnknown))
	for _, kind := range []FileKind{KindPainting, KindTexture, KindLevel, KindVoice, KindPlan, KindJpeg, KindPng} {
		s.True(s.gate.IsSafe(kind), kind.String())
	}
}

func (s *GateSuite) TestDisabledCheckAllowsEverything() {
	gate := s.newGate(Config{CheckUnsafeFiles: false})
	for kind := range kindNames {
		s.True(gate.IsSafe(kind), kind.String())
	}
}

func (s *GateSuite) TestMissingResourcesKeepsOrder() {
	s.Require().NoError(s.store.Write(s.ctx, "b", []byte("LVL")))

	missing, err := s.gate.MissingResources(s.ctx, []string{"a", "b", "c"})
	s.Require().NoError(err)
	s.Equal([]string{"a", "c"}, missing)
}

func (s *GateSuite) TestMissingResourcesEmpty() {
	missing, err := s.gate.MissingResources(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(missing)
}

func (s *GateSuite) TestMissingResourcesManyHashes() {
	var hashes, want []string
	for i := 0; i < 100; i++ {
		h := "h" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		hashes = append(hashes, h)
		if i%3 == 0 {
			s.Require().NoError(s.store.Write(s.ctx, h, []byte("PLN")))
		} else {
			want = append(want, h)
		}
	}

	missing, err := s.gate.MissingResources(s.ctx, hashes)
	s.Require().NoError(err)
	s.Equal(want, missing)
}

func (s *GateSuite) TestSizeOf() {
	s.Require().NoError(s.store.Write(s.ctx, "abc", []byte("PTG12")))

	size, err := s.gate.SizeOf(s.ctx, "abc")
	s.Require().NoError(err)
	s.Equal(int64(5), size)

	size, err = s.gate.SizeOf(s.ctx, "nope")
	s.Require().NoError(err)
	s.Zero(size)
}

func (s *GateSuite) TestUploadSafeResource() {
	kind, err := s.gate.Upload(s.ctx, "lvl1", []byte("LVLb0000"))
	s.Require().NoError(err)
	s.Equal(KindLevel, kind)

	exists, _ := s.gate.Exists(s.ctx, "lvl1")
	s.True(exists)

	kind, err = s.gate.KindOf(s.ctx, "lvl1")
	s.Require().NoError(err)
	s.Equal(KindLevel, kind)
}

func (s *GateSuite) TestUploadUnsafeResourceRefused() {
	kind, err := s.gate.Upload(s.ctx, "script1", []byte("FSHb"))
	s.ErrorIs(err, ErrUnsafeResource)
	s.Equal(KindScript, kind)

	exists, _ := s.gate.Exists(s.ctx, "script1")
	s.False(exists)
}

func (s *GateSuite) TestUploadUnsafeAllowedWhenCheckDisabled() {
	gate := s.newGate(Config{CheckUnsafeFiles: false})

	_, err := gate.Upload(s.ctx, "archive", []byte("LVL...FARC"))
	s.Require().NoError(err)
}

func (s *GateSuite) TestUploadDuplicateRefused() {
	_, err := s.gate.Upload(s.ctx, "dup", []byte("PLN1"))
	s.Require().NoError(err)

	_, err = s.gate.Upload(s.ctx, "dup", []byte("PLN2"))
	s.ErrorIs(err, model.ErrResourceExists)
}

func (s *GateSuite) TestUploadInvalidHash() {
	_, err := s.gate.Upload(s.ctx, "../x", []byte("PLN"))
	s.ErrorIs(err, ErrInvalidHash)
}

// countingStore counts reads that reach the underlying store
type countingStore struct {
	*MemoryStore
	reads atomic.Int32
}

func (c *countingStore) Read(ctx context.Context, hash string) ([]byte, error) {
	c.reads.Add(1)
	return c.MemoryStore.Read(ctx, hash)
}

func (s *GateSuite) TestKindOfIsCached() {
	store := &countingStore{MemoryStore: NewMemoryStore()}
	s.Require().NoError(store.Write(s.ctx, "png1", []byte{0x89, 0x50, 0x4E, 0x47}))
	gate, err := NewGate(store, DefaultConfig(), nil, testutil.NopLogger())
	s.Require().NoError(err)

	for i := 0; i < 3; i++ {
		kind, err := gate.KindOf(s.ctx, "png1")
		s.Require().NoError(err)
		s.Equal(KindPng, kind)
	}
	s.Equal(int32(1), store.reads.Load())

	// Uploads seed the cache
	_, err = gate.Upload(s.ctx, "lvl1", []byte("LVLb0000"))
	s.Require().NoError(err)
	kind, err := gate.KindOf(s.ctx, "lvl1")
	s.Require().NoError(err)
	s.Equal(KindLevel, kind)
	s.Equal(int32(1), store.reads.Load())
}

func (s *GateSuite) TestKindOfMissing() {
	_, err := s.gate.KindOf(s.ctx, "missing")
	s.ErrorIs(err, model.ErrResourceNotFound)
}
