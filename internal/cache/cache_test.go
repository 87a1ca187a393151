package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func el(symbol, glyph string) ir.Element {
	return ir.Element{Symbol: symbol, Glyph: glyph}
}

func TestLookupCombine_Miss(t *testing.T) {
	c := New(nil)
	_, ok := c.LookupCombine(ir.CombineKey("Earth", "Water"))
	assert.False(t, ok)
}

func TestStoreCombine_SymmetricLookup(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Earth", "Water"), el("Mud", "M")))

	got, ok := c.LookupCombine(ir.CombineKey("Water", "Earth"))
	require.True(t, ok)
	assert.Equal(t, "Mud", got.Symbol)
}

func TestStoreCombine_TombstoneSticks(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	k := ir.CombineKey("Fire", "Fire")

	require.NoError(t, c.StoreCombine(ctx, k, ir.Tombstone()))

	for i := 0; i < 3; i++ {
		got, ok := c.LookupCombine(k)
		require.True(t, ok)
		assert.True(t, got.IsTombstone())
	}
}

func TestStoreCombine_LastWriteWins(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	k := ir.CombineKey("Fire", "Water")

	require.NoError(t, c.StoreCombine(ctx, k, ir.Tombstone()))
	require.NoError(t, c.StoreCombine(ctx, k, el("Steam", "S")))

	got, _ := c.LookupCombine(k)
	assert.Equal(t, el("Steam", "S"), got)
}

func TestStoreSplit_TombstonePair(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	k := ir.SplitKey("Mud")

	require.NoError(t, c.StoreSplit(ctx, k, ir.TombstonePair()))

	got, ok := c.LookupSplit(k)
	require.True(t, ok)
	assert.True(t, got.IsTombstone())
}

func TestWriteThrough_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	c1 := New(s)
	require.NoError(t, c1.StoreCombine(ctx, ir.CombineKey("Earth", "Water"), el("Mud", "M")))
	require.NoError(t, c1.StoreCombine(ctx, ir.CombineKey("Fire", "Fire"), ir.Tombstone()))
	require.NoError(t, c1.StoreSplit(ctx, ir.SplitKey("Mud"), ir.TombstonePair()))

	c2 := New(s)
	require.NoError(t, c2.Load(ctx, s))

	got, ok := c2.LookupCombine(ir.CombineKey("Water", "Earth"))
	require.True(t, ok)
	assert.Equal(t, "Mud", got.Symbol)

	got, ok = c2.LookupCombine(ir.CombineKey("Fire", "Fire"))
	require.True(t, ok)
	assert.True(t, got.IsTombstone())

	pair, ok := c2.LookupSplit(ir.SplitKey("Mud"))
	require.True(t, ok)
	assert.True(t, pair.IsTombstone())
}

type failingPersister struct{ Persister }

func (failingPersister) PutCombo(context.Context, ir.Key, ir.Element) error {
	return errors.New("disk full")
}

func TestStoreCombine_PersistErrorKeepsMemory(t *testing.T) {
	c := New(failingPersister{})
	k := ir.CombineKey("Earth", "Fire")

	err := c.StoreCombine(context.Background(), k, el("Lava", "L"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	got, ok := c.LookupCombine(k)
	require.True(t, ok)
	assert.Equal(t, "Lava", got.Symbol)
}

func TestMergeCombine_ResidentWins(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	c := New(s)
	k := ir.CombineKey("Earth", "Water")

	require.NoError(t, c.StoreCombine(ctx, k, el("Mud", "M")))

	added, err := c.MergeCombine(ctx, k, el("Clay", "C"))
	require.NoError(t, err)
	assert.False(t, added)

	added, err = c.MergeCombine(ctx, ir.CombineKey("Fire", "Water"), el("Steam", "S"))
	require.NoError(t, err)
	assert.True(t, added)

	got, _ := c.LookupCombine(k)
	assert.Equal(t, "Mud", got.Symbol)

	rows, err := s.LoadCombos(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMergeSplit_ResidentWins(t *testing.T) {
	ctx := context.Background()
	c := New(nil)
	k := ir.SplitKey("Steam")

	require.NoError(t, c.StoreSplit(ctx, k, ir.Pair{el("Fire", "F"), el("Water", "W")}))

	added, err := c.MergeSplit(ctx, k, ir.Pair{el("A", "a"), el("B", "b")})
	require.NoError(t, err)
	assert.False(t, added)

	got, _ := c.LookupSplit(k)
	assert.Equal(t, "Fire", got[0].Symbol)
}

func TestForget_ClearsTombstone(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	c := New(s)
	k := ir.CombineKey("Fire", "Fire")

	require.NoError(t, c.StoreCombine(ctx, k, ir.Tombstone()))
	require.NoError(t, c.Forget(ctx, k))

	_, ok := c.LookupCombine(k)
	assert.False(t, ok)

	rows, err := s.LoadCombos(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestForget_InvalidKind(t *testing.T) {
	c := New(nil)
	assert.Error(t, c.Forget(context.Background(), ir.Key{}))
}

func TestCombos_Ordered(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Water", "Wind"), el("Rain", "R")))
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Earth", "Water"), el("Mud", "M")))

	rows := c.Combos()
	require.Len(t, rows, 2)
	assert.Equal(t, ir.CombineKey("Earth", "Water"), rows[0].Key)
	assert.Equal(t, ir.CombineKey("Water", "Wind"), rows[1].Key)

	combos, splits := c.Len()
	assert.Equal(t, 2, combos)
	assert.Equal(t, 0, splits)
}

func TestRecipes(t *testing.T) {
	ctx := context.Background()
	c := New(nil)

	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Fire", "Water"), el("Steam", "S")))
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Air", "Water"), el("Steam", "S")))
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Steam", "Steam"), ir.Tombstone()))
	require.NoError(t, c.StoreSplit(ctx, ir.SplitKey("Cloud"), ir.Pair{el("Steam", "S"), el("Air", "A")}))
	require.NoError(t, c.StoreSplit(ctx, ir.SplitKey("Steam"), ir.Pair{el("Fire", "F"), el("Water", "W")}))

	r := c.Recipes("Steam")
	assert.Equal(t, []ir.Key{ir.CombineKey("Air", "Water"), ir.CombineKey("Fire", "Water")}, r.MadeFrom)
	assert.Equal(t, []ir.Key{ir.SplitKey("Cloud")}, r.SplitFrom)
	require.NotNil(t, r.SplitsInto)
	assert.Equal(t, "Fire", r.SplitsInto[0].Symbol)
	assert.False(t, r.Empty())

	assert.True(t, c.Recipes("Nothing").Empty())
}
