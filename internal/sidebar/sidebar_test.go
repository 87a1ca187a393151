package sidebar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/ledger"
)

func elements() []ir.Element {
	return []ir.Element{
		{Symbol: "Earth", Glyph: "e"},
		{Symbol: "Water", Glyph: "w"},
		{Symbol: "Fire", Glyph: "f"},
		{Symbol: "Mud", Glyph: "m", IsDiscovery: true, CreatedAt: 100},
		{Symbol: "Steam", Glyph: "s", CreatedAt: 200},
		{Symbol: "Lava", Glyph: "l", IsDiscovery: true, CreatedAt: 300},
	}
}

func symbolsOf(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Symbol)
	}
	return out
}

func TestList_ByTime(t *testing.T) {
	asc := List(elements(), nil, Options{Sort: ByTime})
	assert.Equal(t, []string{"Earth", "Water", "Fire", "Mud", "Steam", "Lava"}, symbolsOf(asc))

	desc := List(elements(), nil, Options{Sort: ByTime, Descending: true})
	assert.Equal(t, []string{"Lava", "Steam", "Mud", "Fire", "Water", "Earth"}, symbolsOf(desc))
}

func TestList_ByDiscovery(t *testing.T) {
	got := List(elements(), nil, Options{Sort: ByDiscovery})
	assert.Equal(t, []string{"Mud", "Lava", "Earth", "Water", "Fire", "Steam"}, symbolsOf(got))
}

func TestList_BySymbol(t *testing.T) {
	got := List(elements(), nil, Options{Sort: BySymbol})
	assert.Equal(t, []string{"Earth", "Fire", "Lava", "Mud", "Steam", "Water"}, symbolsOf(got))
}

func TestList_ByGlyph(t *testing.T) {
	got := List(elements(), nil, Options{Sort: ByGlyph, Descending: true})
	assert.Equal(t, []string{"Water", "Steam", "Mud", "Lava", "Fire", "Earth"}, symbolsOf(got))
}

func TestList_PinnedFirstInBothDirections(t *testing.T) {
	var pins Pins
	pins.Toggle("Steam")
	pins.Toggle("Earth")

	asc := List(elements(), &pins, Options{Sort: ByTime})
	assert.Equal(t, []string{"Earth", "Steam", "Water", "Fire", "Mud", "Lava"}, symbolsOf(asc))
	assert.True(t, asc[0].Pinned)
	assert.False(t, asc[2].Pinned)

	desc := List(elements(), &pins, Options{Sort: ByTime, Descending: true})
	assert.Equal(t, []string{"Steam", "Earth", "Lava", "Mud", "Fire", "Water"}, symbolsOf(desc))
}

func TestList_QueryFiltersAndRanksPrefixMatches(t *testing.T) {
	got := List(elements(), nil, Options{Query: "E", Sort: ByTime})
	assert.Equal(t, []string{"Earth", "Water", "Fire", "Steam"}, symbolsOf(got))

	desc := List(elements(), nil, Options{Query: "e", Sort: ByTime, Descending: true})
	assert.Equal(t, []string{"Earth", "Steam", "Fire", "Water"}, symbolsOf(desc))
}

func TestList_QueryMatchesGlyph(t *testing.T) {
	els := []ir.Element{
		{Symbol: "Volcano", Glyph: "\U0001F30B"},
		{Symbol: "Earth", Glyph: "\U0001F30D"},
	}
	got := List(els, nil, Options{Query: "\U0001F30B"})
	assert.Equal(t, []string{"Volcano"}, symbolsOf(got))
}

func TestList_NoMatches(t *testing.T) {
	assert.Empty(t, List(elements(), nil, Options{Query: "zzz"}))
}

func TestPins_Toggle(t *testing.T) {
	var pins Pins
	assert.False(t, pins.Pinned("Mud"))
	assert.True(t, pins.Toggle("Mud"))
	assert.True(t, pins.Pinned("Mud"))
	assert.False(t, pins.Toggle("Mud"))
	assert.False(t, pins.Pinned("Mud"))
}

func TestParseSortBy(t *testing.T) {
	for _, s := range []SortBy{ByTime, ByDiscovery, ByGlyph, BySymbol} {
		got, err := ParseSortBy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseSortBy("emoji")
	require.NoError(t, err)
	assert.Equal(t, ByGlyph, got)

	_, err = ParseSortBy("size")
	assert.Error(t, err)
}

func TestHoverText(t *testing.T) {
	ctx := context.Background()
	l := ledger.New(nil)
	require.NoError(t, l.Load(ctx, nil, []ir.Element{
		{Symbol: "Earth", Glyph: "e"},
		{Symbol: "Water", Glyph: "w"},
		{Symbol: "Mud", Glyph: "m"},
		{Symbol: "Swamp", Glyph: "s"},
	}))

	c := cache.New(nil)
	mud := ir.Element{Symbol: "Mud", Glyph: "m"}
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Water", "Earth"), mud))
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Dirt", "Water"), mud))
	require.NoError(t, c.StoreCombine(ctx, ir.CombineKey("Fire", "Water"), ir.Tombstone()))
	require.NoError(t, c.StoreSplit(ctx, ir.SplitKey("Swamp"), ir.Pair{{Symbol: "Water", Glyph: "w"}, mud}))

	got := HoverText("Mud", c, l)

	assert.Equal(t, "Dirt + Water (w)\nEarth (e) + Water (w)\n\nSwamp (s) = Mud (m) + Water (w)", got)
}

func TestHoverText_Unknown(t *testing.T) {
	assert.Empty(t, HoverText("Nothing", cache.New(nil), ledger.New(nil)))
}
