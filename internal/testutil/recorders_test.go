package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/oracle"
	"github.com/roach88/elemental/internal/sound"
)

func TestRecordingOracle_RecordsAndDelegates(t *testing.T) {
	table := oracle.NewTable()
	table.AddCombine("Earth", "Water", ir.Element{Symbol: "Mud", Glyph: "m"})
	rec := NewRecordingOracle(table)

	got, err := rec.Combine(context.Background(), "Earth", "Water")
	require.NoError(t, err)
	assert.Equal(t, "Mud", got.Symbol)

	_, err = rec.Split(context.Background(), "Mud")
	assert.ErrorIs(t, err, oracle.ErrUnknown)

	assert.Equal(t, []OracleCall{
		{Op: "combine", Args: []string{"Earth", "Water"}},
		{Op: "split", Args: []string{"Mud"}},
	}, rec.Calls())
	assert.Equal(t, 2, rec.Count())
}

func TestRecordingPlayer(t *testing.T) {
	var p RecordingPlayer
	assert.Equal(t, sound.Kind(0), p.Last())

	p.Play(sound.Plop)
	p.Play(sound.Discovery)

	assert.Equal(t, []sound.Kind{sound.Plop, sound.Discovery}, p.Cues())
	assert.Equal(t, sound.Discovery, p.Last())

	p.Reset()
	assert.Empty(t, p.Cues())
}
