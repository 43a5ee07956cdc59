package prefs

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/lunafocus/internal/kv"
)

func TestTimerSettings(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(), zerolog.Nop())

	def := Timer{PresetID: "pomodoro", Muted: true}
	assert.Equal(t, def, s.Timer(ctx, def))

	want := Timer{PresetID: "long", AutoStart: true}
	require.NoError(t, s.SetTimer(ctx, want))
	assert.Equal(t, want, s.Timer(ctx, def))
}

func TestVisualSet(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	s := New(mem, zerolog.Nop())

	assert.Equal(t, Moon, s.VisualSet(ctx))
	require.NoError(t, s.SetVisualSet(ctx, Chicken))
	assert.Equal(t, Chicken, s.VisualSet(ctx))
	assert.Error(t, s.SetVisualSet(ctx, "dragons"))

	require.NoError(t, mem.Set(ctx, KeyVisualSet, "dragons"))
	assert.Equal(t, Moon, s.VisualSet(ctx))
}

func TestEmoji(t *testing.T) {
	assert.Equal(t, "🌑", Moon.Emoji(0))
	assert.Equal(t, "🌓", Moon.Emoji(0.5))
	assert.Equal(t, "🌕", Moon.Emoji(1))
	assert.Equal(t, "🌱", Plant.Emoji(-1))
	assert.Equal(t, "🐔", Chicken.Emoji(0.7))
	assert.Equal(t, Plant, Moon.Next())
	assert.Equal(t, Moon, Stars.Next())
}

func TestAppearance(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(), zerolog.Nop())

	require.NoError(t, s.SetAppearance(ctx, Appearance{Theme: "dark", CustomSoundURI: "/tmp/bell.wav"}))
	assert.Equal(t, Appearance{Theme: "dark", CustomSoundURI: "/tmp/bell.wav"}, s.Appearance(ctx))
}
