package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("TICK_RATE", "120")
	t.Setenv("MAX_MATCHES", "not-a-number")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("CONTROL_KEY_HASH", "")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 120, cfg.TickRate)
	assert.Equal(t, 16, cfg.MaxMatches, "bad ints fall back to the default")
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, "match_events", cfg.EventsChannel)
	assert.False(t, cfg.ControlAuthEnabled())
}

func TestDefaultPhysicsIsValid(t *testing.T) {
	require.NoError(t, DefaultPhysics().Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Physics)
	}{
		{"zero width", func(p *Physics) { p.TableWidth = 0 }},
		{"negative cushion", func(p *Physics) { p.CushionThickness = -0.01 }},
		{"no ball radius", func(p *Physics) { p.BallRadius = 0 }},
		{"no pocket radius", func(p *Physics) { p.PocketRadius = 0 }},
		{"friction of one", func(p *Physics) { p.Friction = 1 }},
		{"friction of zero", func(p *Physics) { p.Friction = 0 }},
		{"zero min velocity", func(p *Physics) { p.MinVelocity = 0 }},
		{"elastic balls", func(p *Physics) { p.BallRestitution = 1 }},
		{"cushion livelier than balls", func(p *Physics) { p.CushionRestitution = 0.95 }},
		{"no power", func(p *Physics) { p.MaxPower = 0 }},
		{"overlapping rack", func(p *Physics) { p.RackSpacing = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPhysics()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestLoadPhysicsFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("friction: 0.999\nmax_power: 0.08\n"), 0644))

	p, err := LoadPhysics(path)
	require.NoError(t, err)

	want := DefaultPhysics()
	want.Friction = 0.999
	want.MaxPower = 0.08
	assert.Equal(t, want, p)
}

func TestLoadPhysicsEnvOverride(t *testing.T) {
	t.Setenv("POOL_BALL_RESTITUTION", "0.9")

	p, err := LoadPhysics("")
	require.NoError(t, err)
	assert.Equal(t, 0.9, p.BallRestitution)
	assert.Equal(t, DefaultPhysics().Friction, p.Friction)
}

func TestLoadPhysicsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("friction: 1.5\n"), 0644))

	_, err := LoadPhysics(path)
	assert.Error(t, err)

	_, err = LoadPhysics(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSavePhysicsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	p := DefaultPhysics()
	p.TableWidth = 2.4
	p.TableHeight = 1.2
	require.NoError(t, SavePhysics(path, p))

	loaded, err := LoadPhysics(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}
