package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Physics holds the simulation tunables. Units are table units per tick.
// Defaults reproduce the reference table: 1.6 x 0.8 playing area, 0.03 balls.
type Physics struct {
	TableWidth       float64 `json:"table_width" yaml:"table_width" env:"POOL_TABLE_WIDTH" env-default:"1.6"`
	TableHeight      float64 `json:"table_height" yaml:"table_height" env:"POOL_TABLE_HEIGHT" env-default:"0.8"`
	CushionThickness float64 `json:"cushion_thickness" yaml:"cushion_thickness" env:"POOL_CUSHION_THICKNESS" env-default:"0.05"`

	BallRadius   float64 `json:"ball_radius" yaml:"ball_radius" env:"POOL_BALL_RADIUS" env-default:"0.03"`
	PocketRadius float64 `json:"pocket_radius" yaml:"pocket_radius" env:"POOL_POCKET_RADIUS" env-default:"0.08"`

	Friction           float64 `json:"friction" yaml:"friction" env:"POOL_FRICTION" env-default:"0.9992"`
	MinVelocity        float64 `json:"min_velocity" yaml:"min_velocity" env:"POOL_MIN_VELOCITY" env-default:"0.008"`
	BallRestitution    float64 `json:"ball_restitution" yaml:"ball_restitution" env:"POOL_BALL_RESTITUTION" env-default:"0.94"`
	CushionRestitution float64 `json:"cushion_restitution" yaml:"cushion_restitution" env:"POOL_CUSHION_RESTITUTION" env-default:"0.8"`

	MaxPower       float64 `json:"max_power" yaml:"max_power" env:"POOL_MAX_POWER" env-default:"0.05"`
	VelocityFactor float64 `json:"velocity_factor" yaml:"velocity_factor" env:"POOL_VELOCITY_FACTOR" env-default:"0.5"`

	BreakSpotX  float64 `json:"break_spot_x" yaml:"break_spot_x" env:"POOL_BREAK_SPOT_X" env-default:"-0.4"`
	BreakSpotY  float64 `json:"break_spot_y" yaml:"break_spot_y" env:"POOL_BREAK_SPOT_Y" env-default:"0"`
	RackApexX   float64 `json:"rack_apex_x" yaml:"rack_apex_x" env:"POOL_RACK_APEX_X" env-default:"0.4"`
	RackApexY   float64 `json:"rack_apex_y" yaml:"rack_apex_y" env:"POOL_RACK_APEX_Y" env-default:"0"`
	RackSpacing float64 `json:"rack_spacing" yaml:"rack_spacing" env:"POOL_RACK_SPACING" env-default:"2.1"`
}

// DefaultPhysics returns the built-in tunables.
func DefaultPhysics() Physics {
	return Physics{
		TableWidth:         1.6,
		TableHeight:        0.8,
		CushionThickness:   0.05,
		BallRadius:         0.03,
		PocketRadius:       0.08,
		Friction:           0.9992,
		MinVelocity:        0.008,
		BallRestitution:    0.94,
		CushionRestitution: 0.8,
		MaxPower:           0.05,
		VelocityFactor:     0.5,
		BreakSpotX:         -0.4,
		BreakSpotY:         0,
		RackApexX:          0.4,
		RackApexY:          0,
		RackSpacing:        2.1,
	}
}

// LoadPhysics reads tunables from a YAML file. An empty path reads only
// POOL_* environment overrides on top of the defaults.
func LoadPhysics(path string) (Physics, error) {
	var p Physics
	var err error
	if path == "" {
		err = cleanenv.ReadEnv(&p)
	} else {
		err = cleanenv.ReadConfig(path, &p)
	}
	if err != nil {
		return Physics{}, fmt.Errorf("unable to load physics config: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Physics{}, err
	}
	return p, nil
}

// SavePhysics writes the tunables as YAML.
func SavePhysics(path string, p Physics) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values that would break the simulation's invariants.
func (p Physics) Validate() error {
	switch {
	case p.TableWidth <= 0 || p.TableHeight <= 0:
		return errors.New("table dimensions must be positive")
	case p.CushionThickness < 0:
		return errors.New("cushion thickness must not be negative")
	case p.BallRadius <= 0:
		return errors.New("ball radius must be positive")
	case p.PocketRadius <= 0:
		return errors.New("pocket radius must be positive")
	case p.Friction <= 0 || p.Friction >= 1:
		return fmt.Errorf("friction must be in (0, 1), got %v", p.Friction)
	case p.MinVelocity <= 0:
		return errors.New("min velocity must be positive")
	case p.BallRestitution < 0 || p.BallRestitution >= 1:
		return fmt.Errorf("ball restitution must be in [0, 1), got %v", p.BallRestitution)
	case p.CushionRestitution < 0 || p.CushionRestitution >= p.BallRestitution:
		return fmt.Errorf("cushion restitution must be in [0, ball restitution), got %v", p.CushionRestitution)
	case p.MaxPower <= 0 || p.VelocityFactor <= 0:
		return errors.New("max power and velocity factor must be positive")
	case p.RackSpacing < 2:
		return errors.New("rack spacing must keep balls apart (>= 2 radii)")
	}
	return nil
}
