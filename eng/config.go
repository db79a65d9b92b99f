// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package eng

// config.go reduces the NewEngine API footprint using functional options.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains configuration attributes set by the application before
// creating the engine. Everything has a working default.
type Config struct {
	interpolate bool // entity position/angle interpolation.

	// connection retry policy.
	retries      int
	retryTimeout time.Duration

	// arena and pool capacities.
	entities  int // client entity arena slots.
	statics   int // static entity list capacity.
	particles int // particle pool capacity.
	lights    int // dynamic light pool capacity.
	beams     int // beam array capacity.
	beamSegs  int // per-frame beam segment limit.
	svEnts    int // server entity arena slots.
	channels  int // mixer sound channels.

	gravity float64 // sv_gravity, units/s².
}

// configDefaults provides reasonable defaults so the engine runs even if
// no configuration attributes are set.
var configDefaults = Config{
	interpolate:  true,
	retries:      3,
	retryTimeout: 2500 * time.Millisecond,
	entities:     1024,
	statics:      128,
	particles:    2048,
	lights:       32,
	beams:        24,
	beamSegs:     64,
	svEnts:       600,
	channels:     128,
	gravity:      800,
}

// Attr defines optional engine attributes used to configure the engine.
//
//	e := eng.NewEngine(
//	   eng.Interpolate(false),
//	   eng.Retry(3, 2500*time.Millisecond),
//	   eng.Particles(4096),
//	)
type Attr func(*Config) // type for attribute overrides

// Interpolate enables or disables entity snapshot interpolation.
// For use in NewEngine().
func Interpolate(on bool) Attr {
	return func(c *Config) { c.interpolate = on }
}

// Retry sets the connection retry count and per-attempt timeout.
func Retry(attempts int, perAttempt time.Duration) Attr {
	return func(c *Config) {
		if attempts > 0 && attempts < 100 {
			c.retries = attempts
		}
		if perAttempt > 0 {
			c.retryTimeout = perAttempt
		}
	}
}

// Entities sets the client entity arena capacity.
func Entities(n int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.entities = n
		}
	}
}

// Statics sets the static entity list capacity.
func Statics(n int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.statics = n
		}
	}
}

// Particles sets the particle pool capacity.
func Particles(n int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.particles = n
		}
	}
}

// Lights sets the dynamic light pool capacity.
func Lights(n int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.lights = n
		}
	}
}

// Beams sets the beam array capacity and the per-frame tessellated
// segment limit.
func Beams(n, segLimit int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.beams = n
		}
		if segLimit > 0 {
			c.beamSegs = segLimit
		}
	}
}

// ServerEntities sets the server entity arena capacity.
func ServerEntities(n int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.svEnts = n
		}
	}
}

// Channels sets the mixer's sound channel capacity.
func Channels(n int) Attr {
	return func(c *Config) {
		if n > 0 {
			c.channels = n
		}
	}
}

// Gravity sets the world gravity used by particle physics.
func Gravity(g float64) Attr {
	return func(c *Config) { c.gravity = g }
}

// fileConfig is the yaml shape of an on-disk engine configuration.
// The yaml is string based so that it is easier to read.
type fileConfig struct {
	Interpolate    *bool   `yaml:"interpolate"`
	Retries        int     `yaml:"retries"`
	RetryTimeoutMS int     `yaml:"retry_timeout_ms"`
	Entities       int     `yaml:"entities"`
	Statics        int     `yaml:"statics"`
	Particles      int     `yaml:"particles"`
	Lights         int     `yaml:"lights"`
	Beams          int     `yaml:"beams"`
	BeamSegments   int     `yaml:"beam_segments"`
	ServerEntities int     `yaml:"server_entities"`
	Channels       int     `yaml:"channels"`
	Gravity        float64 `yaml:"gravity"`
}

// LoadConfig parses a yaml engine configuration and returns it as a
// list of attribute overrides for NewEngine. Absent fields keep their
// defaults.
func LoadConfig(data []byte) ([]Attr, error) {
	fc := fileConfig{}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("LoadConfig: yaml %w", err)
	}
	var attrs []Attr
	if fc.Interpolate != nil {
		attrs = append(attrs, Interpolate(*fc.Interpolate))
	}
	if fc.Retries > 0 || fc.RetryTimeoutMS > 0 {
		attrs = append(attrs, Retry(fc.Retries, time.Duration(fc.RetryTimeoutMS)*time.Millisecond))
	}
	if fc.Entities > 0 {
		attrs = append(attrs, Entities(fc.Entities))
	}
	if fc.Statics > 0 {
		attrs = append(attrs, Statics(fc.Statics))
	}
	if fc.Particles > 0 {
		attrs = append(attrs, Particles(fc.Particles))
	}
	if fc.Lights > 0 {
		attrs = append(attrs, Lights(fc.Lights))
	}
	if fc.Beams > 0 || fc.BeamSegments > 0 {
		attrs = append(attrs, Beams(fc.Beams, fc.BeamSegments))
	}
	if fc.ServerEntities > 0 {
		attrs = append(attrs, ServerEntities(fc.ServerEntities))
	}
	if fc.Channels > 0 {
		attrs = append(attrs, Channels(fc.Channels))
	}
	if fc.Gravity != 0 {
		attrs = append(attrs, Gravity(fc.Gravity))
	}
	return attrs, nil
}
