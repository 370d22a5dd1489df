// Package config loads editor tuning from YAML, with an embedded default
// overridable by a file on disk, and supports live reload through a
// filesystem watcher.
package config

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mtmitchel/slate/engine"
)

//go:embed slate.yaml
var defaultFS embed.FS

// DefaultPath is the on-disk override location.
const DefaultPath = "slate.yaml"

type Config struct {
	Canvas struct {
		MinZoom float64 `yaml:"min_zoom"`
		MaxZoom float64 `yaml:"max_zoom"`
	} `yaml:"canvas"`
	Gestures struct {
		MinShapeSize       float64 `yaml:"min_shape_size"`
		MinSectionSize     float64 `yaml:"min_section_size"`
		MinConnectorLength float64 `yaml:"min_connector_length"`
		MinPenPoints       int     `yaml:"min_pen_points"`
	} `yaml:"gestures"`
	Transform struct {
		MinBoxDim       float64 `yaml:"min_box_dim"`
		MinCircleRadius float64 `yaml:"min_circle_radius"`
		MinStarOuter    float64 `yaml:"min_star_outer"`
		MinStarInner    float64 `yaml:"min_star_inner"`
	} `yaml:"transform"`
	Defaults struct {
		StickyWidth  float64 `yaml:"sticky_width"`
		StickyHeight float64 `yaml:"sticky_height"`
		TextWidth    float64 `yaml:"text_width"`
		TextHeight   float64 `yaml:"text_height"`
		TableRows    int     `yaml:"table_rows"`
		TableCols    int     `yaml:"table_cols"`
	} `yaml:"defaults"`
	Debug bool `yaml:"debug"`
}

// Load reads the config at path, falling back to the embedded default
// when no override exists on disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		data, err = defaultFS.ReadFile("slate.yaml")
		if err != nil {
			return nil, fmt.Errorf("config: read embedded default: %w", err)
		}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Canvas.MinZoom <= 0 || c.Canvas.MaxZoom < c.Canvas.MinZoom {
		return fmt.Errorf("config: zoom bounds [%g, %g] invalid", c.Canvas.MinZoom, c.Canvas.MaxZoom)
	}
	if c.Gestures.MinShapeSize < 0 || c.Gestures.MinSectionSize < 0 || c.Gestures.MinConnectorLength < 0 {
		return fmt.Errorf("config: gesture thresholds must be non-negative")
	}
	if c.Defaults.TableRows < 1 || c.Defaults.TableCols < 1 {
		return fmt.Errorf("config: table defaults %dx%d invalid", c.Defaults.TableRows, c.Defaults.TableCols)
	}
	return nil
}

// Options maps the config onto the dispatch engine's tuning knobs.
func (c *Config) Options() engine.Options {
	o := engine.DefaultOptions()
	o.MinShapeSize = c.Gestures.MinShapeSize
	o.MinSectionSize = c.Gestures.MinSectionSize
	o.MinConnectorLength = c.Gestures.MinConnectorLength
	o.MinPenPoints = c.Gestures.MinPenPoints
	o.MinBoxDim = c.Transform.MinBoxDim
	o.MinCircleRadius = c.Transform.MinCircleRadius
	o.MinStarOuter = c.Transform.MinStarOuter
	o.MinStarInner = c.Transform.MinStarInner
	o.DefaultStickyWidth = c.Defaults.StickyWidth
	o.DefaultStickyHeight = c.Defaults.StickyHeight
	o.DefaultTextWidth = c.Defaults.TextWidth
	o.DefaultTextHeight = c.Defaults.TextHeight
	o.DefaultTableRows = c.Defaults.TableRows
	o.DefaultTableCols = c.Defaults.TableCols
	o.Debug = c.Debug
	return o
}

// ApplyCamera pushes the zoom bounds onto a camera, clamping its current
// zoom into the new range.
func (c *Config) ApplyCamera(cam *engine.Camera) {
	cam.MinZoom = c.Canvas.MinZoom
	cam.MaxZoom = c.Canvas.MaxZoom
	if cam.Zoom < cam.MinZoom {
		cam.Zoom = cam.MinZoom
	}
	if cam.Zoom > cam.MaxZoom {
		cam.Zoom = cam.MaxZoom
	}
}
