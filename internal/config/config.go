// Package config carries the handful of compilation knobs pycc exposes:
// the target Zig version tag, whether big-integer promotion is enabled,
// and whether the emitter should annotate its output with debug comments
// recording inference decisions. The knobs are loaded and layered here;
// no compilation stage acts on the first three (see the field comments).
//
// Grounded on the teacher's cmd/dwscript/cmd/root.go persistent-flag
// pattern, generalized from flags-only to flags+environment+optional
// project file, following funvibe-funxy's internal/ext.Config (a
// yaml.v3-tagged struct loaded from a project file alongside flags).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultZigTarget is the Zig version tag pycc targets when neither a
// flag, an environment variable, nor a project file names one.
const defaultZigTarget = "0.13.0"

// Config is the full set of compilation knobs for one pycc invocation.
type Config struct {
	// ZigTarget names the Zig language version tag. It is loaded and
	// layered like the other knobs, but pkg/pycc.Compile does not read it:
	// the emitter renders the same syntax whatever it is set to.
	ZigTarget string `yaml:"zig_target,omitempty"`

	// BigIntPromotion is loaded and layered, but no compilation stage
	// reads it: the Type Inferrer always promotes big integer literals to
	// unbounded ints, and turning it off produces no UnsupportedConstruct
	// error.
	BigIntPromotion bool `yaml:"big_int_promotion"`

	// DebugComments is loaded and layered, but no compilation stage reads
	// it: the emitter writes no debug comments recording inference or
	// usage decisions.
	DebugComments bool `yaml:"debug_comments"`

	// Verbose mirrors the teacher's --verbose: the compile subcommand
	// writes a line to stderr before compiling and another after the Zig
	// source is written; no per-stage progress is reported.
	Verbose bool `yaml:"-"`
}

// Default returns the configuration pycc uses when nothing overrides it.
func Default() Config {
	return Config{
		ZigTarget:       defaultZigTarget,
		BigIntPromotion: true,
	}
}

// Overrides carries flag values as seen by cobra's Flags().Changed: a nil
// field means the flag was never set, distinguishing "explicitly turned
// off" from "inherit the lower layer", which a plain bool cannot.
type Overrides struct {
	ZigTarget       *string
	BigIntPromotion *bool
	DebugComments   *bool
	Verbose         *bool
}

// Load builds a Config by layering, lowest precedence first: defaults,
// a project file at path (if it exists), environment variables, and
// finally the already-parsed flag values in overrides. An empty path
// skips the project-file layer. This ordering matches the teacher's
// root.go convention of flags always winning over anything else
// persistent.
func Load(path string, overrides Overrides) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	mergeEnv(&cfg)
	mergeFlags(&cfg, overrides)

	return cfg, nil
}

// fileConfig is the pycc.yaml shape: every field is a pointer so an
// absent key is distinguishable from an explicit false, the same
// ambiguity Overrides resolves for flags.
type fileConfig struct {
	ZigTarget       *string `yaml:"zig_target"`
	BigIntPromotion *bool   `yaml:"big_int_promotion"`
	DebugComments   *bool   `yaml:"debug_comments"`
}

// mergeFile reads a pycc.yaml-shaped project file and overlays its
// fields onto cfg. A missing file is not an error: the project-file layer
// is then simply skipped. Any other read failure, and any YAML parse
// failure, is reported.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fromFile fileConfig
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fromFile.ZigTarget != nil {
		cfg.ZigTarget = *fromFile.ZigTarget
	}
	if fromFile.BigIntPromotion != nil {
		cfg.BigIntPromotion = *fromFile.BigIntPromotion
	}
	if fromFile.DebugComments != nil {
		cfg.DebugComments = *fromFile.DebugComments
	}
	return nil
}

// mergeEnv overlays PYCC_* environment variables onto cfg.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("PYCC_ZIG_TARGET"); v != "" {
		cfg.ZigTarget = v
	}
	if v, ok := os.LookupEnv("PYCC_BIG_INT_PROMOTION"); ok {
		cfg.BigIntPromotion = isTruthy(v)
	}
	if v, ok := os.LookupEnv("PYCC_DEBUG_COMMENTS"); ok {
		cfg.DebugComments = isTruthy(v)
	}
}

// mergeFlags overlays overrides onto cfg; a nil field means the flag was
// never set, leaving the existing value alone.
func mergeFlags(cfg *Config, overrides Overrides) {
	if overrides.ZigTarget != nil {
		cfg.ZigTarget = *overrides.ZigTarget
	}
	if overrides.BigIntPromotion != nil {
		cfg.BigIntPromotion = *overrides.BigIntPromotion
	}
	if overrides.DebugComments != nil {
		cfg.DebugComments = *overrides.DebugComments
	}
	if overrides.Verbose != nil {
		cfg.Verbose = *overrides.Verbose
	}
}

func isTruthy(v string) bool {
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	default:
		return false
	}
}
