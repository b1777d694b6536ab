package trellis

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Factory materializes a panel: its behavior and its rendering surface.
// Returning a nil surface aborts instantiation with ErrMissingSurface.
type Factory func() (Behavior, Surface)

// Config is the immutable per-kind metadata the manager consults for every
// policy decision. Exactly one Config exists per Kind.
type Config struct {
	Kind     Kind
	Role     Role
	Load     LoadStrategy
	Priority Priority

	// AllowBack marks the panel dismissible by the back button.
	AllowBack bool

	// Persists keeps an overlay open across full-screen navigation.
	// Meaningful for RoleOverlay only.
	Persists bool

	// BaseOrder is the surface order assigned at instantiation. Overlays are
	// re-ordered on every push and ignore it after the first show.
	BaseOrder int

	// Duration is the auto-dismiss delay in seconds for RoleTransient.
	// Zero means defaultTransientDuration.
	Duration float32

	// IdleDelay is the seconds a LoadOnDemand panel sits hidden before it is
	// destroyed. Zero means defaultIdleDelay.
	IdleDelay float32

	// New materializes the panel. Registry files cannot carry factories, so
	// file-loaded configs need Registry.Bind before StartUp.
	New Factory `toml:"-"`
}

// normalized fills defaulted timing fields.
func (c Config) normalized() Config {
	if c.Role == RoleTransient && c.Duration <= 0 {
		c.Duration = defaultTransientDuration
	}
	if c.Load == LoadOnDemand && c.IdleDelay <= 0 {
		c.IdleDelay = defaultIdleDelay
	}
	return c
}

// Registry is the immutable-after-startup index from Kind to Config.
type Registry struct {
	configs map[Kind]Config
	order   []Kind // registration order, drives eager instantiation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[Kind]Config)}
}

// Register adds cfg to the registry. The first registration for a Kind wins:
// a duplicate is rejected with ErrDuplicateRegistration and the stored
// config is untouched. Panics on an empty Kind.
func (r *Registry) Register(cfg Config) error {
	if cfg.Kind == KindNone {
		panic("trellis: cannot register config with empty kind")
	}
	if _, exists := r.configs[cfg.Kind]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRegistration, cfg.Kind)
	}
	r.configs[cfg.Kind] = cfg.normalized()
	r.order = append(r.order, cfg.Kind)
	return nil
}

// Bind attaches a factory to an already registered Kind. Used after
// LoadRegistry, which can only carry metadata.
func (r *Registry) Bind(kind Kind, factory Factory) error {
	cfg, ok := r.configs[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrConfigurationMissing, kind)
	}
	cfg.New = factory
	r.configs[kind] = cfg
	return nil
}

// Lookup returns the Config for kind.
func (r *Registry) Lookup(kind Kind) (Config, bool) {
	cfg, ok := r.configs[kind]
	return cfg, ok
}

// Kinds returns every registered Kind in registration order. The returned
// slice MUST NOT be mutated by the caller.
func (r *Registry) Kinds() []Kind {
	return r.order
}

// --- Registry files ---

// registryEntry is the TOML shape of one panel's metadata.
type registryEntry struct {
	Role      string  `toml:"role"`
	Load      string  `toml:"load"`
	Priority  string  `toml:"priority"`
	AllowBack bool    `toml:"allow_back"`
	Persists  bool    `toml:"persists"`
	BaseOrder int     `toml:"base_order"`
	Duration  float32 `toml:"duration"`
	IdleDelay float32 `toml:"idle_delay"`
}

// registryFile is the top-level TOML structure:
//
//	[panels.main_menu]
//	role = "fullscreen"
//	load = "eager"
//
//	[panels.settings]
//	role = "overlay"
//	load = "on_demand"
//	allow_back = true
type registryFile struct {
	Panels map[string]registryEntry `toml:"panels"`
}

// LoadRegistry parses a TOML registry file into a Registry. Factories are
// not part of the file format; bind them afterwards with Registry.Bind.
func LoadRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if len(file.Panels) == 0 {
		return nil, fmt.Errorf("parse registry: no panels")
	}

	// TOML maps iterate in random order; keep registration deterministic.
	names := make([]string, 0, len(file.Panels))
	for name := range file.Panels {
		names = append(names, name)
	}
	sort.Strings(names)

	reg := NewRegistry()
	for _, name := range names {
		entry := file.Panels[name]
		cfg, err := entry.config(Kind(name))
		if err != nil {
			return nil, fmt.Errorf("parse registry: panel %q: %w", name, err)
		}
		if err := reg.Register(cfg); err != nil {
			return nil, fmt.Errorf("parse registry: %w", err)
		}
	}
	return reg, nil
}

func (e registryEntry) config(kind Kind) (Config, error) {
	cfg := Config{
		Kind:      kind,
		AllowBack: e.AllowBack,
		Persists:  e.Persists,
		BaseOrder: e.BaseOrder,
		Duration:  e.Duration,
		IdleDelay: e.IdleDelay,
	}
	switch e.Role {
	case "fullscreen", "":
		cfg.Role = RoleFullScreen
	case "overlay":
		cfg.Role = RoleOverlay
	case "transient":
		cfg.Role = RoleTransient
	default:
		return Config{}, fmt.Errorf("unknown role %q", e.Role)
	}
	switch e.Load {
	case "eager", "":
		cfg.Load = LoadEager
	case "on_demand":
		cfg.Load = LoadOnDemand
	default:
		return Config{}, fmt.Errorf("unknown load strategy %q", e.Load)
	}
	switch e.Priority {
	case "normal", "":
		cfg.Priority = PriorityNormal
	case "high":
		cfg.Priority = PriorityHigh
	case "cinematic":
		cfg.Priority = PriorityCinematic
	case "above_cinematic":
		cfg.Priority = PriorityAboveCinematic
	default:
		return Config{}, fmt.Errorf("unknown priority %q", e.Priority)
	}
	return cfg, nil
}
