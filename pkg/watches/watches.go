package watches

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samvad-hq/catalog-client/internal/registryfile"
	"github.com/samvad-hq/catalog-client/pkg/catalog"
)

// Supported watch kinds.
const (
	KindNodes        = "nodes"
	KindServices     = "services"
	KindServiceNodes = "service_nodes"
)

// Target is a catalog listing watched with blocking queries.
type Target struct {
	ID         string `json:"id" yaml:"id"`
	Kind       string `json:"kind" yaml:"kind"`
	Service    string `json:"service" yaml:"service"`
	Datacenter string `json:"dc" yaml:"dc"`
	Enabled    *bool  `json:"enabled" yaml:"enabled"`
}

// Defaults fills request fields a target leaves blank.
type Defaults struct {
	Datacenter string
	Token      string
}

// Request builds the catalog request for the target at the given index.
func (t Target) Request(d Defaults, index uint64) (catalog.Request, error) {
	meta := catalog.Meta{
		APIVersion: catalog.DefaultAPIVersion,
		Section:    catalog.DefaultSection,
		Datacenter: t.Datacenter,
		Index:      index,
		Token:      d.Token,
	}
	if meta.Datacenter == "" {
		meta.Datacenter = d.Datacenter
	}

	switch t.Kind {
	case KindNodes:
		return catalog.ListNodes{Meta: meta}, nil
	case KindServices:
		return catalog.ListServices{Meta: meta}, nil
	case KindServiceNodes:
		return catalog.ListServiceNodes{Meta: meta, ServiceName: t.Service}, nil
	default:
		return nil, fmt.Errorf("watch %q has unsupported kind %q", t.ID, t.Kind)
	}
}

// EnabledValue returns enabled flag defaulting to true.
func (t Target) EnabledValue() bool {
	if t.Enabled == nil {
		return true
	}
	return *t.Enabled
}

type configFile struct {
	Watches []Target `json:"watches" yaml:"watches"`
}

// Registry holds the watch targets loaded from a config file. It is
// read-only after construction.
type Registry struct {
	targets []Target
}

// LoadRegistry loads watch targets from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var cfg configFile
	if err := registryfile.Load(path, "watches", &cfg); err != nil {
		return nil, err
	}
	return NewRegistry(cfg.Watches)
}

// NewRegistry validates targets, rejecting duplicate ids.
func NewRegistry(targets []Target) (*Registry, error) {
	if len(targets) == 0 {
		return nil, errors.New("watches file contains no watches entries")
	}

	reg := &Registry{
		targets: make([]Target, 0, len(targets)),
	}
	seen := make(map[string]struct{}, len(targets))
	for i, raw := range targets {
		t := raw.sanitize()
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("watches[%d]: %w", i, err)
		}
		if _, exists := seen[t.ID]; exists {
			return nil, fmt.Errorf("duplicate watch id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		reg.targets = append(reg.targets, t)
	}
	return reg, nil
}

func (t Target) sanitize() Target {
	t.ID = strings.TrimSpace(t.ID)
	t.Kind = strings.ToLower(strings.TrimSpace(t.Kind))
	t.Service = strings.TrimSpace(t.Service)
	t.Datacenter = strings.TrimSpace(t.Datacenter)
	if t.Enabled == nil {
		def := true
		t.Enabled = &def
	}
	return t
}

func (t Target) validate() error {
	if t.ID == "" {
		return errors.New("id is required")
	}
	switch t.Kind {
	case KindNodes, KindServices:
	case KindServiceNodes:
		if t.Service == "" {
			return fmt.Errorf("service is required for watch %q", t.ID)
		}
	case "":
		return fmt.Errorf("kind is required for watch %q", t.ID)
	default:
		return fmt.Errorf("unsupported kind %q for watch %q", t.Kind, t.ID)
	}
	return nil
}

// All returns all configured targets in file order.
func (r *Registry) All() []Target {
	if r == nil {
		return nil
	}
	return slices.Clone(r.targets)
}

// Enabled returns targets that are enabled.
func (r *Registry) Enabled() []Target {
	return slices.DeleteFunc(r.All(), func(t Target) bool { return !t.EnabledValue() })
}
