package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/cottand/typealg/frontend/types"
	"github.com/cottand/typealg/util"
	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Programs []programFormat `yaml:"programs"`
}

type programFormat struct {
	ID        types.ProgramID   `yaml:"id"`
	Name      string            `yaml:"name"`
	Inherits  []types.ProgramID `yaml:"inherits"`
	Members   []memberFormat    `yaml:"members"`
	Operators map[string]string `yaml:"operators"`
}

type memberFormat struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Final      bool   `yaml:"final"`
	Prototyped bool   `yaml:"prototyped"`
}

// LoadYAML reads the registry file at path. See ParseYAML for its format.
func LoadYAML(path string, b *types.Builder) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	r, err := ParseYAML(data, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseYAML builds a Registry from a document of the form
//
//	programs:
//	  - id: 2
//	    name: File
//	    inherits: [1]
//	    members:
//	      - name: read
//	        type: function(int:string)
//	        prototyped: true
//	    operators:
//	      call: function(string:int)
//
// Types are written in the textual type syntax and parsed with b, so they share its
// Interner if it has one. Programs may be listed in any order, as long as inheritance
// is acyclic.
func ParseYAML(data []byte, b *types.Builder) (*Registry, error) {
	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding registry: %w", err)
	}

	defs := make([]Definition, 0, len(file.Programs))
	declared := util.NewEmptySet[types.ProgramID]()
	for _, p := range file.Programs {
		def, err := p.definition(b)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		declared.Add(def.ID)
	}
	for _, def := range defs {
		for _, parent := range def.Inherits {
			if !declared.Contains(parent) {
				return nil, fmt.Errorf("program %q: inherits from unknown program %d", def.Name, parent)
			}
		}
	}

	r := New()
	// every pass defines the programs whose parents are all known
	for len(defs) > 0 {
		var pending []Definition
		for _, def := range defs {
			if !r.knowsAll(def.Inherits) {
				pending = append(pending, def)
				continue
			}
			next, err := r.With(def)
			if err != nil {
				return nil, err
			}
			r = next
		}
		if len(pending) == len(defs) {
			names := make([]string, len(pending))
			for i, def := range pending {
				names[i] = fmt.Sprintf("%q", def.Name)
			}
			return nil, fmt.Errorf("programs %s inherit from each other", strings.Join(names, ", "))
		}
		defs = pending
	}
	logger.Info("loaded registry", "programs", r.Len())
	return r, nil
}

func (r *Registry) knowsAll(ids []types.ProgramID) bool {
	for _, id := range ids {
		if _, ok := r.programs.Get(id); !ok {
			return false
		}
	}
	return true
}

func (p programFormat) definition(b *types.Builder) (Definition, error) {
	def := Definition{
		ID:        p.ID,
		Name:      p.Name,
		Inherits:  p.Inherits,
		Members:   make([]MemberDef, 0, len(p.Members)),
		Operators: make(map[types.OperatorKind]types.Type, len(p.Operators)),
	}
	seen := util.NewEmptySet[string]()
	for _, m := range p.Members {
		if !seen.Insert(m.Name) {
			return Definition{}, fmt.Errorf("program %q: member %q is declared twice", p.Name, m.Name)
		}
		t, err := b.ParseType(m.Type)
		if err != nil {
			return Definition{}, fmt.Errorf("program %q, member %q: %w", p.Name, m.Name, err)
		}
		def.Members = append(def.Members, MemberDef{Name: m.Name, Type: t, Final: m.Final, Prototyped: m.Prototyped})
	}
	for name, text := range p.Operators {
		kind, ok := types.ParseOperatorKind(name)
		if !ok {
			return Definition{}, fmt.Errorf("program %q: unknown operator %q", p.Name, name)
		}
		t, err := b.ParseType(text)
		if err != nil {
			return Definition{}, fmt.Errorf("program %q, operator %s: %w", p.Name, name, err)
		}
		def.Operators[kind] = t
	}
	return def, nil
}
