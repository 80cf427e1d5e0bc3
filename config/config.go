// Package config loads declarative pipeline definitions from YAML and
// builds them into chainz pipelines.
//
// A definition names the pipeline and lists its nodes in order. Each node
// refers to a factory registered in a nodes.Registry:
//
//	name: orders
//	unique_ids: true
//	nodes:
//	  - ref: require
//	    params:
//	      field: id
//	  - ref: to_int
//	    id: count-to-int
//	    params:
//	      field: count
//	  - ref: format_time
//	    params:
//	      field: time
//	      location: ${TZ:-UTC}
//	  - type: retry
//	    attempts: 3
//	    child:
//	      ref: to_float
//	      params:
//	        field: price
//
// ${VAR} references are replaced with environment variables before parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zoobzio/chainz"
	"github.com/zoobzio/chainz/nodes"
	"gopkg.in/yaml.v3"
)

// Definition describes a pipeline.
type Definition struct {
	Name      string    `json:"name" yaml:"name"`
	Nodes     []NodeDef `json:"nodes" yaml:"nodes"`
	UniqueIDs bool      `json:"unique_ids,omitempty" yaml:"unique_ids,omitempty"`
}

// Connector types that wrap other nodes.
const (
	TypeRetry    = "retry"
	TypeFallback = "fallback"
)

// NodeDef describes one node of a pipeline. It is either a reference to a
// registered node factory or a connector wrapping other definitions.
type NodeDef struct { //nolint:govet
	Params nodes.Params `json:"params,omitempty" yaml:"params,omitempty"`

	// Child for retry
	Child *NodeDef `json:"child,omitempty" yaml:"child,omitempty"`

	// Ref is the name of a registered node factory (mutually exclusive with Type)
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`

	// Type is the connector type: retry or fallback
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// ID overrides the node id; it defaults to Ref or Type.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Children for fallback, tried in order
	Children []NodeDef `json:"children,omitempty" yaml:"children,omitempty"`

	// Attempts for retry
	Attempts int `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Load reads a definition from a YAML file
func Load(filePath string) (*Definition, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a definition from YAML after environment substitution.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Save writes a definition to a YAML file
func Save(filePath string, def *Definition) error {
	data, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write pipeline file: %w", err)
	}
	return nil
}

// Validate checks the definition shape. It does not resolve references.
func (d *Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("pipeline name is required"))
	}
	for i, n := range d.Nodes {
		if err := n.validate(); err != nil {
			errs = append(errs, fmt.Errorf("node %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid pipeline definition: %w", errors.Join(errs...))
	}
	return nil
}

func (n *NodeDef) validate() error {
	switch {
	case n.Ref != "" && n.Type != "":
		return errors.New("ref and type are mutually exclusive")
	case n.Type == TypeRetry:
		if n.Child == nil {
			return errors.New("retry requires a child")
		}
		return n.Child.validate()
	case n.Type == TypeFallback:
		if len(n.Children) == 0 {
			return errors.New("fallback requires children")
		}
		for i := range n.Children {
			if err := n.Children[i].validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
		return nil
	case n.Type != "":
		return fmt.Errorf("unknown type %q", n.Type)
	case strings.TrimSpace(n.Ref) == "":
		return errors.New("ref is required")
	}
	return nil
}

// Build resolves every node through reg and returns an Uninitialized
// pipeline. The pipeline is not initialized; composition is checked by Init.
func Build(def *Definition, reg *nodes.Registry) (*chainz.Pipeline, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	chain := make([]chainz.Node, 0, len(def.Nodes))
	for i, n := range def.Nodes {
		node, err := buildNode(n, reg)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		chain = append(chain, node)
	}
	p := chainz.New(def.Name, chain...)
	if def.UniqueIDs {
		p.WithUniqueIDs()
	}
	return p, nil
}

func buildNode(def NodeDef, reg *nodes.Registry) (chainz.Node, error) {
	id := def.ID
	if id == "" {
		id = def.Type
	}
	switch def.Type {
	case TypeRetry:
		child, err := buildNode(*def.Child, reg)
		if err != nil {
			return nil, err
		}
		return chainz.Retry(id, child, def.Attempts), nil
	case TypeFallback:
		children := make([]chainz.Node, 0, len(def.Children))
		for _, c := range def.Children {
			child, err := buildNode(c, reg)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return chainz.Fallback(id, children[0], children[1:]...), nil
	default:
		return reg.Build(def.Ref, def.ID, def.Params)
	}
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// ${VAR_NAME:-fallback} uses fallback when the variable is unset or empty.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		name, fallback, hasFallback := strings.Cut(content[start+2:end], ":-")
		value := os.Getenv(name)
		if value == "" && hasFallback {
			value = fallback
		}
		b.WriteString(content[:start])
		b.WriteString(value)
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
