package apps

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"gopkg.in/yaml.v3"
)

// Descriptor declares an application mounted by a directory's apps entry.
type Descriptor struct {
	Kind string `hcl:"kind" yaml:"kind" json:"kind" validate:"required"`
	// Root is a directory relative to the descriptor (webdav).
	Root string `hcl:"root,optional" yaml:"root" json:"root"`
	// Target is the upstream URL (proxy).
	Target   string `hcl:"target,optional" yaml:"target" json:"target"`
	ReadOnly bool   `hcl:"read_only,optional" yaml:"read_only" json:"read_only"`
	// Realm and Users enable HTTP basic authentication in front of the app.
	Realm string `hcl:"realm,optional" yaml:"realm" json:"realm"`
	Users []User `hcl:"user,block" yaml:"users" json:"users" validate:"dive"`
	// Options holds any other attribute, for custom kinds.
	Options map[string]string `yaml:"options" json:"options"`

	Remain hcl.Body `hcl:",remain" yaml:"-" json:"-"`
}

// User is a basic auth account with a bcrypt password hash.
type User struct {
	Name   string `hcl:"name,label" yaml:"name" json:"name" validate:"required"`
	Bcrypt string `hcl:"bcrypt" yaml:"bcrypt" json:"bcrypt" validate:"required"`
}

var validate = validator.New()

// IsDescriptor reports whether name has a descriptor file extension.
func IsDescriptor(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".hcl", ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

// ParseDescriptor decodes a descriptor, choosing the format from the
// extension of name.
func ParseDescriptor(name string, data []byte) (*Descriptor, error) {
	var d Descriptor

	switch strings.ToLower(path.Ext(name)) {
	case ".hcl":
		if err := decodeHCL(name, data, &d); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode YAML descriptor %s: %w", name, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("failed to decode JSON descriptor %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("unknown descriptor format: %s", name)
	}

	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("invalid descriptor %s: %w", name, err)
	}

	return &d, nil
}

func decodeHCL(name string, data []byte, d *Descriptor) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL descriptor %s: %s", name, diags.Error())
	}

	diags = gohcl.DecodeBody(file.Body, nil, d)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL descriptor %s: %s", name, diags.Error())
	}

	if d.Remain == nil {
		return nil
	}
	body, ok := d.Remain.(*hclsyntax.Body)
	if !ok {
		return nil
	}

	// The remain body still lists what the struct decoded.
	schema, _ := gohcl.ImpliedBodySchema(d)
	known := make(map[string]bool, len(schema.Attributes)+len(schema.Blocks))
	for _, a := range schema.Attributes {
		known[a.Name] = true
	}
	for _, b := range schema.Blocks {
		known[b.Type] = true
	}

	for _, block := range body.Blocks {
		if !known[block.Type] {
			return fmt.Errorf("failed to decode HCL descriptor %s: unexpected %q block at %s", name, block.Type, block.DefRange())
		}
	}

	for attrName, attr := range body.Attributes {
		if known[attrName] {
			continue
		}
		value, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("attribute %s in %s: %s", attrName, name, diags.Error())
		}
		s, err := ctyToString(value)
		if err != nil {
			return fmt.Errorf("attribute %s in %s: %w", attrName, name, err)
		}
		if d.Options == nil {
			d.Options = make(map[string]string)
		}
		d.Options[attrName] = s
	}
	return nil
}

func ctyToString(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", nil
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot use %s as a string option: %w", v.Type().FriendlyName(), err)
	}
	return s.AsString(), nil
}
