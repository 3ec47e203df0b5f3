package sessions

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/lysyi3m/ims-sessions/app/ims"
	"gopkg.in/yaml.v3"
)

// Accessor reads one candidate value for a logical field from a feed node.
type Accessor func(n *ims.Node) string

func Attr(name string) Accessor {
	return func(n *ims.Node) string {
		return n.Attr(name)
	}
}

func Child(name string) Accessor {
	return func(n *ims.Node) string {
		return n.ChildText(name)
	}
}

// Field is an ordered list of accessors; the first non-empty value wins.
type Field []Accessor

func (f Field) Resolve(n *ims.Node) string {
	for _, accessor := range f {
		if value := strings.TrimSpace(accessor(n)); value != "" {
			return value
		}
	}
	return ""
}

type Schema struct {
	Nodes     []string
	Reference Field
	ActionID  Field
	Start     Field
	End       Field
	Location  Field
	Status    Field
}

func (s *Schema) IsSessionNode(name string) bool {
	return slices.Contains(s.Nodes, name)
}

// SchemaConfig is the YAML form of a Schema. Accessors prefixed with "@"
// read attributes, anything else reads the text of a child element.
type SchemaConfig struct {
	Nodes  []string            `yaml:"nodes"`
	Fields map[string][]string `yaml:"fields"`
}

var defaultSchemaConfig = SchemaConfig{
	Nodes: []string{"Accao", "Acao", "Action", "Sessao"},
	Fields: map[string][]string{
		"reference": {"@idCaracterizacao", "@CaracterizacaoId", "@REF", "@Ref"},
		"action_id": {"@idAccao", "@Id", "@ID", "@AccaoId"},
		"start":     {"DataInicio", "Inicio", "DataInicioPrevista", "Start", "Data_Inicio"},
		"end":       {"DataFim", "Fim", "DataFimPrevista", "End", "Data_Fim"},
		"location":  {"Local", "Localidade", "Sede", "Location"},
		"status":    {"Estado", "Situacao", "Status"},
	},
}

func DefaultSchema() *Schema {
	schema, err := compileSchema(defaultSchemaConfig)
	if err != nil {
		panic(fmt.Sprintf("default schema is invalid: %v", err))
	}
	return schema
}

// LoadSchema reads a YAML schema file. Node synonyms and fields it names
// replace the defaults; fields it omits keep them.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var override SchemaConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config := SchemaConfig{
		Nodes:  defaultSchemaConfig.Nodes,
		Fields: make(map[string][]string, len(defaultSchemaConfig.Fields)),
	}
	for name, accessors := range defaultSchemaConfig.Fields {
		config.Fields[name] = accessors
	}

	if len(override.Nodes) > 0 {
		config.Nodes = override.Nodes
	}
	for name, accessors := range override.Fields {
		if _, ok := config.Fields[name]; !ok {
			return nil, fmt.Errorf("invalid schema %s: unknown field %s", path, name)
		}
		config.Fields[name] = accessors
	}

	schema, err := compileSchema(config)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}

	return schema, nil
}

func compileSchema(config SchemaConfig) (*Schema, error) {
	if len(config.Nodes) == 0 {
		return nil, fmt.Errorf("at least one node name is required")
	}
	for i, name := range config.Nodes {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("empty node name at index %d", i)
		}
	}

	schema := &Schema{Nodes: config.Nodes}
	targets := map[string]*Field{
		"reference": &schema.Reference,
		"action_id": &schema.ActionID,
		"start":     &schema.Start,
		"end":       &schema.End,
		"location":  &schema.Location,
		"status":    &schema.Status,
	}

	for name, target := range targets {
		field, err := compileField(config.Fields[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		*target = field
	}

	return schema, nil
}

func compileField(accessors []string) (Field, error) {
	if len(accessors) == 0 {
		return nil, fmt.Errorf("at least one accessor is required")
	}

	field := make(Field, 0, len(accessors))
	for i, accessor := range accessors {
		accessor = strings.TrimSpace(accessor)
		name := strings.TrimPrefix(accessor, "@")
		if name == "" {
			return nil, fmt.Errorf("empty accessor at index %d", i)
		}

		if strings.HasPrefix(accessor, "@") {
			field = append(field, Attr(name))
		} else {
			field = append(field, Child(name))
		}
	}

	return field, nil
}
