package prompt

import (
	"sync"

	"github.com/lueurxax/tolgee-ai/internal/core/prompt/template"
)

// LazyFunc computes a variable value on first use.
type LazyFunc func() (string, error)

// Variable is a node of the prompt variable tree. Leaves carry a value, eager
// or lazy; groups carry ordered props. A lazy value is evaluated at most once
// per Variable, and the result (or error) is memoized.
type Variable struct {
	Name        string
	Description string
	Props       []*Variable

	value *string
	lazy  LazyFunc

	once      sync.Once
	lazyValue string
	lazyErr   error
}

var _ template.Value = (*Variable)(nil)

// NewVariable creates a leaf with a known value.
func NewVariable(name, value string) *Variable {
	return &Variable{Name: name, value: &value}
}

// OptionalVariable creates a leaf whose value may be absent.
func OptionalVariable(name string, value *string) *Variable {
	return &Variable{Name: name, value: value}
}

// LazyVariable creates a leaf computed on first use.
func LazyVariable(name, description string, fn LazyFunc) *Variable {
	return &Variable{Name: name, Description: description, lazy: fn}
}

// Group creates an inner node.
func Group(name string, props ...*Variable) *Variable {
	return &Variable{Name: name, Props: props}
}

// Prop returns the direct child called name.
func (v *Variable) Prop(name string) *Variable {
	for _, p := range v.Props {
		if p.Name == name {
			return p
		}
	}

	return nil
}

// WithProp returns a copy of the group with the child of the same name
// replaced by (or extended with) p. Other children are shared.
func (v *Variable) WithProp(p *Variable) *Variable {
	props := make([]*Variable, 0, len(v.Props)+1)
	replaced := false

	for _, existing := range v.Props {
		if existing.Name == p.Name {
			props = append(props, p)
			replaced = true

			continue
		}

		props = append(props, existing)
	}

	if !replaced {
		props = append(props, p)
	}

	return &Variable{Name: v.Name, Description: v.Description, Props: props}
}

// Value returns the leaf value, evaluating a lazy one. Groups have no value.
func (v *Variable) Value() (string, error) {
	if len(v.Props) > 0 {
		return "", nil
	}

	if v.lazy != nil {
		v.once.Do(func() {
			v.lazyValue, v.lazyErr = v.lazy()
		})

		return v.lazyValue, v.lazyErr
	}

	if v.value == nil {
		return "", nil
	}

	return *v.value, nil
}

// Lookup implements template.Value.
func (v *Variable) Lookup(name string) template.Value {
	if p := v.Prop(name); p != nil {
		return p
	}

	return nil
}

// Items implements template.Value.
func (v *Variable) Items() []template.Item {
	items := make([]template.Item, 0, len(v.Props))
	for _, p := range v.Props {
		items = append(items, template.Item{Key: p.Name, Value: p})
	}

	return items
}

// Text implements template.Value.
func (v *Variable) Text() (string, error) {
	return v.Value()
}

// Truthy implements template.Value. Groups are truthy when they have props,
// leaves when their value is not empty.
func (v *Variable) Truthy() (bool, error) {
	if len(v.Props) > 0 {
		return true, nil
	}

	value, err := v.Value()
	if err != nil {
		return false, err
	}

	return value != "", nil
}

// VariableDTO is the introspection shape of a variable.
type VariableDTO struct {
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Value       *string       `json:"value"`
	Props       []VariableDTO `json:"props"`
}

// DTO describes the variable without evaluating lazy values.
func (v *Variable) DTO() VariableDTO {
	dto := VariableDTO{Name: v.Name, Value: v.value}

	if v.Description != "" {
		description := v.Description
		dto.Description = &description
	}

	if len(v.Props) > 0 {
		dto.Props = make([]VariableDTO, 0, len(v.Props))
		for _, p := range v.Props {
			dto.Props = append(dto.Props, p.DTO())
		}
	}

	return dto
}
