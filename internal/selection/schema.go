// Package selection models the customer selection wizard: a schema of
// categories, groups and options, a mutable book built from it, step
// navigation, upgrade pricing and persistence of the chosen values.
package selection

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_schema.yaml
var defaultSchemaYAML []byte

// ErrInvalidSchema wraps every schema validation failure
var ErrInvalidSchema = errors.New("invalid selection schema")

// GroupType controls how options inside a group interact
type GroupType string

const (
	GroupRadio        GroupType = "radio"
	GroupCheckbox     GroupType = "checkbox"
	GroupText         GroupType = "text"
	GroupCheckboxText GroupType = "checkbox-text"
	GroupRadioText    GroupType = "radio-text"
)

func (t GroupType) IsValid() bool {
	switch t {
	case GroupRadio, GroupCheckbox, GroupText, GroupCheckboxText, GroupRadioText:
		return true
	}
	return false
}

// Exclusive reports whether checking one option clears its siblings
func (t GroupType) Exclusive() bool {
	return t == GroupRadio || t == GroupRadioText
}

// Section splits the wizard into exterior and interior steps
type Section string

const (
	SectionExterior Section = "EXTERIOR"
	SectionInterior Section = "INTERIOR"
)

func (s Section) IsValid() bool {
	return s == SectionExterior || s == SectionInterior
}

type Option struct {
	ID        string  `yaml:"id" json:"id"`
	Label     string  `yaml:"label" json:"label"`
	Checked   bool    `yaml:"checked" json:"checked"`
	TextValue string  `yaml:"text_value,omitempty" json:"textValue,omitempty"`
	Price     float64 `yaml:"price,omitempty" json:"price,omitempty"`
	IsUpgrade bool    `yaml:"is_upgrade,omitempty" json:"isUpgrade,omitempty"`
}

type Group struct {
	ID        string    `yaml:"id" json:"id"`
	Title     string    `yaml:"title" json:"title"`
	Type      GroupType `yaml:"type" json:"type"`
	Options   []Option  `yaml:"options" json:"options"`
	TextValue string    `yaml:"text_value,omitempty" json:"textValue,omitempty"`
}

type Category struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Section  Section `yaml:"section" json:"section"`
	Groups   []Group `yaml:"groups" json:"groups"`
	Upgrades []Group `yaml:"upgrades,omitempty" json:"upgrades,omitempty"`
}

// Schema is the ordered default category tree every book starts from
type Schema struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// DefaultSchema parses the embedded schema
func DefaultSchema() (*Schema, error) {
	return ParseSchema(defaultSchemaYAML)
}

// LoadSchema reads a schema file, or the embedded default when path is empty
func LoadSchema(path string) (*Schema, error) {
	if path == "" {
		return DefaultSchema()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes and validates a YAML schema. Every option of an
// upgrades group is flagged as an upgrade.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse selection schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	for ci := range s.Categories {
		for gi := range s.Categories[ci].Upgrades {
			opts := s.Categories[ci].Upgrades[gi].Options
			for oi := range opts {
				opts[oi].IsUpgrade = true
			}
		}
	}
	return &s, nil
}

// Validate reports every structural problem at once
func (s *Schema) Validate() error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidSchema}, args...)...))
	}

	if len(s.Categories) == 0 {
		fail("no categories")
	}

	categoryIDs := make(map[string]bool)
	for _, c := range s.Categories {
		if c.ID == "" {
			fail("category %q has no id", c.Name)
			continue
		}
		if categoryIDs[c.ID] {
			fail("duplicate category id %q", c.ID)
		}
		categoryIDs[c.ID] = true

		if !c.Section.IsValid() {
			fail("category %q: unknown section %q", c.ID, c.Section)
		}

		groupIDs := make(map[string]bool)
		for _, g := range append(append([]Group{}, c.Groups...), c.Upgrades...) {
			if g.ID == "" {
				fail("category %q: group %q has no id", c.ID, g.Title)
				continue
			}
			if groupIDs[g.ID] {
				fail("category %q: duplicate group id %q", c.ID, g.ID)
			}
			groupIDs[g.ID] = true

			if !g.Type.IsValid() {
				fail("group %s/%s: unknown type %q", c.ID, g.ID, g.Type)
			}

			optionIDs := make(map[string]bool)
			checked := 0
			for _, o := range g.Options {
				if o.ID == "" {
					fail("group %s/%s: option %q has no id", c.ID, g.ID, o.Label)
					continue
				}
				if optionIDs[o.ID] {
					fail("group %s/%s: duplicate option id %q", c.ID, g.ID, o.ID)
				}
				optionIDs[o.ID] = true
				if o.Checked {
					checked++
				}
			}
			if g.Type.Exclusive() && checked > 1 {
				fail("group %s/%s: %d options checked by default in an exclusive group", c.ID, g.ID, checked)
			}
		}
	}

	return errors.Join(errs...)
}

// YAML encodes the schema back to its file form
func (s *Schema) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

func cloneCategories(src []Category) []Category {
	out := make([]Category, len(src))
	for i, c := range src {
		out[i] = c
		out[i].Groups = cloneGroups(c.Groups)
		out[i].Upgrades = cloneGroups(c.Upgrades)
	}
	return out
}

func cloneGroups(src []Group) []Group {
	if src == nil {
		return nil
	}
	out := make([]Group, len(src))
	for i, g := range src {
		out[i] = g
		out[i].Options = append([]Option(nil), g.Options...)
	}
	return out
}
