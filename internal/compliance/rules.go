// Package compliance holds the stage-to-required-documents rules table and
// the matching logic used by the archive compliance check.
package compliance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules maps a case stage label to the ordered list of document-name
// substrings that must appear among the case's uploaded file names.
// A stage with no entry requires nothing and is vacuously compliant.
// The table is loaded once at startup and never mutated afterwards.
type Rules struct {
	stages []stageRule
}

type stageRule struct {
	Stage string   `yaml:"stage"`
	Docs  []string `yaml:"required_docs"`
}

// rulesFile is the YAML shape accepted by LoadFile.
type rulesFile struct {
	Stages []stageRule `yaml:"stages"`
}

// Default returns the built-in rules table.
func Default() *Rules {
	return &Rules{stages: []stageRule{
		{Stage: "限期拆除", Docs: []string{"责令停止违法行为决定书"}},
		{Stage: "强制拆除", Docs: []string{"强制拆除现场笔录", "强制拆除现场图片"}},
		{Stage: "结案", Docs: []string{"结案报告"}},
	}}
}

// LoadFile reads a rules table from a YAML file, replacing the defaults.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	for _, s := range f.Stages {
		if s.Stage == "" {
			return nil, fmt.Errorf("rules file %s: stage with empty label", path)
		}
	}

	return &Rules{stages: f.Stages}, nil
}

// RequiredDocs returns the required document names for a stage, in declared
// order. Returns nil for an unconfigured stage.
func (r *Rules) RequiredDocs(stage string) []string {
	for _, s := range r.stages {
		if s.Stage == stage {
			return s.Docs
		}
	}
	return nil
}

// Missing returns the required documents for stage that no uploaded file name
// satisfies, in declared order. A requirement is satisfied when any file name
// contains the required string as a case-sensitive substring. Containment
// rather than exact match is deliberate: uploaded files carry prefixes and
// extensions around the document name.
func (r *Rules) Missing(stage string, fileNames []string) []string {
	missing := []string{}
	for _, doc := range r.RequiredDocs(stage) {
		if !anyContains(fileNames, doc) {
			missing = append(missing, doc)
		}
	}
	return missing
}

func anyContains(names []string, substr string) bool {
	for _, name := range names {
		if strings.Contains(name, substr) {
			return true
		}
	}
	return false
}
