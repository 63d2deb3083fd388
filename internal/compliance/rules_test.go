package compliance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_RequiredDocs(t *testing.T) {
	rules := Default()

	assert.Equal(t, []string{"责令停止违法行为决定书"}, rules.RequiredDocs("限期拆除"))
	assert.Equal(t, []string{"强制拆除现场笔录", "强制拆除现场图片"}, rules.RequiredDocs("强制拆除"))
	assert.Nil(t, rules.RequiredDocs("未知阶段"))
}

func TestMissing_SubstringContainment(t *testing.T) {
	rules := Default()

	// Containment, not exact match: prefixes and extensions don't matter.
	missing := rules.Missing("强制拆除", []string{
		"evidence_强制拆除现场图片_01.jpg",
	})
	assert.Equal(t, []string{"强制拆除现场笔录"}, missing)

	missing = rules.Missing("强制拆除", []string{
		"2025_强制拆除现场笔录.pdf",
		"evidence_强制拆除现场图片_01.jpg",
	})
	assert.Empty(t, missing)
}

func TestMissing_UnconfiguredStage(t *testing.T) {
	rules := Default()

	missing := rules.Missing("进行中", nil)

	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestMissing_PreservesDeclaredOrder(t *testing.T) {
	rules := Default()

	missing := rules.Missing("强制拆除", nil)

	assert.Equal(t, []string{"强制拆除现场笔录", "强制拆除现场图片"}, missing)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `stages:
  - stage: "立案"
    required_docs:
      - "立案审批表"
  - stage: "强制拆除"
    required_docs:
      - "强制拆除决定书"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"立案审批表"}, rules.RequiredDocs("立案"))
	assert.Equal(t, []string{"强制拆除决定书"}, rules.RequiredDocs("强制拆除"))
	// The file replaces the defaults entirely.
	assert.Nil(t, rules.RequiredDocs("限期拆除"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/rules.yaml")
	assert.Error(t, err)
}

func TestLoadFile_EmptyStageLabel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `stages:
  - stage: ""
    required_docs: ["x"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
