package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github-projects-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []domain.Project {
	return []domain.Project{
		{
			Name:      "beta",
			Language:  "go",
			UpdatedAt: "02/03/2024",
			Readme:    "# beta",
			Tags:      []string{"go", "cli"},
			SimilarTo: []domain.SimilarityEdge{{Name: "alpha", Reason: "go"}},
		},
		{
			Name:      "alpha",
			Language:  "go",
			UpdatedAt: "01/03/2024",
			Readme:    domain.ReadmeUnavailable,
			Tags:      []string{},
			SimilarTo: []domain.SimilarityEdge{},
		},
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, sample())
	out := buf.String()

	assert.Contains(t, out, "#1 beta [go] 更新于 02/03/2024")
	assert.Contains(t, out, "标签: go, cli")
	assert.Contains(t, out, "相似: alpha (go)")
	assert.Contains(t, out, "#2 alpha")
	assert.Contains(t, out, "README: 无")
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, nil)
	assert.Contains(t, buf.String(), "没有获取到任何项目")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, sample()))

	var got []domain.Project
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
}

func TestNewDebugCmd_Flags(t *testing.T) {
	cmd := newDebugCmd()
	assert.NotNil(t, cmd.Flags().Lookup("json"))
	assert.NotNil(t, cmd.Flags().Lookup("config"))
}
