package analyzer

import (
	"testing"

	"github-projects-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project(name, language string, tags ...string) domain.Project {
	if tags == nil {
		tags = []string{}
	}
	return domain.Project{
		Name:      name,
		URL:       "https://github.com/euaaron/" + name,
		Language:  language,
		Tags:      tags,
		SimilarTo: []domain.SimilarityEdge{},
	}
}

func edgeTo(t *testing.T, p domain.Project, target string) (domain.SimilarityEdge, bool) {
	t.Helper()
	for _, e := range p.SimilarTo {
		if e.Name == target {
			return e, true
		}
	}
	return domain.SimilarityEdge{}, false
}

func TestSimilarityAnalyzer_Annotate(t *testing.T) {
	tests := []struct {
		name     string
		projects []domain.Project
		from     string
		to       string
		wantEdge bool
		reason   string
	}{
		{
			name: "共享标签",
			projects: []domain.Project{
				project("a", "Go", "go", "cli"),
				project("b", "Python", "go", "web"),
			},
			from: "a", to: "b", wantEdge: true, reason: "go",
		},
		{
			name: "取 project 标签顺序中第一个共享标签",
			projects: []domain.Project{
				project("a", "Go", "web", "api", "go"),
				project("b", "Go", "go", "api", "web"),
			},
			from: "a", to: "b", wantEdge: true, reason: "web",
		},
		{
			name: "反方向理由可能不同",
			projects: []domain.Project{
				project("a", "Go", "web", "api", "go"),
				project("b", "Go", "go", "api", "web"),
			},
			from: "b", to: "a", wantEdge: true, reason: "go",
		},
		{
			name: "都没有标签但语言相同",
			projects: []domain.Project{
				project("a", "Rust"),
				project("b", "Rust"),
			},
			from: "a", to: "b", wantEdge: true, reason: "Rust",
		},
		{
			name: "标签无交集时退回语言",
			projects: []domain.Project{
				project("a", "Go", "cli"),
				project("b", "Go", "web"),
			},
			from: "a", to: "b", wantEdge: true, reason: "Go",
		},
		{
			name: "语言大小写敏感",
			projects: []domain.Project{
				project("a", "go"),
				project("b", "Go"),
			},
			from: "a", to: "b", wantEdge: false,
		},
		{
			name: "对方标签等于本项目语言",
			projects: []domain.Project{
				project("a", domain.NormalizeLanguage("css")),
				project("b", "HTML", "css3"),
			},
			from: "a", to: "b", wantEdge: true, reason: "css3",
		},
		{
			name: "本项目标签等于对方语言",
			projects: []domain.Project{
				project("a", "HTML", "css3"),
				project("b", domain.NormalizeLanguage("CSS")),
			},
			from: "a", to: "b", wantEdge: true, reason: "css3",
		},
		{
			name: "完全无关",
			projects: []domain.Project{
				project("a", "Go", "cli"),
				project("b", "Python", "ml"),
			},
			from: "a", to: "b", wantEdge: false,
		},
		{
			name: "都没有语言也没有标签",
			projects: []domain.Project{
				project("a", ""),
				project("b", ""),
			},
			from: "a", to: "b", wantEdge: false,
		},
	}

	analyzer := NewSimilarityAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotated := analyzer.Annotate(tt.projects)

			var from domain.Project
			for _, p := range annotated {
				if p.Name == tt.from {
					from = p
				}
			}

			edge, ok := edgeTo(t, from, tt.to)
			assert.Equal(t, tt.wantEdge, ok)
			if tt.wantEdge {
				assert.Equal(t, tt.reason, edge.Reason)
				assert.Equal(t, "https://github.com/euaaron/"+tt.to, edge.URL)
			}
		})
	}
}

func TestSimilarityAnalyzer_AlphaBeta(t *testing.T) {
	projects := []domain.Project{
		project("alpha", "go"),
		project("beta", "go", "go"),
	}

	annotated := NewSimilarityAnalyzer().Annotate(projects)

	alphaToBeta, ok := edgeTo(t, annotated[0], "beta")
	require.True(t, ok)
	assert.Equal(t, "go", alphaToBeta.Reason)

	betaToAlpha, ok := edgeTo(t, annotated[1], "alpha")
	require.True(t, ok)
	assert.Equal(t, "go", betaToAlpha.Reason)
}

func TestSimilarityAnalyzer_PreservesOrderAndSkipsSelf(t *testing.T) {
	projects := []domain.Project{
		project("c", "Go"),
		project("a", "Go"),
		project("b", "Go"),
		project("d", "Python"),
	}

	annotated := NewSimilarityAnalyzer().Annotate(projects)

	require.Len(t, annotated, 4)
	assert.Equal(t, []string{"c", "a", "b", "d"}, []string{annotated[0].Name, annotated[1].Name, annotated[2].Name, annotated[3].Name})

	// 边按集合顺序排列，不包含自己
	var targets []string
	for _, e := range annotated[1].SimilarTo {
		targets = append(targets, e.Name)
	}
	assert.Equal(t, []string{"c", "b"}, targets)

	assert.NotNil(t, annotated[3].SimilarTo)
	assert.Empty(t, annotated[3].SimilarTo)
}

func TestSimilarityAnalyzer_DoesNotMutateInput(t *testing.T) {
	projects := []domain.Project{
		project("a", "Go"),
		project("b", "Go"),
	}

	_ = NewSimilarityAnalyzer().Annotate(projects)

	assert.Empty(t, projects[0].SimilarTo)
	assert.Empty(t, projects[1].SimilarTo)
}

func TestSimilarityAnalyzer_Empty(t *testing.T) {
	assert.Empty(t, NewSimilarityAnalyzer().Annotate(nil))
}
