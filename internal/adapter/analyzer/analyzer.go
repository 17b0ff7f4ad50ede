package analyzer

import (
	"github-projects-api/internal/domain"
)

// SimilarityAnalyzer 实现了 port.SimilarityEngine 接口
//
// 每一对 (project, other) 单独判断，方向性的：A->B 和 B->A 可能理由不同。
// 判断顺序，命中第一条即停止：
//  1. 双方都有标签且有交集：理由是 project 标签中第一个出现在 other 里的
//  2. 语言完全相同：理由是语言
//  3. 任一方有标签：other 的标签等于 project 的语言，或 project 的标签等于 other 的语言
//  4. 否则没有关系
type SimilarityAnalyzer struct{}

// NewSimilarityAnalyzer 创建相似度分析器
func NewSimilarityAnalyzer() *SimilarityAnalyzer {
	return &SimilarityAnalyzer{}
}

// Annotate 为每个项目填充 SimilarTo，返回新切片，不改变项目顺序
func (a *SimilarityAnalyzer) Annotate(projects []domain.Project) []domain.Project {
	annotated := make([]domain.Project, len(projects))
	for i := range projects {
		p := projects[i]
		p.SimilarTo = FindSimilar(&projects[i], projects)
		annotated[i] = p
	}
	return annotated
}

// FindSimilar 按集合顺序遍历其他项目，收集相似关系
func FindSimilar(project *domain.Project, all []domain.Project) []domain.SimilarityEdge {
	edges := []domain.SimilarityEdge{}
	for i := range all {
		other := &all[i]
		if other.Name == project.Name {
			continue
		}
		if reason, ok := matchReason(project, other); ok {
			edges = append(edges, domain.SimilarityEdge{
				Name:   other.Name,
				Reason: reason,
				URL:    other.URL,
			})
		}
	}
	return edges
}

func matchReason(project, other *domain.Project) (string, bool) {
	if len(project.Tags) > 0 && len(other.Tags) > 0 {
		if tag, ok := firstSharedTag(project.Tags, other); ok {
			return tag, true
		}
	}

	// 没有语言的仓库不因为"都没有语言"而互相关联
	if project.Language != "" && other.Language == project.Language {
		return project.Language, true
	}

	if len(project.Tags) > 0 || len(other.Tags) > 0 {
		if other.HasTag(project.Language) {
			return project.Language, true
		}
		if project.HasTag(other.Language) {
			return other.Language, true
		}
	}
	return "", false
}

// firstSharedTag 按 tags 的顺序找第一个 other 也有的标签
func firstSharedTag(tags []string, other *domain.Project) (string, bool) {
	for _, tag := range tags {
		if other.HasTag(tag) {
			return tag, true
		}
	}
	return "", false
}
