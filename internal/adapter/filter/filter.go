package filter

import (
	"sort"

	"github-projects-api/internal/domain"
)

// RemoveForks 过滤掉 fork 的仓库，保持原有顺序
func RemoveForks(repos []domain.RawRepository) []domain.RawRepository {
	filtered := make([]domain.RawRepository, 0, len(repos))
	for _, repo := range repos {
		if repo.Fork {
			continue
		}
		filtered = append(filtered, repo)
	}
	return filtered
}

// OrderByLastUpdate 按最后更新时间倒序排列，返回新切片
// 更新时间相同的仓库保持 API 返回时的先后顺序
func OrderByLastUpdate(repos []domain.RawRepository) []domain.RawRepository {
	ordered := make([]domain.RawRepository, len(repos))
	copy(ordered, repos)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
	})
	return ordered
}
