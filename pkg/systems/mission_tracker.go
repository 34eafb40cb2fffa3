package systems

import (
	"log"

	"github.com/decker502/cosmorun/pkg/config"
)

// MissionTracker 任务碎片收集进度
//
// 每条需求的收集数量在达到需求数量后不再增加。
// 进度 = Σ min(collected, count) / Σ count；没有需求的关卡进度恒为 1。
// 实现 ProgressSource 和 RequirementSource。
type MissionTracker struct {
	requirements []config.FragmentRequirement
	collected    map[string]int
	total        int
}

// RequirementProgress 单条需求的收集进度
type RequirementProgress struct {
	Type      string `json:"type"`
	Variant   string `json:"variant"`
	Required  int    `json:"required"`
	Collected int    `json:"collected"`
}

// NewMissionTracker 创建任务追踪器，Count <= 0 的需求被忽略
func NewMissionTracker(requirements []config.FragmentRequirement) *MissionTracker {
	m := &MissionTracker{collected: make(map[string]int)}
	for _, r := range requirements {
		if r.Count <= 0 {
			continue
		}
		m.requirements = append(m.requirements, r)
		m.total += r.Count
	}
	return m
}

// Collect 记录拾取了一个碎片
// 返回该碎片是否计入任务（不属于需求或已满足时返回 false）
func (m *MissionTracker) Collect(fragmentType, variant string) bool {
	for _, r := range m.requirements {
		if r.Type != fragmentType || r.Variant != variant {
			continue
		}
		key := r.Key()
		if m.collected[key] >= r.Count {
			return false
		}
		m.collected[key]++
		log.Printf("[MissionTracker] Collected %s (%d/%d), progress %.2f", key, m.collected[key], r.Count, m.progress())
		return true
	}
	return false
}

// FragmentCollectionProgress 实现 ProgressSource
func (m *MissionTracker) FragmentCollectionProgress() (float64, bool) {
	return m.progress(), true
}

func (m *MissionTracker) progress() float64 {
	if m.total == 0 {
		return 1
	}
	done := 0
	for _, r := range m.requirements {
		done += m.collected[r.Key()]
	}
	return float64(done) / float64(m.total)
}

// ActiveLevelFragmentRequirements 实现 RequirementSource
func (m *MissionTracker) ActiveLevelFragmentRequirements() []config.FragmentRequirement {
	out := make([]config.FragmentRequirement, len(m.requirements))
	copy(out, m.requirements)
	return out
}

// Complete 所有需求是否都已满足
func (m *MissionTracker) Complete() bool {
	return m.progress() >= 1
}

// Snapshot 返回每条需求的进度
func (m *MissionTracker) Snapshot() []RequirementProgress {
	out := make([]RequirementProgress, len(m.requirements))
	for i, r := range m.requirements {
		out[i] = RequirementProgress{
			Type:      r.Type,
			Variant:   r.Variant,
			Required:  r.Count,
			Collected: m.collected[r.Key()],
		}
	}
	return out
}
