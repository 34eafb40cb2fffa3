package systems

import (
	"log"
	"sort"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/ecs"
)

// BoosterSystem 道具效果系统
//
// 每个生效中的道具是一个带 BoosterComponent 的实体；同类型道具再次激活时刷新剩余时间。
// 关卡时间表中的道具在到达触发时间时自动激活。
// 实现 EffectSource，供生成调度器和难度引擎查询。
type BoosterSystem struct {
	entityManager *ecs.EntityManager

	schedule []config.BoosterSchedule
	next     int
	elapsed  float64

	holdRemaining float64
}

// NewBoosterSystem 创建道具系统
// 参数:
//   - em: EntityManager 实例
//   - schedule: 关卡道具时间表（可为空）
func NewBoosterSystem(em *ecs.EntityManager, schedule []config.BoosterSchedule) *BoosterSystem {
	sorted := make([]config.BoosterSchedule, len(schedule))
	copy(sorted, schedule)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	return &BoosterSystem{
		entityManager: em,
		schedule:      sorted,
	}
}

// Activate 激活道具
// 同类型道具已生效时，剩余时间取两者较大值
func (s *BoosterSystem) Activate(boosterType string, duration float64) {
	if duration <= 0 {
		return
	}

	if booster, ok := s.find(boosterType); ok {
		if duration > booster.Remaining {
			booster.Remaining = duration
			booster.Duration = duration
		}
		log.Printf("[BoosterSystem] Refreshed %s: %.1fs remaining", boosterType, booster.Remaining)
		return
	}

	id := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, id, &components.BoosterComponent{
		Type:      boosterType,
		Duration:  duration,
		Remaining: duration,
	})
	log.Printf("[BoosterSystem] Activated %s for %.1fs", boosterType, duration)
}

// HoldSpawning 在接下来 seconds 秒内禁止生成障碍物（如关卡开场）
func (s *BoosterSystem) HoldSpawning(seconds float64) {
	if seconds > s.holdRemaining {
		s.holdRemaining = seconds
	}
}

// Update 推进道具计时器并触发时间表
func (s *BoosterSystem) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}

	if s.holdRemaining > 0 {
		s.holdRemaining -= deltaTime
	}

	entities := ecs.GetEntitiesWith1[*components.BoosterComponent](s.entityManager)
	for _, id := range entities {
		booster, _ := ecs.GetComponent[*components.BoosterComponent](s.entityManager, id)
		booster.Remaining -= deltaTime
		if booster.Remaining <= 0 {
			log.Printf("[BoosterSystem] %s expired", booster.Type)
			s.entityManager.DestroyEntity(id)
			// 立即移除，同帧的查询不会再看到过期道具
			ecs.RemoveComponent[*components.BoosterComponent](s.entityManager, id)
		}
	}

	s.elapsed += deltaTime
	for s.next < len(s.schedule) && s.schedule[s.next].At <= s.elapsed {
		b := s.schedule[s.next]
		s.Activate(b.Type, b.Duration)
		s.next++
	}
}

// find 查找生效中的同类型道具
func (s *BoosterSystem) find(boosterType string) (*components.BoosterComponent, bool) {
	for _, id := range ecs.GetEntitiesWith1[*components.BoosterComponent](s.entityManager) {
		booster, _ := ecs.GetComponent[*components.BoosterComponent](s.entityManager, id)
		if booster.Type == boosterType && booster.Remaining > 0 {
			return booster, true
		}
	}
	return nil, false
}

// Remaining 返回道具剩余时间，未生效时为 0
func (s *BoosterSystem) Remaining(boosterType string) float64 {
	if booster, ok := s.find(boosterType); ok {
		return booster.Remaining
	}
	return 0
}

// IsTimeFreezeActive 实现 EffectSource
func (s *BoosterSystem) IsTimeFreezeActive() bool {
	_, ok := s.find(config.BoosterTimeFreeze)
	return ok
}

// IsSpeedBoostActive 实现 EffectSource
func (s *BoosterSystem) IsSpeedBoostActive() bool {
	_, ok := s.find(config.BoosterSpeedBoost)
	return ok
}

// CanSpawnNow 实现 EffectSource
func (s *BoosterSystem) CanSpawnNow() bool {
	return s.holdRemaining <= 0
}
