package systems

import (
	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/ecs"
)

// ScrollSystem 使生成的实体随赛道向下移动
//
// FollowWorldSpeed 的实体每帧使用当前世界速度，其余实体使用生成时捕获的速度。
// 速度源暂时不可用时沿用上一帧的速度。
type ScrollSystem struct {
	entityManager *ecs.EntityManager
	speed         SpeedSource
	lastSpeed     float64
}

// NewScrollSystem 创建滚动系统
func NewScrollSystem(em *ecs.EntityManager, speed SpeedSource) *ScrollSystem {
	return &ScrollSystem{
		entityManager: em,
		speed:         speed,
	}
}

// Update 移动所有拥有位置和滚动组件的实体
func (s *ScrollSystem) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}
	world := s.worldSpeed()

	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.ScrollComponent](s.entityManager)
	for _, id := range entities {
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)
		scroll, _ := ecs.GetComponent[*components.ScrollComponent](s.entityManager, id)

		speed := scroll.StampedSpeed
		if scroll.FollowWorldSpeed {
			speed = world
		}
		pos.Y += speed * deltaTime
	}
}

func (s *ScrollSystem) worldSpeed() float64 {
	if s.speed == nil {
		return s.lastSpeed
	}
	if v, ok := s.speed.CurrentWorldSpeed(); ok {
		s.lastSpeed = v
	}
	return s.lastSpeed
}
