package entities

import (
	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/ecs"
)

// SpawnSpec 生成实体的公共参数
type SpawnSpec struct {
	X                float64 // 屏幕 X 坐标
	Y                float64 // 屏幕 Y 坐标（生成行或图案点所在行）
	Lane             int     // 车道索引
	Speed            float64 // 生成时的世界速度
	FollowWorldSpeed bool    // 是否持续跟随世界速度
	SpawnTime        float64 // 生成时间（游戏时间，秒）
	DespawnY         float64 // 越过此行后销毁
	MaxLifetime      float64 // 最长存活时间，0 表示不限制
}

// NewObstacleEntity 创建一个障碍物（行星）实体
// 参数:
//   - manager: EntityManager 实例
//   - spec: 位置、车道和滚动参数
//   - prototype: 原型名称，如 "planet_rock"
//
// 返回: 创建的实体ID
func NewObstacleEntity(manager *ecs.EntityManager, spec SpawnSpec, prototype string) ecs.EntityID {
	id := newScrollingEntity(manager, spec)

	manager.AddComponent(id, &components.ObstacleComponent{
		Prototype: prototype,
		SpawnTime: spec.SpawnTime,
	})

	return id
}

// NewCollectibleEntity 创建一个收集物实体（金币、碎片或星星）
// 参数:
//   - manager: EntityManager 实例
//   - spec: 位置、车道和滚动参数
//   - collectible: 收集物数据，SpawnTime 以 spec 为准
//
// 返回: 创建的实体ID
func NewCollectibleEntity(manager *ecs.EntityManager, spec SpawnSpec, collectible components.CollectibleComponent) ecs.EntityID {
	id := newScrollingEntity(manager, spec)

	collectible.SpawnTime = spec.SpawnTime
	collectible.Collected = false
	manager.AddComponent(id, &collectible)

	return id
}

// newScrollingEntity 创建带位置、车道、滚动和生命周期组件的实体
func newScrollingEntity(manager *ecs.EntityManager, spec SpawnSpec) ecs.EntityID {
	id := manager.CreateEntity()

	manager.AddComponent(id, &components.PositionComponent{
		X: spec.X,
		Y: spec.Y,
	})
	manager.AddComponent(id, &components.LaneComponent{Index: spec.Lane})
	manager.AddComponent(id, &components.ScrollComponent{
		StampedSpeed:     spec.Speed,
		FollowWorldSpeed: spec.FollowWorldSpeed,
	})
	manager.AddComponent(id, &components.LifetimeComponent{
		MaxLifetime:   spec.MaxLifetime,
		DespawnBelowY: spec.DespawnY,
	})

	return id
}
