package systems

import (
	"log"
	"math"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/ecs"
)

// hitInvulnerability 被撞击后的无敌时间（秒）
const hitInvulnerability = 1.0

// LaneLayout 提供车道布局（由 GameplaySpawnSystem 实现）
type LaneLayout interface {
	LaneCount() int
	LanePositionX(index int) float64
}

// PickupFunc 拾取回调
type PickupFunc func(c components.CollectibleComponent)

// PlayerSystem 玩家车道移动、拾取和碰撞
//
// 判定只在玩家所在车道内进行：实体与玩家的垂直距离不超过 pickupRadius 即视为接触。
type PlayerSystem struct {
	entityManager *ecs.EntityManager
	layout        LaneLayout
	mission       *MissionTracker

	cfg      config.PlayerConfig
	centerX  float64
	playerID ecs.EntityID
	onPickup PickupFunc
}

// NewPlayerSystem 创建玩家系统
// 参数:
//   - em: EntityManager 实例
//   - layout: 车道布局
//   - mission: 任务追踪器（可为 nil）
//   - cfg: 玩家配置
//   - centerX: 中间车道的屏幕 X 坐标
func NewPlayerSystem(em *ecs.EntityManager, layout LaneLayout, mission *MissionTracker, cfg config.PlayerConfig, centerX float64) *PlayerSystem {
	return &PlayerSystem{
		entityManager: em,
		layout:        layout,
		mission:       mission,
		cfg:           cfg,
		centerX:       centerX,
	}
}

// OnPickup 设置拾取回调
func (s *PlayerSystem) OnPickup(fn PickupFunc) {
	s.onPickup = fn
}

// Spawn 创建玩家实体，startLane < 0 时放在中间车道
func (s *PlayerSystem) Spawn(startLane int) ecs.EntityID {
	count := s.layout.LaneCount()
	if startLane < 0 || startLane >= count {
		startLane = (count - 1) / 2
	}

	id := s.entityManager.CreateEntity()
	ecs.AddComponent(s.entityManager, id, &components.PlayerComponent{Lane: startLane})
	ecs.AddComponent(s.entityManager, id, &components.PositionComponent{
		X: s.centerX + s.layout.LanePositionX(startLane),
		Y: s.cfg.Y,
	})
	s.playerID = id

	log.Printf("[PlayerSystem] Player spawned in lane %d", startLane)
	return id
}

// Player 返回玩家组件
func (s *PlayerSystem) Player() (*components.PlayerComponent, bool) {
	return ecs.GetComponent[*components.PlayerComponent](s.entityManager, s.playerID)
}

// MoveLeft 向左移动一条车道
func (s *PlayerSystem) MoveLeft() { s.moveBy(-1) }

// MoveRight 向右移动一条车道
func (s *PlayerSystem) MoveRight() { s.moveBy(1) }

// MoveTo 移动到指定车道（越界时限制在有效范围内）
func (s *PlayerSystem) MoveTo(lane int) {
	player, ok := s.Player()
	if !ok {
		return
	}
	s.moveBy(lane - player.Lane)
}

func (s *PlayerSystem) moveBy(delta int) {
	player, ok := s.Player()
	if !ok {
		return
	}
	lane := player.Lane + delta
	if lane < 0 {
		lane = 0
	}
	if last := s.layout.LaneCount() - 1; lane > last {
		lane = last
	}
	player.Lane = lane
}

// Update 同步玩家位置并处理拾取和碰撞
func (s *PlayerSystem) Update(deltaTime float64) {
	player, ok := s.Player()
	if !ok {
		return
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](s.entityManager, s.playerID)
	if !ok {
		return
	}

	pos.X = s.centerX + s.layout.LanePositionX(player.Lane)
	pos.Y = s.cfg.Y

	if player.HitTimer > 0 {
		player.HitTimer -= deltaTime
	}

	s.collectPickups(player)
	s.checkObstacles(player)
}

// collectPickups 拾取玩家车道内接触到的收集物
func (s *PlayerSystem) collectPickups(player *components.PlayerComponent) {
	entities := ecs.GetEntitiesWith3[*components.CollectibleComponent, *components.LaneComponent, *components.PositionComponent](s.entityManager)
	for _, id := range entities {
		c, _ := ecs.GetComponent[*components.CollectibleComponent](s.entityManager, id)
		lane, _ := ecs.GetComponent[*components.LaneComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		if c.Collected || lane.Index != player.Lane || math.Abs(pos.Y-s.cfg.Y) > s.cfg.PickupRadius {
			continue
		}

		c.Collected = true
		switch c.Kind {
		case components.CollectibleCoin:
			player.Coins++
		case components.CollectibleFragment:
			player.Fragments++
			if s.mission != nil {
				s.mission.Collect(c.FragmentType, c.Variant)
			}
		case components.CollectibleStar:
			player.Stars++
			log.Printf("[PlayerSystem] Star %d collected", c.StarIndex)
		}

		if s.onPickup != nil {
			s.onPickup(*c)
		}
		s.entityManager.DestroyEntity(id)
	}
}

// checkObstacles 检查玩家车道内的障碍物碰撞
func (s *PlayerSystem) checkObstacles(player *components.PlayerComponent) {
	entities := ecs.GetEntitiesWith3[*components.ObstacleComponent, *components.LaneComponent, *components.PositionComponent](s.entityManager)
	for _, id := range entities {
		o, _ := ecs.GetComponent[*components.ObstacleComponent](s.entityManager, id)
		lane, _ := ecs.GetComponent[*components.LaneComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		if o.Hit || lane.Index != player.Lane || math.Abs(pos.Y-s.cfg.Y) > s.cfg.PickupRadius {
			continue
		}

		o.Hit = true
		if player.HitTimer > 0 {
			continue
		}
		player.Hits++
		player.HitTimer = hitInvulnerability
		log.Printf("[PlayerSystem] Hit by %s in lane %d (hits: %d)", o.Prototype, lane.Index, player.Hits)
	}
}
