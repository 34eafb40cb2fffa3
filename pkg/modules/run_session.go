package modules

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/ecs"
	"github.com/decker502/cosmorun/pkg/entities"
	"github.com/decker502/cosmorun/pkg/game"
	"github.com/decker502/cosmorun/pkg/systems"
)

// ErrNoLevel 没有提供关卡配置
var ErrNoLevel = errors.New("run session requires a level config")

// RunSessionConfig 创建一局跑酷所需的配置
type RunSessionConfig struct {
	Spawner  *config.SpawnerConfig        // 生成配置，nil 时使用默认值
	Patterns *config.PatternCatalogConfig // 收集物图案
	Level    *config.LevelConfig          // 关卡配置（必填）
	CenterX  float64                      // 中间车道的屏幕 X 坐标

	Rand      *rand.Rand              // 随机源，nil 时使用时间种子
	Records   *game.StarRecordManager // 星星记录，可为 nil
	Listeners []systems.SpawnListener // 额外的生成事件监听器（指标、调试服务等）
}

// RunSession 一局跑酷
//
// 职责：
//   - 组装 ECS 世界和本关卡的所有系统
//   - 作为生成事件监听器，把调度器的放置决定转换为实体
//   - 按固定顺序更新各系统
//   - 结束时把成绩写入星星记录
//
// 更新顺序：道具 → 难度 → 生成调度 → 滚动 → 玩家 → 生命周期 → 清理实体
type RunSession struct {
	entityManager *ecs.EntityManager

	cfg     *config.SpawnerConfig
	level   *config.LevelConfig
	centerX float64

	boosters   *systems.BoosterSystem
	difficulty *systems.DifficultyEngine
	mission    *systems.MissionTracker
	spawner    *systems.GameplaySpawnSystem
	scroll     *systems.ScrollSystem
	player     *systems.PlayerSystem
	lifetime   *systems.LifetimeSystem

	records        *game.StarRecordManager
	starsCollected [3]bool
	finished       bool
}

// NewRunSession 创建并启动一局跑酷
//
// 返回：
//   - 关卡缺失、车道非法或生成配置不完整时返回错误
func NewRunSession(cfg RunSessionConfig) (*RunSession, error) {
	if cfg.Level == nil {
		return nil, ErrNoLevel
	}
	spawnerCfg := cfg.Spawner
	if spawnerCfg == nil {
		spawnerCfg = config.DefaultSpawnerConfig()
	}

	em := ecs.NewEntityManager()
	s := &RunSession{
		entityManager: em,
		cfg:           spawnerCfg,
		level:         cfg.Level,
		centerX:       cfg.CenterX,
		records:       cfg.Records,
	}

	s.boosters = systems.NewBoosterSystem(em, cfg.Level.Boosters)
	s.boosters.HoldSpawning(cfg.Level.IntroHold)
	s.difficulty = systems.NewDifficultyEngine(spawnerCfg.Speed, s.boosters)
	s.mission = systems.NewMissionTracker(cfg.Level.ActiveRequirements())

	listeners := make([]systems.SpawnListener, 0, len(cfg.Listeners)+1)
	listeners = append(listeners, s)
	listeners = append(listeners, cfg.Listeners...)

	s.spawner = systems.NewGameplaySpawnSystem(spawnerCfg, systems.NewPatternCatalog(cfg.Patterns), systems.SpawnDeps{
		Speed:     s.difficulty,
		Effects:   s.boosters,
		Progress:  s.mission,
		Listeners: listeners,
		Rand:      cfg.Rand,
	})

	laneCount, laneOffset := cfg.Level.ResolveLanes(spawnerCfg.Lanes)
	if err := s.spawner.Initialize(laneCount, laneOffset, s.mission.ActiveLevelFragmentRequirements()); err != nil {
		return nil, fmt.Errorf("level %s: %w", cfg.Level.ID, err)
	}
	if err := s.spawner.Start(); err != nil {
		return nil, fmt.Errorf("level %s: %w", cfg.Level.ID, err)
	}

	s.scroll = systems.NewScrollSystem(em, s.difficulty)
	s.lifetime = systems.NewLifetimeSystem(em)
	s.player = systems.NewPlayerSystem(em, s.spawner, s.mission, spawnerCfg.Player, cfg.CenterX)
	s.player.OnPickup(s.onPickup)
	s.player.Spawn(spawnerCfg.Player.StartLane)

	log.Printf("[RunSession] Level %s started: %d lanes, %d fragment requirements",
		cfg.Level.ID, laneCount, len(s.mission.ActiveLevelFragmentRequirements()))
	return s, nil
}

// OnSpawnEvent 实现 systems.SpawnListener，为放置事件创建实体
func (s *RunSession) OnSpawnEvent(ev systems.SpawnEvent) {
	if !ev.Kind.IsPlacement() {
		return
	}

	spec := entities.SpawnSpec{
		X:                s.centerX + ev.X,
		Y:                ev.Y,
		Lane:             ev.Lane,
		Speed:            ev.Speed,
		FollowWorldSpeed: ev.FollowWorldSpeed,
		SpawnTime:        ev.Time,
		DespawnY:         s.cfg.Rows.DespawnY,
		MaxLifetime:      s.cfg.Entities.MaxLifetime,
	}

	switch ev.Kind {
	case systems.EventObstacle:
		entities.NewObstacleEntity(s.entityManager, spec, ev.Prototype)
	case systems.EventCoin:
		entities.NewCollectibleEntity(s.entityManager, spec, components.CollectibleComponent{
			Kind:      components.CollectibleCoin,
			Prototype: ev.Prototype,
			PatternID: ev.PatternID,
		})
	case systems.EventFragment:
		entities.NewCollectibleEntity(s.entityManager, spec, components.CollectibleComponent{
			Kind:         components.CollectibleFragment,
			Prototype:    ev.Prototype,
			FragmentType: ev.FragmentType,
			Variant:      ev.Variant,
			PatternID:    ev.PatternID,
		})
	case systems.EventStar:
		entities.NewCollectibleEntity(s.entityManager, spec, components.CollectibleComponent{
			Kind:      components.CollectibleStar,
			Prototype: ev.Prototype,
			StarIndex: ev.StarIndex,
		})
	}
}

// onPickup 记录拾取到的星星
func (s *RunSession) onPickup(c components.CollectibleComponent) {
	if c.Kind == components.CollectibleStar && c.StarIndex >= 1 && c.StarIndex <= 3 {
		s.starsCollected[c.StarIndex-1] = true
	}
}

// Update 推进一帧
func (s *RunSession) Update(deltaTime float64) {
	if s.finished || deltaTime <= 0 {
		return
	}

	s.boosters.Update(deltaTime)
	s.difficulty.Update(deltaTime)
	s.spawner.Update(deltaTime)
	s.scroll.Update(deltaTime)
	s.player.Update(deltaTime)
	s.lifetime.Update(deltaTime)

	s.entityManager.RemoveMarkedEntities()
}

// Result 返回当前成绩
func (s *RunSession) Result() game.RunResult {
	result := game.RunResult{
		LevelID:  s.level.ID,
		Stars:    s.starsCollected,
		Distance: s.spawner.Distance(),
		Complete: s.mission.Complete(),
	}
	if p, ok := s.player.Player(); ok {
		result.Coins = p.Coins
	}
	return result
}

// Finish 结束本局：停止生成调度并保存成绩
//
// 返回：
//   - game.RunResult: 本局成绩
//   - bool: 星星记录是否有提升（没有记录管理器时为 false）
func (s *RunSession) Finish() (game.RunResult, bool) {
	result := s.Result()
	if s.finished {
		return result, false
	}
	s.finished = true
	s.spawner.Teardown()

	log.Printf("[RunSession] Level %s finished: %+v", s.level.ID, result)
	if s.records == nil {
		return result, false
	}

	improved := s.records.Record(result)
	if improved {
		if err := s.records.Save(); err != nil {
			log.Printf("[RunSession] Warning: failed to save star records: %v", err)
		}
	}
	return result, improved
}

// Finished 是否已结束
func (s *RunSession) Finished() bool { return s.finished }

// EntityManager 返回本局的 ECS 世界
func (s *RunSession) EntityManager() *ecs.EntityManager { return s.entityManager }

// Spawner 返回生成调度器
func (s *RunSession) Spawner() *systems.GameplaySpawnSystem { return s.spawner }

// Player 返回玩家系统
func (s *RunSession) Player() *systems.PlayerSystem { return s.player }

// Mission 返回任务追踪器
func (s *RunSession) Mission() *systems.MissionTracker { return s.mission }

// Boosters 返回道具系统
func (s *RunSession) Boosters() *systems.BoosterSystem { return s.boosters }

// Difficulty 返回难度引擎
func (s *RunSession) Difficulty() *systems.DifficultyEngine { return s.difficulty }

// Level 返回关卡配置
func (s *RunSession) Level() *config.LevelConfig { return s.level }

// Config 返回生成配置
func (s *RunSession) Config() *config.SpawnerConfig { return s.cfg }

// CenterX 返回中间车道的屏幕 X 坐标
func (s *RunSession) CenterX() float64 { return s.centerX }

// StarsCollected 返回本局拾取到的星星
func (s *RunSession) StarsCollected() [3]bool { return s.starsCollected }
