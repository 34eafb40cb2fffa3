package systems

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/tasks"
)

var (
	// ErrNotInitialized Start 之前没有调用 Initialize
	ErrNotInitialized = errors.New("spawn system not initialized")
	// ErrInvalidLanes 车道数量或间距非法
	ErrInvalidLanes = errors.New("invalid lane layout")
	// ErrNoPatterns 图案目录为空或总权重为 0
	ErrNoPatterns = errors.New("no collectible patterns configured")
	// ErrNoObstaclePrototypes 没有障碍物原型
	ErrNoObstaclePrototypes = errors.New("no obstacle prototypes configured")
	// ErrMissingPrototype 金币/碎片/星星原型名称为空
	ErrMissingPrototype = errors.New("missing collectible prototype")
)

// SpawnStats 生成统计
type SpawnStats struct {
	Obstacles           int `json:"obstacles"`
	DoubleObstacles     int `json:"doubleObstacles"`
	Coins               int `json:"coins"`
	Fragments           int `json:"fragments"`
	Stars               int `json:"stars"`
	StarsMissed         int `json:"starsMissed"`
	PatternsStarted     int `json:"patternsStarted"`
	PatternsTruncated   int `json:"patternsTruncated"`
	PointsSkipped       int `json:"pointsSkipped"`
	PlanetBackpressure  int `json:"planetBackpressure"`
	PatternBackpressure int `json:"patternBackpressure"`
}

// GameplaySpawnSystem 运行时生成调度器
//
// 拥有三个协作式循环（障碍物、收集物图案、星星）和它们共享的车道占用状态。
// 所有循环在 Update 中由同一个 tasks.Runner 依次恢复，同一时刻只有一个循环体在执行。
//
// 生命周期：
//
//	s := NewGameplaySpawnSystem(cfg, catalog, deps)
//	s.Initialize(laneCount, laneOffset, requirements)
//	s.Start()
//	for each frame: s.Update(dt)
//	s.Teardown()
type GameplaySpawnSystem struct {
	cfg     *config.SpawnerConfig
	catalog *PatternCatalog
	sources *sourceCache
	rng     *rand.Rand
	bus     eventBus

	clock  *tasks.GameClock
	runner *tasks.Runner
	track  ScrollTrack

	registry     *LaneRegistry
	occupancy    *LaneOccupancy
	requirements []config.FragmentRequirement

	planets  *obstacleEmitter
	patterns *patternEmitter
	stars    *starEmitter

	stats     SpawnStats
	startedAt float64
	running   bool
}

// NewGameplaySpawnSystem 创建生成调度器
// 参数:
//   - cfg: 生成配置，nil 时使用 config.DefaultSpawnerConfig()
//   - catalog: 收集物图案目录
//   - deps: 外部协作者，字段均可为 nil
func NewGameplaySpawnSystem(cfg *config.SpawnerConfig, catalog *PatternCatalog, deps SpawnDeps) *GameplaySpawnSystem {
	if cfg == nil {
		cfg = config.DefaultSpawnerConfig()
	}
	s := &GameplaySpawnSystem{
		cfg:     cfg,
		catalog: catalog,
		sources: newSourceCache(deps),
		rng:     newRand(deps.Rand),
		clock:   tasks.NewGameClock(0),
		runner:  tasks.NewRunner(),
	}
	for _, l := range deps.Listeners {
		s.bus.add(l)
	}
	return s
}

// AddListener 注册生成事件监听器
func (s *GameplaySpawnSystem) AddListener(l SpawnListener) {
	s.bus.add(l)
}

// Initialize 创建本关卡的车道和占用状态并载入碎片需求
//
// 星星标记、统计和里程在此重置。运行中调用不做任何修改。
func (s *GameplaySpawnSystem) Initialize(laneCount int, laneOffset float64, requirements []config.FragmentRequirement) error {
	if s.running {
		log.Printf("[GameplaySpawnSystem] Initialize ignored: scheduler is running")
		return nil
	}

	registry, err := NewLaneRegistry(laneCount, laneOffset)
	if err != nil {
		return fmt.Errorf("initialize spawn system: %w", err)
	}

	s.registry = registry
	s.occupancy = NewLaneOccupancy(laneCount, OccupancyRules{
		PlanetLaneCooldown: s.cfg.Planets.LaneCooldown,
		MinSafeZone:        s.cfg.Rows.MinSafeZone,
	})

	s.requirements = make([]config.FragmentRequirement, 0, len(requirements))
	for _, r := range requirements {
		if r.Count > 0 {
			s.requirements = append(s.requirements, r)
		}
	}

	s.track.Reset()
	s.stats = SpawnStats{}
	s.planets, s.patterns, s.stars = nil, nil, nil

	log.Printf("[GameplaySpawnSystem] Initialized %d lanes (offset %.1f), %d fragment requirements",
		laneCount, laneOffset, len(s.requirements))
	return nil
}

// Start 校验配置并启动三个循环
//
// 已在运行时直接返回 nil，不会重复启动循环。
// 配置缺失时返回错误且不启动任何循环。
func (s *GameplaySpawnSystem) Start() error {
	if s.running {
		return nil
	}
	if s.registry == nil {
		return ErrNotInitialized
	}
	if err := s.validate(); err != nil {
		log.Printf("[GameplaySpawnSystem] ERROR: refusing to start: %v", err)
		return err
	}

	now := s.clock.Now()
	s.startedAt = now

	s.planets = newObstacleEmitter(s)
	s.patterns = newPatternEmitter(s)
	s.stars = newStarEmitter(s)

	s.runner.Add(s.planets, now, 0)
	s.runner.Add(s.patterns, now, 0)
	s.runner.Add(s.stars, now, s.stars.schedule(now))

	s.running = true
	log.Printf("[GameplaySpawnSystem] Started at t=%.2f (speed policy %s)", now, s.cfg.Speed.Policy)
	return nil
}

// validate 启动前的配置检查
func (s *GameplaySpawnSystem) validate() error {
	if s.catalog.Len() == 0 || s.catalog.TotalWeight() <= 0 {
		return ErrNoPatterns
	}
	for i := 0; i < s.catalog.Len(); i++ {
		if p := s.catalog.Pattern(i); p.Weight > 0 && len(p.Points) == 0 {
			return fmt.Errorf("%w: pattern %q has no points", ErrNoPatterns, p.ID)
		}
	}
	if len(s.cfg.Prototypes.Planets) == 0 {
		return ErrNoObstaclePrototypes
	}
	p := s.cfg.Prototypes
	if p.Coin == "" || p.Star == "" || (p.Fragment == "" && len(s.requirements) > 0) {
		return fmt.Errorf("%w: coin=%q fragment=%q star=%q", ErrMissingPrototype, p.Coin, p.Fragment, p.Star)
	}
	return nil
}

// Update 推进虚拟时钟和赛道里程，恢复所有到期的循环
func (s *GameplaySpawnSystem) Update(deltaTime float64) {
	if !s.running || deltaTime <= 0 {
		return
	}
	s.clock.Advance(deltaTime)
	s.track.Advance(s.sources.worldSpeed(), deltaTime)
	s.runner.Tick(s.clock.Now())
}

// Teardown 立即停止所有循环并丢弃本关卡状态
// 已生成的实体不受影响，由它们自己的生命周期组件清理
func (s *GameplaySpawnSystem) Teardown() {
	if s.running {
		log.Printf("[GameplaySpawnSystem] Teardown at t=%.2f: %+v", s.clock.Now(), s.stats)
	}
	s.runner.Stop()
	s.running = false
	s.registry = nil
	s.occupancy = nil
	s.requirements = nil
	s.planets, s.patterns, s.stars = nil, nil, nil
}

// IsRunning 是否正在运行
func (s *GameplaySpawnSystem) IsRunning() bool { return s.running }

// Now 返回调度器的游戏时间
func (s *GameplaySpawnSystem) Now() float64 { return s.clock.Now() }

// StartedAt 返回最近一次 Start 的游戏时间
func (s *GameplaySpawnSystem) StartedAt() float64 { return s.startedAt }

// Distance 返回本关卡累计滚动距离
func (s *GameplaySpawnSystem) Distance() float64 { return s.track.Distance() }

// LaneCount 返回车道数量，未初始化时为 0
func (s *GameplaySpawnSystem) LaneCount() int {
	if s.registry == nil {
		return 0
	}
	return s.registry.Count()
}

// LanePositionX 返回车道的世界 X 坐标，越界索引被限制到有效范围
func (s *GameplaySpawnSystem) LanePositionX(index int) float64 {
	if s.registry == nil {
		return 0
	}
	return s.registry.WorldX(s.registry.Clamp(index))
}

// Lanes 返回车道占用状态的副本
func (s *GameplaySpawnSystem) Lanes() []LaneSnapshot {
	if s.occupancy == nil {
		return nil
	}
	return s.occupancy.Snapshot()
}

// Requirements 返回本关卡参与碎片替换的需求
func (s *GameplaySpawnSystem) Requirements() []config.FragmentRequirement {
	out := make([]config.FragmentRequirement, len(s.requirements))
	copy(out, s.requirements)
	return out
}

// StarFlags 返回三颗星是否已放置
func (s *GameplaySpawnSystem) StarFlags() [3]bool {
	if s.stars == nil {
		return [3]bool{}
	}
	return s.stars.flags
}

// StarState 返回星星循环状态
func (s *GameplaySpawnSystem) StarState() StarState {
	if s.stars == nil {
		return StarIdle
	}
	return s.stars.state
}

// Star1Time 返回第一颗星的计划触发时间，未启动时返回 false
func (s *GameplaySpawnSystem) Star1Time() (float64, bool) {
	if s.stars == nil {
		return 0, false
	}
	return s.stars.star1Time, true
}

// Stats 返回生成统计
func (s *GameplaySpawnSystem) Stats() SpawnStats { return s.stats }

// Config 返回生成配置
func (s *GameplaySpawnSystem) Config() *config.SpawnerConfig { return s.cfg }
