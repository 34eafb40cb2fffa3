package systems

import (
	"math/rand"
	"testing"

	"github.com/decker502/cosmorun/pkg/config"
)

// fakeEffects 可控的道具状态
type fakeEffects struct {
	freeze     bool
	boost      bool
	blockSpawn bool
}

func (f *fakeEffects) IsTimeFreezeActive() bool { return f.freeze }
func (f *fakeEffects) IsSpeedBoostActive() bool { return f.boost }
func (f *fakeEffects) CanSpawnNow() bool        { return !f.blockSpawn }

// fakeSpeed 可控的世界速度
type fakeSpeed struct {
	speed     float64
	available bool
}

func (f *fakeSpeed) CurrentWorldSpeed() (float64, bool) { return f.speed, f.available }

// fakeProgress 可控的任务进度
type fakeProgress struct {
	value     float64
	available bool
}

func (f *fakeProgress) FragmentCollectionProgress() (float64, bool) { return f.value, f.available }

// eventRecorder 记录所有生成事件
type eventRecorder struct {
	events []SpawnEvent
}

func (r *eventRecorder) OnSpawnEvent(ev SpawnEvent) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) ofKind(kinds ...SpawnEventKind) []SpawnEvent {
	out := make([]SpawnEvent, 0)
	for _, ev := range r.events {
		for _, k := range kinds {
			if ev.Kind == k {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

// testSpawnerConfig 返回测试用配置：3 车道、无安全距离限制
func testSpawnerConfig() *config.SpawnerConfig {
	cfg := config.DefaultSpawnerConfig()
	cfg.Rows.MinSafeZone = 0
	cfg.Planets.DoubleChance = 0
	cfg.Stars.Star1MinDelay = 1
	cfg.Stars.Star1MaxDelay = 2
	return cfg
}

// testCatalog 单点图案目录
func testCatalog(chance float64) *PatternCatalog {
	return NewPatternCatalog(&config.PatternCatalogConfig{
		Patterns: []config.PatternConfig{
			{
				ID:                       "single",
				Weight:                   1,
				FragmentSubstituteChance: chance,
				RandomDelay:              0.5,
				Points:                   []config.PatternPoint{{Offset: 0, Step: 0}},
			},
		},
	})
}

// newTestSystem 创建已初始化并启动的调度器
func newTestSystem(t *testing.T, cfg *config.SpawnerConfig, catalog *PatternCatalog, deps SpawnDeps, reqs []config.FragmentRequirement) (*GameplaySpawnSystem, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	deps.Listeners = append(deps.Listeners, rec)
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(42))
	}

	s := NewGameplaySpawnSystem(cfg, catalog, deps)
	if err := s.Initialize(cfg.Lanes.Count, cfg.Lanes.Offset, reqs); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return s, rec
}

// runFor 以固定帧长推进调度器
func runFor(s *GameplaySpawnSystem, seconds, dt float64) {
	steps := int(seconds/dt + 0.5)
	for i := 0; i < steps; i++ {
		s.Update(dt)
	}
}
