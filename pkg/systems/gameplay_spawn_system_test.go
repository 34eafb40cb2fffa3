package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/cosmorun/pkg/config"
)

// TestScenarioSinglePlanetCadence 三车道、无成对生成：每 planetInterval 秒恰好一个障碍物
func TestScenarioSinglePlanetCadence(t *testing.T) {
	cfg := testSpawnerConfig()
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{}, nil)

	runFor(s, 30, 0.05)

	obstacles := rec.ofKind(EventObstacle)
	if len(obstacles) < 20 {
		t.Fatalf("Expected at least 20 obstacles in 30s, got %d", len(obstacles))
	}

	for i, ev := range obstacles {
		if ev.Double {
			t.Errorf("Obstacle %d: unexpected double placement", i)
		}
		if ev.Lane < 0 || ev.Lane >= 3 {
			t.Errorf("Obstacle %d: lane %d out of range", i, ev.Lane)
		}
		if i == 0 {
			continue
		}
		gap := ev.Time - obstacles[i-1].Time
		if math.Abs(gap-cfg.Planets.Interval) > 1e-6 {
			t.Errorf("Obstacle %d: expected gap %.2f, got %.6f", i, cfg.Planets.Interval, gap)
		}
	}

	if s.Stats().DoubleObstacles != 0 {
		t.Errorf("Expected no double placements, got %d", s.Stats().DoubleObstacles)
	}
}

// TestDoublePlanetPlacement 成对放置使用两条不同车道并等待 doubleInterval
func TestDoublePlanetPlacement(t *testing.T) {
	cfg := testSpawnerConfig()
	cfg.Planets.DoubleChance = 1
	cfg.Planets.LaneCooldown = 0
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{}, nil)

	runFor(s, 10, 0.05)

	obstacles := rec.ofKind(EventObstacle)
	if len(obstacles) == 0 || len(obstacles)%2 != 0 {
		t.Fatalf("Expected an even, non-zero number of obstacles, got %d", len(obstacles))
	}
	for i := 0; i < len(obstacles); i += 2 {
		a, b := obstacles[i], obstacles[i+1]
		if !a.Double || !b.Double {
			t.Errorf("Pair %d: expected double flag", i/2)
		}
		if a.Time != b.Time {
			t.Errorf("Pair %d: expected same time, got %.2f and %.2f", i/2, a.Time, b.Time)
		}
		if a.Lane == b.Lane {
			t.Errorf("Pair %d: expected distinct lanes, both %d", i/2, a.Lane)
		}
		if i >= 2 {
			gap := a.Time - obstacles[i-2].Time
			if math.Abs(gap-cfg.Planets.DoubleInterval) > 1e-6 {
				t.Errorf("Pair %d: expected gap %.2f, got %.6f", i/2, cfg.Planets.DoubleInterval, gap)
			}
		}
	}
}

// TestLaneOccupancyInvariantsHold 长时间运行中每次放置都满足车道占用约束
func TestLaneOccupancyInvariantsHold(t *testing.T) {
	for _, seed := range []int64{1, 7, 99} {
		cfg := config.DefaultSpawnerConfig()
		cfg.Stars.Star1MinDelay = 1
		cfg.Stars.Star1MaxDelay = 3
		catalog := NewPatternCatalog(&config.PatternCatalogConfig{Patterns: []config.PatternConfig{
			{ID: "line", Weight: 2, RandomDelay: 0.3, FragmentSubstituteChance: 0.3, Points: []config.PatternPoint{{Offset: 0, Step: 0}, {Offset: 0, Step: -1}, {Offset: 0, Step: -1}}},
			{ID: "diag", Weight: 1, RandomDelay: 0.2, Points: []config.PatternPoint{{Offset: -1, Step: 0}, {Offset: 0, Step: -1}, {Offset: 1, Step: -1}}},
		}})

		lanes := cfg.Lanes.Count
		lastPlanetTime := make([]float64, lanes)
		lastPlanetY := make([]float64, lanes)
		lastCollectibleY := make([]float64, lanes)
		blockedUntil := make([]float64, lanes)
		for i := 0; i < lanes; i++ {
			lastPlanetTime[i] = math.Inf(-1)
			lastPlanetY[i] = math.Inf(-1)
			lastCollectibleY[i] = math.Inf(-1)
			blockedUntil[i] = math.Inf(-1)
		}

		const eps = 1e-9
		violations := 0
		checker := SpawnListenerFunc(func(ev SpawnEvent) {
			if !ev.Kind.IsPlacement() {
				return
			}
			i := ev.Lane
			if ev.Kind == EventObstacle {
				if ev.Time-lastPlanetTime[i] < cfg.Planets.LaneCooldown-eps {
					violations++
					t.Errorf("seed %d: obstacle in lane %d at %.2f violates cooldown (last %.2f)", seed, i, ev.Time, lastPlanetTime[i])
				}
				if math.Abs(ev.TrackY-lastCollectibleY[i]) < cfg.Rows.MinSafeZone-eps {
					violations++
					t.Errorf("seed %d: obstacle in lane %d too close to collectible", seed, i)
				}
				lastPlanetTime[i] = ev.Time
				lastPlanetY[i] = ev.TrackY
				return
			}

			if ev.Time < blockedUntil[i]-eps {
				violations++
				t.Errorf("seed %d: %s in blocked lane %d at %.2f", seed, ev.Kind, i, ev.Time)
			}
			if math.Abs(ev.TrackY-lastPlanetY[i]) < cfg.Rows.MinSafeZone-eps {
				violations++
				t.Errorf("seed %d: %s in lane %d too close to obstacle", seed, ev.Kind, i)
			}
			blockedUntil[i] = ev.Time + cfg.Collectibles.LaneCooldown
			lastCollectibleY[i] = ev.TrackY
		})

		s, rec := newTestSystem(t, cfg, catalog, SpawnDeps{
			Speed:     &fakeSpeed{speed: 240, available: true},
			Rand:      rand.New(rand.NewSource(seed)),
			Listeners: []SpawnListener{checker},
		}, []config.FragmentRequirement{{Type: "crystal", Variant: "blue", Count: 3}})

		runFor(s, 60, 1.0/60)

		if len(rec.ofKind(EventObstacle)) == 0 || len(rec.ofKind(EventCoin, EventFragment)) == 0 {
			t.Fatalf("seed %d: expected both obstacles and collectibles", seed)
		}
		if violations > 0 {
			t.Fatalf("seed %d: %d invariant violations", seed, violations)
		}
	}
}

// TestScenarioProgressJumpFiresBothGates 进度一次从 0.1 跳到 0.9，第二、三颗星都会触发
func TestScenarioProgressJumpFiresBothGates(t *testing.T) {
	cfg := testSpawnerConfig()
	progress := &fakeProgress{value: 0.1, available: true}
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{Progress: progress}, nil)

	runFor(s, 5, 0.05)
	if s.StarState() != Star1Done {
		t.Fatalf("Expected Star1Done after star1 window, got %s", s.StarState())
	}
	if flags := s.StarFlags(); !flags[0] || flags[1] || flags[2] {
		t.Fatalf("Expected only star 1 placed, got %v", flags)
	}

	progress.value = 0.9
	runFor(s, 5, 0.05)

	stars := rec.ofKind(EventStar)
	if len(stars) != 3 {
		t.Fatalf("Expected 3 star placements, got %d", len(stars))
	}
	for i, ev := range stars {
		if ev.StarIndex != i+1 {
			t.Errorf("Star event %d: expected index %d, got %d", i, i+1, ev.StarIndex)
		}
		if i > 0 && ev.Time < stars[i-1].Time {
			t.Errorf("Star %d placed before star %d", ev.StarIndex, stars[i-1].StarIndex)
		}
	}
	if s.StarState() != Star3Done {
		t.Errorf("Expected Star3Done, got %s", s.StarState())
	}

	// 终态后不会再生成星星
	runFor(s, 10, 0.05)
	if got := len(rec.ofKind(EventStar)); got != 3 {
		t.Errorf("Expected exactly 3 stars per session, got %d", got)
	}
}

// TestStarGatesWaitForProgress 进度未达到阈值时第二颗星不会出现
func TestStarGatesWaitForProgress(t *testing.T) {
	cfg := testSpawnerConfig()
	progress := &fakeProgress{value: 0.39, available: true}
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{Progress: progress}, nil)

	runFor(s, 20, 0.05)
	if got := len(rec.ofKind(EventStar)); got != 1 {
		t.Fatalf("Expected only star 1 below threshold, got %d", got)
	}

	// 刚好等于下界即触发
	progress.value = 0.4
	runFor(s, 1, 0.05)
	if flags := s.StarFlags(); !flags[1] || flags[2] {
		t.Errorf("Expected star 2 only, got %v", flags)
	}
}

// TestStar1TriggerWindow 第一颗星的触发时间位于 [star1MinDelay, star1MaxDelay]
func TestStar1TriggerWindow(t *testing.T) {
	cfg := testSpawnerConfig()
	cfg.Stars.Star1MinDelay = 3
	cfg.Stars.Star1MaxDelay = 6

	for seed := int64(1); seed <= 20; seed++ {
		s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{Rand: rand.New(rand.NewSource(seed))}, nil)

		at, ok := s.Star1Time()
		if !ok {
			t.Fatalf("seed %d: expected star1 to be scheduled", seed)
		}
		offset := at - s.StartedAt()
		if offset < cfg.Stars.Star1MinDelay || offset > cfg.Stars.Star1MaxDelay {
			t.Errorf("seed %d: star1 offset %.3f outside [3, 6]", seed, offset)
		}

		runFor(s, 8, 0.05)
		stars := rec.ofKind(EventStar)
		if len(stars) != 1 {
			t.Fatalf("seed %d: expected star 1, got %d stars", seed, len(stars))
		}
		if stars[0].Time+1e-6 < at || stars[0].Time > at+0.05+1e-6 {
			t.Errorf("seed %d: star1 placed at %.3f, scheduled %.3f", seed, stars[0].Time, at)
		}
	}
}

// TestStartIsIdempotent 重复 Initialize + Start 不会启动重复的循环
func TestStartIsIdempotent(t *testing.T) {
	cfg := testSpawnerConfig()

	single, singleRec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{Rand: rand.New(rand.NewSource(5))}, nil)
	runFor(single, 10, 0.05)

	twice, twiceRec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{Rand: rand.New(rand.NewSource(5))}, nil)
	if err := twice.Initialize(cfg.Lanes.Count, cfg.Lanes.Offset, nil); err != nil {
		t.Fatalf("second Initialize() failed: %v", err)
	}
	if err := twice.Start(); err != nil {
		t.Fatalf("second Start() failed: %v", err)
	}
	if twice.runner.Len() != 3 {
		t.Errorf("Expected 3 loops, got %d", twice.runner.Len())
	}
	runFor(twice, 10, 0.05)

	if len(singleRec.events) != len(twiceRec.events) {
		t.Errorf("Expected identical event streams, got %d vs %d events", len(singleRec.events), len(twiceRec.events))
	}
	if single.Stats() != twice.Stats() {
		t.Errorf("Expected identical stats, got %+v vs %+v", single.Stats(), twice.Stats())
	}
}

// TestStartRejectsMissingConfiguration 缺少图案或原型时拒绝启动且不运行任何循环
func TestStartRejectsMissingConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		catalog *PatternCatalog
		mutate  func(*config.SpawnerConfig)
		reqs    []config.FragmentRequirement
		wantErr error
	}{
		{
			name:    "空图案目录",
			catalog: NewPatternCatalog(&config.PatternCatalogConfig{}),
			wantErr: ErrNoPatterns,
		},
		{
			name:    "图案目录为 nil",
			catalog: nil,
			wantErr: ErrNoPatterns,
		},
		{
			name: "所有图案权重为 0",
			catalog: NewPatternCatalog(&config.PatternCatalogConfig{Patterns: []config.PatternConfig{
				{ID: "a", Weight: 0, Points: []config.PatternPoint{{Offset: 0, Step: 0}}},
			}}),
			wantErr: ErrNoPatterns,
		},
		{
			name: "正权重图案没有点",
			catalog: NewPatternCatalog(&config.PatternCatalogConfig{Patterns: []config.PatternConfig{
				{ID: "single", Weight: 1, Points: []config.PatternPoint{{Offset: 0, Step: 0}}},
				{ID: "empty", Weight: 1},
			}}),
			wantErr: ErrNoPatterns,
		},
		{
			name:    "没有障碍物原型",
			catalog: testCatalog(0),
			mutate:  func(c *config.SpawnerConfig) { c.Prototypes.Planets = nil },
			wantErr: ErrNoObstaclePrototypes,
		},
		{
			name:    "有碎片需求但缺少碎片原型",
			catalog: testCatalog(0),
			mutate:  func(c *config.SpawnerConfig) { c.Prototypes.Fragment = "" },
			reqs:    []config.FragmentRequirement{{Type: "gear", Count: 1}},
			wantErr: ErrMissingPrototype,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testSpawnerConfig()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			rec := &eventRecorder{}
			s := NewGameplaySpawnSystem(cfg, tt.catalog, SpawnDeps{Listeners: []SpawnListener{rec}})
			if err := s.Initialize(3, 120, tt.reqs); err != nil {
				t.Fatalf("Initialize() failed: %v", err)
			}

			err := s.Start()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if s.IsRunning() {
				t.Error("Scheduler should not be running")
			}

			runFor(s, 5, 0.05)
			if len(rec.events) != 0 {
				t.Errorf("Expected no events, got %d", len(rec.events))
			}
		})
	}
}

func TestStartBeforeInitialize(t *testing.T) {
	s := NewGameplaySpawnSystem(testSpawnerConfig(), testCatalog(0), SpawnDeps{})
	if err := s.Start(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestInitializeRejectsInvalidLanes(t *testing.T) {
	s := NewGameplaySpawnSystem(testSpawnerConfig(), testCatalog(0), SpawnDeps{})
	if err := s.Initialize(0, 120, nil); !errors.Is(err, ErrInvalidLanes) {
		t.Errorf("Expected ErrInvalidLanes for 0 lanes, got %v", err)
	}
	if err := s.Initialize(3, 0, nil); !errors.Is(err, ErrInvalidLanes) {
		t.Errorf("Expected ErrInvalidLanes for zero offset, got %v", err)
	}
}

// TestScenarioNoFragmentChance 替换概率为 0 时只生成金币
func TestScenarioNoFragmentChance(t *testing.T) {
	cfg := testSpawnerConfig()
	reqs := []config.FragmentRequirement{{Type: "crystal", Variant: "blue", Count: 5}}
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{}, reqs)

	runFor(s, 30, 0.05)

	if got := len(rec.ofKind(EventFragment)); got != 0 {
		t.Errorf("Expected no fragments, got %d", got)
	}
	if got := len(rec.ofKind(EventCoin)); got == 0 {
		t.Error("Expected coins to be emitted")
	}
	if s.Stats().Fragments != 0 {
		t.Errorf("Expected 0 fragments in stats, got %d", s.Stats().Fragments)
	}
}

// TestFragmentSubstitutionUsesOutstandingRequirements 碎片只从 count > 0 的需求中选择
func TestFragmentSubstitutionUsesOutstandingRequirements(t *testing.T) {
	cfg := testSpawnerConfig()
	reqs := []config.FragmentRequirement{
		{Type: "crystal", Variant: "blue", Count: 2},
		{Type: "crystal", Variant: "red", Count: 0},
		{Type: "gear", Variant: "gold", Count: 1},
	}
	s, rec := newTestSystem(t, cfg, testCatalog(1), SpawnDeps{}, reqs)

	runFor(s, 30, 0.05)

	fragments := rec.ofKind(EventFragment)
	if len(fragments) == 0 {
		t.Fatal("Expected fragments with substitute chance 1")
	}
	if got := len(rec.ofKind(EventCoin)); got != 0 {
		t.Errorf("Expected no coins with substitute chance 1, got %d", got)
	}

	seen := map[string]int{}
	for _, ev := range fragments {
		key := config.FragmentRequirement{Type: ev.FragmentType, Variant: ev.Variant}.Key()
		if key == "crystal/red" {
			t.Fatalf("Fragment for satisfied requirement emitted")
		}
		if ev.Prototype != cfg.Prototypes.Fragment {
			t.Errorf("Expected fragment prototype %q, got %q", cfg.Prototypes.Fragment, ev.Prototype)
		}
		seen[key]++
	}
	if seen["crystal/blue"] == 0 || seen["gear/gold"] == 0 {
		t.Errorf("Expected both outstanding requirements to be chosen, got %v", seen)
	}
}

// TestFragmentFallsBackToCoinWithoutRequirements 关卡没有碎片需求时总是生成金币
func TestFragmentFallsBackToCoinWithoutRequirements(t *testing.T) {
	s, rec := newTestSystem(t, testSpawnerConfig(), testCatalog(1), SpawnDeps{}, nil)
	runFor(s, 10, 0.05)

	if got := len(rec.ofKind(EventFragment)); got != 0 {
		t.Errorf("Expected no fragments, got %d", got)
	}
	if got := len(rec.ofKind(EventCoin)); got == 0 {
		t.Error("Expected coins")
	}
}

// TestScenarioTimeFreeze 时间冻结时障碍物循环停止，收集物循环继续
func TestScenarioTimeFreeze(t *testing.T) {
	effects := &fakeEffects{freeze: true}
	s, rec := newTestSystem(t, testSpawnerConfig(), testCatalog(0), SpawnDeps{Effects: effects}, nil)

	runFor(s, 10, 0.05)
	if got := len(rec.ofKind(EventObstacle)); got != 0 {
		t.Errorf("Expected no obstacles during freeze, got %d", got)
	}
	if got := len(rec.ofKind(EventCoin)); got == 0 {
		t.Error("Expected coins during freeze")
	}

	effects.freeze = false
	runFor(s, 3, 0.05)
	if got := len(rec.ofKind(EventObstacle)); got == 0 {
		t.Error("Expected obstacles after freeze ends")
	}
}

// TestSpawnHoldBlocksObstacles CanSpawnNow 为 false 时不生成障碍物
func TestSpawnHoldBlocksObstacles(t *testing.T) {
	effects := &fakeEffects{blockSpawn: true}
	s, rec := newTestSystem(t, testSpawnerConfig(), testCatalog(0), SpawnDeps{Effects: effects}, nil)

	runFor(s, 5, 0.05)
	if got := len(rec.ofKind(EventObstacle)); got != 0 {
		t.Errorf("Expected no obstacles while spawning is held, got %d", got)
	}
	if s.Stats().PlanetBackpressure != 0 {
		t.Error("Held spawning must not count as backpressure")
	}
}

// TestSpeedFallsBackToLastKnownValue 速度源不可用时使用上一次的值
func TestSpeedFallsBackToLastKnownValue(t *testing.T) {
	speed := &fakeSpeed{speed: 300, available: true}
	s, rec := newTestSystem(t, testSpawnerConfig(), testCatalog(0), SpawnDeps{Speed: speed}, nil)

	runFor(s, 2, 0.05)
	speed.speed, speed.available = 999, false
	before := len(rec.events)
	runFor(s, 5, 0.05)

	for _, ev := range rec.events[before:] {
		if ev.Kind.IsPlacement() && ev.Speed != 300 {
			t.Fatalf("Expected last-known speed 300, got %.1f", ev.Speed)
		}
	}
	if math.Abs(s.Distance()-300*7) > 1e-6 {
		t.Errorf("Expected distance %.1f, got %.3f", 300.0*7, s.Distance())
	}
}

// TestNilCollaboratorsUseNeutralDefaults 所有协作者为 nil 时仍能运行
func TestNilCollaboratorsUseNeutralDefaults(t *testing.T) {
	s, rec := newTestSystem(t, testSpawnerConfig(), testCatalog(0), SpawnDeps{}, nil)
	runFor(s, 10, 0.05)

	if len(rec.ofKind(EventObstacle)) == 0 {
		t.Error("Expected obstacles without an effect source")
	}
	for _, ev := range rec.ofKind(EventObstacle) {
		if ev.Speed != 0 {
			t.Fatalf("Expected neutral speed 0, got %.1f", ev.Speed)
		}
	}
	// 没有进度源时进度为 0，第二颗星不会出现
	if flags := s.StarFlags(); flags[1] {
		t.Error("Star 2 should not fire without progress")
	}
}

// TestSpeedPolicyStamped stamped 策略下实体不跟随世界速度
func TestSpeedPolicyStamped(t *testing.T) {
	cfg := testSpawnerConfig()
	cfg.Speed.Policy = config.SpeedPolicyStamped
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{Speed: &fakeSpeed{speed: 200, available: true}}, nil)
	runFor(s, 3, 0.05)

	for _, ev := range rec.events {
		if ev.Kind.IsPlacement() && (ev.FollowWorldSpeed || ev.Speed != 200) {
			t.Fatalf("Expected stamped speed 200, got %+v", ev)
		}
	}
}

// TestListenerPanicIsContained 监听器 panic 不影响调度循环
func TestListenerPanicIsContained(t *testing.T) {
	panicky := SpawnListenerFunc(func(ev SpawnEvent) {
		if ev.Kind == EventObstacle {
			panic("boom")
		}
	})
	s, rec := newTestSystem(t, testSpawnerConfig(), testCatalog(0), SpawnDeps{Listeners: []SpawnListener{panicky}}, nil)

	runFor(s, 5, 0.05)
	if got := len(rec.ofKind(EventObstacle)); got < 3 {
		t.Errorf("Expected obstacles to keep flowing after listener panics, got %d", got)
	}
}

// TestTeardownStopsLoops Teardown 后不再生成，之后可以重新开始
func TestTeardownStopsLoops(t *testing.T) {
	cfg := testSpawnerConfig()
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{}, nil)
	runFor(s, 3, 0.05)

	s.Teardown()
	if s.IsRunning() || s.LaneCount() != 0 || s.Lanes() != nil {
		t.Error("Expected state to be discarded after Teardown")
	}
	count := len(rec.events)
	runFor(s, 5, 0.05)
	if len(rec.events) != count {
		t.Errorf("Expected no events after Teardown, got %d new", len(rec.events)-count)
	}

	if err := s.Initialize(5, 80, nil); err != nil {
		t.Fatalf("re-Initialize failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("re-Start failed: %v", err)
	}
	if s.StarFlags() != [3]bool{} {
		t.Error("Star flags should reset on a new session")
	}
	runFor(s, 3, 0.05)
	if len(rec.events) == count {
		t.Error("Expected events after restart")
	}
	if s.LaneCount() != 5 {
		t.Errorf("Expected 5 lanes, got %d", s.LaneCount())
	}
}

func TestLanePositionX(t *testing.T) {
	s := NewGameplaySpawnSystem(testSpawnerConfig(), testCatalog(0), SpawnDeps{})
	if s.LanePositionX(1) != 0 {
		t.Error("Expected 0 before Initialize")
	}
	if err := s.Initialize(3, 120, nil); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		lane int
		want float64
	}{
		{0, -120},
		{1, 0},
		{2, 120},
		{-3, -120}, // 越界限制
		{9, 120},
	}
	for _, tt := range tests {
		if got := s.LanePositionX(tt.lane); got != tt.want {
			t.Errorf("LanePositionX(%d) = %.1f, want %.1f", tt.lane, got, tt.want)
		}
	}
}

// TestBackpressureWhenAllLanesCoolingDown 所有车道都在冷却时进入背压
func TestBackpressureWhenAllLanesCoolingDown(t *testing.T) {
	cfg := testSpawnerConfig()
	cfg.Lanes.Count = 1
	cfg.Planets.Interval = 0.5
	cfg.Planets.LaneCooldown = 2
	s, rec := newTestSystem(t, cfg, testCatalog(0), SpawnDeps{}, nil)

	runFor(s, 6.5, 0.05)

	obstacles := rec.ofKind(EventObstacle)
	for i := 1; i < len(obstacles); i++ {
		if gap := obstacles[i].Time - obstacles[i-1].Time; gap < 2-1e-6 {
			t.Errorf("Obstacle %d: lane reused after %.2fs", i, gap)
		}
	}
	if s.Stats().PlanetBackpressure == 0 {
		t.Error("Expected backpressure to be recorded")
	}
	bp := 0
	for _, ev := range rec.ofKind(EventBackpressure) {
		if ev.Loop == "planet" {
			bp++
		}
	}
	if bp != s.Stats().PlanetBackpressure {
		t.Errorf("Expected %d backpressure events, got %d", s.Stats().PlanetBackpressure, bp)
	}
}
