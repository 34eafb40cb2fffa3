package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/tasks"
)

// newBareStarEmitter 不经过调度器直接构造星星循环
func newBareStarEmitter(t *testing.T, lanes collectibleLanes, stars config.StarConfig, progress float64) (*starEmitter, *eventRecorder) {
	t.Helper()
	cfg := config.DefaultSpawnerConfig()
	registry, err := NewLaneRegistry(3, 120)
	if err != nil {
		t.Fatalf("NewLaneRegistry failed: %v", err)
	}
	rec := &eventRecorder{}
	bus := &eventBus{}
	bus.add(rec)

	return &starEmitter{
		cfg:      stars,
		spawnY:   cfg.Rows.SpawnY,
		proto:    cfg.Prototypes.Star,
		follow:   true,
		laneCD:   cfg.Collectibles.LaneCooldown,
		lanes:    lanes,
		registry: registry,
		track:    &ScrollTrack{},
		sources:  newSourceCache(SpawnDeps{Progress: &fakeProgress{value: progress, available: true}}),
		rng:      rand.New(rand.NewSource(11)),
		bus:      bus,
		stats:    &SpawnStats{},
	}, rec
}

// fixedStarConfig 第一颗星固定在 t=1 触发
func fixedStarConfig() config.StarConfig {
	stars := config.DefaultSpawnerConfig().Stars
	stars.Star1MinDelay = 1
	stars.Star1MaxDelay = 1
	return stars
}

// driveStars 用独立的时钟和 Runner 驱动星星循环
func driveStars(e *starEmitter, seconds float64) *tasks.Runner {
	clock := tasks.NewGameClock(0)
	runner := tasks.NewRunner()
	runner.Add(e, 0, e.schedule(0))
	const dt = 0.05
	for i := 0; i < int(seconds/dt+0.5); i++ {
		clock.Advance(dt)
		runner.Tick(clock.Now())
	}
	return runner
}

// TestStarEmitterExhaustsRetries 车道始终不可用时重试 maxAttempts 次后停止
func TestStarEmitterExhaustsRetries(t *testing.T) {
	lanes := &scriptedLanes{refuseUntil: math.Inf(1)}
	e, rec := newBareStarEmitter(t, lanes, fixedStarConfig(), 1)

	runner := driveStars(e, 20)

	missed := rec.ofKind(EventStarMissed)
	if len(missed) != 1 {
		t.Fatalf("Expected exactly 1 missed star, got %d", len(missed))
	}
	ev := missed[0]
	if ev.StarIndex != 1 || ev.Attempts != 10 {
		t.Errorf("Expected star 1 missed after 10 attempts, got star %d after %d", ev.StarIndex, ev.Attempts)
	}
	// 第一次尝试在 t=1，之后每 0.5 秒一次
	if math.Abs(ev.Time-5.5) > 0.05+1e-6 {
		t.Errorf("Expected miss at t≈5.5, got %.3f", ev.Time)
	}
	if len(rec.ofKind(EventStar)) != 0 {
		t.Error("Expected no star placements")
	}
	if e.state != StarsHalted || !e.state.Terminal() {
		t.Errorf("Expected halted state, got %s", e.state)
	}
	if runner.Len() != 0 {
		t.Errorf("Expected star task to be removed, %d tasks left", runner.Len())
	}
	if e.stats.StarsMissed != 1 {
		t.Errorf("Expected StarsMissed=1, got %d", e.stats.StarsMissed)
	}
}

// TestStarEmitterContinueAfterMiss 开启 continueAfterMiss 时放弃的星星不阻断后续星星
func TestStarEmitterContinueAfterMiss(t *testing.T) {
	lanes := &scriptedLanes{refuseUntil: math.Inf(1)}
	stars := fixedStarConfig()
	stars.ContinueAfterMiss = true
	e, rec := newBareStarEmitter(t, lanes, stars, 1)

	driveStars(e, 30)

	missed := rec.ofKind(EventStarMissed)
	if len(missed) != 3 {
		t.Fatalf("Expected 3 missed stars, got %d", len(missed))
	}
	for i, ev := range missed {
		if ev.StarIndex != i+1 {
			t.Errorf("Miss %d: expected star %d, got %d", i, i+1, ev.StarIndex)
		}
	}
	if e.state != Star3Done {
		t.Errorf("Expected Star3Done, got %s", e.state)
	}
	if e.flags != [3]bool{} {
		t.Errorf("Expected no star flags, got %v", e.flags)
	}
}

// TestStarEmitterDelayedPlacement 车道在重试期间空出时放置成功
func TestStarEmitterDelayedPlacement(t *testing.T) {
	lanes := &scriptedLanes{refuseUntil: 2.2}
	e, rec := newBareStarEmitter(t, lanes, fixedStarConfig(), 0)

	driveStars(e, 5)

	stars := rec.ofKind(EventStar)
	if len(stars) != 1 {
		t.Fatalf("Expected star 1 placed, got %d stars", len(stars))
	}
	// t=1, 1.5, 2.0 失败，2.5 成功
	if stars[0].Attempts != 4 {
		t.Errorf("Expected success on attempt 4, got %d", stars[0].Attempts)
	}
	if math.Abs(stars[0].Time-2.5) > 0.05+1e-6 {
		t.Errorf("Expected placement at t≈2.5, got %.3f", stars[0].Time)
	}
	if stars[0].Prototype != "star" || stars[0].Y != -40 {
		t.Errorf("Unexpected star event: %+v", stars[0])
	}
	if len(lanes.recorded) != 1 {
		t.Errorf("Expected one lane record, got %v", lanes.recorded)
	}
	// 进度为 0，第二颗星不会触发
	if e.state != Star1Done {
		t.Errorf("Expected Star1Done, got %s", e.state)
	}
}

// TestStarStateString 测试状态名称
func TestStarStateString(t *testing.T) {
	tests := []struct {
		state StarState
		want  string
	}{
		{StarIdle, "idle"},
		{Star1Scheduled, "star1_scheduled"},
		{Star2Gated, "star2_gated"},
		{Star3Done, "star3_done"},
		{StarsHalted, "halted"},
		{StarState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("StarState(%d): expected %q, got %q", int(tt.state), tt.want, got)
		}
	}
	if Star2Done.Terminal() {
		t.Error("Star2Done should not be terminal")
	}
}
