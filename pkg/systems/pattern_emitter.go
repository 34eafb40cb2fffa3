package systems

import (
	"log"
	"math"
	"math/rand"

	"golang.org/x/time/rate"

	"github.com/decker502/cosmorun/pkg/config"
)

// patternEmitter 收集物图案循环
//
// 不受时间冻结影响。空闲时选择基准车道和图案，之后每次恢复放置图案中的一个点，
// 点与点之间等待 pointDelay，整个图案结束后等待 randomDelay * dampingFactor。
type patternEmitter struct {
	cfg         config.CollectibleConfig
	spawnY      float64
	minVisibleY float64
	laneCD      float64
	protos      config.PrototypeConfig
	follow      bool

	catalog      *PatternCatalog
	requirements []config.FragmentRequirement

	lanes    collectibleLanes
	registry *LaneRegistry
	track    *ScrollTrack
	sources  *sourceCache
	rng      *rand.Rand
	bus      *eventBus
	stats    *SpawnStats

	// 当前图案
	active     *config.PatternConfig
	baseLane   int
	pointIndex int
	acc        float64

	backpressure rate.Sometimes
}

func newPatternEmitter(s *GameplaySpawnSystem) *patternEmitter {
	return &patternEmitter{
		cfg:          s.cfg.Collectibles,
		spawnY:       s.cfg.Rows.SpawnY,
		minVisibleY:  s.cfg.Rows.MinVisibleY,
		laneCD:       s.cfg.Collectibles.LaneCooldown,
		protos:       s.cfg.Prototypes,
		follow:       s.cfg.Speed.Policy == config.SpeedPolicyContinuous,
		catalog:      s.catalog,
		requirements: s.requirements,
		lanes:        s.occupancy,
		registry:     s.registry,
		track:        &s.track,
		sources:      s.sources,
		rng:          s.rng,
		bus:          &s.bus,
		stats:        &s.stats,
		backpressure: rate.Sometimes{First: 1, Every: 25},
	}
}

// Name 实现 tasks.Task
func (e *patternEmitter) Name() string { return "pattern" }

// Resume 实现 tasks.Task
func (e *patternEmitter) Resume(now float64) float64 {
	if e.active == nil && !e.begin(now) {
		return e.cfg.RetryDelay
	}
	return e.step(now)
}

// begin 选择基准车道和图案，无可用车道时返回 false
func (e *patternEmitter) begin(now float64) bool {
	eligible := e.lanes.CollectibleEligible(now, e.track.TrackY(e.spawnY))
	if len(eligible) == 0 {
		e.stats.PatternBackpressure++
		e.backpressure.Do(func() {
			log.Printf("[GameplaySpawnSystem] No eligible lane for pattern at t=%.2f (backpressure x%d)", now, e.stats.PatternBackpressure)
		})
		e.bus.publish(SpawnEvent{Kind: EventBackpressure, Time: now, Lane: -1, Loop: e.Name()})
		return false
	}

	base := eligible[e.rng.Intn(len(eligible))]
	pattern, ok := e.catalog.Pick(e.rng)
	if !ok {
		return false
	}

	e.active = pattern
	e.baseLane = base
	e.pointIndex = 0
	e.acc = 0
	e.stats.PatternsStarted++
	return true
}

// step 处理当前图案的下一个点，返回下一次恢复前的等待时间
func (e *patternEmitter) step(now float64) float64 {
	if e.pointIndex >= len(e.active.Points) {
		return e.finish()
	}
	point := e.active.Points[e.pointIndex]
	e.acc += point.Step * e.cfg.Spacing
	y := e.spawnY + e.acc

	if y < e.minVisibleY {
		e.stats.PatternsTruncated++
		log.Printf("[GameplaySpawnSystem] Pattern %s truncated at point %d/%d (y=%.1f)",
			e.active.ID, e.pointIndex, len(e.active.Points), y)
		return e.finish()
	}

	lane := e.registry.Clamp(e.baseLane + int(math.Round(point.Offset)))
	trackY := e.track.TrackY(y)

	// 挂起期间其他循环可能占用了该车道，放置前重新检查
	if e.lanes.CanPlaceCollectible(lane, now, trackY) {
		e.emit(now, lane, y, trackY)
	} else {
		e.stats.PointsSkipped++
	}

	e.pointIndex++
	if e.pointIndex >= len(e.active.Points) {
		return e.finish()
	}
	return e.cfg.PointDelay
}

// finish 结束当前图案
func (e *patternEmitter) finish() float64 {
	delay := e.active.RandomDelay * e.cfg.DampingFactor
	e.active = nil
	return delay
}

// emit 放置一个金币或碎片
func (e *patternEmitter) emit(now float64, lane int, y, trackY float64) {
	ev := SpawnEvent{
		Kind:             EventCoin,
		Time:             now,
		Lane:             lane,
		X:                e.registry.WorldX(lane),
		Y:                y,
		TrackY:           trackY,
		Prototype:        e.protos.Coin,
		Speed:            e.sources.worldSpeed(),
		FollowWorldSpeed: e.follow,
		PatternID:        e.active.ID,
		PointIndex:       e.pointIndex,
	}

	chance := e.active.FragmentSubstituteChance * e.cfg.FragmentMultiplier
	if roll := e.rng.Float64(); roll < chance && len(e.requirements) > 0 {
		req := e.requirements[e.rng.Intn(len(e.requirements))]
		ev.Kind = EventFragment
		ev.Prototype = e.protos.Fragment
		ev.FragmentType = req.Type
		ev.Variant = req.Variant
		e.stats.Fragments++
	} else {
		e.stats.Coins++
	}

	e.lanes.RecordCollectible(lane, now, trackY, e.laneCD)
	e.bus.publish(ev)
}
