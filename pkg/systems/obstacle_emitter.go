package systems

import (
	"log"
	"math"
	"math/rand"

	"golang.org/x/time/rate"

	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/tasks"
)

// obstacleEmitter 障碍物（行星）循环
//
// 每次恢复执行一步：
//  1. 时间冻结或禁止生成时不修改任何状态，freezePollInterval 后重试
//  2. 距上一次任意车道的障碍物不足 planetInterval 时等待剩余时间
//  3. 无可用车道时进入背压，backpressurePollInterval 后重试
//  4. 按 doublePlanetChance 决定放置一个或两个障碍物
type obstacleEmitter struct {
	cfg        config.PlanetConfig
	spawnY     float64
	prototypes []string
	follow     bool

	lanes    obstacleLanes
	registry *LaneRegistry
	track    *ScrollTrack
	sources  *sourceCache
	rng      *rand.Rand
	bus      *eventBus
	stats    *SpawnStats

	lastEmission float64
	backpressure rate.Sometimes
}

func newObstacleEmitter(s *GameplaySpawnSystem) *obstacleEmitter {
	return &obstacleEmitter{
		cfg:          s.cfg.Planets,
		spawnY:       s.cfg.Rows.SpawnY,
		prototypes:   s.cfg.Prototypes.Planets,
		follow:       s.cfg.Speed.Policy == config.SpeedPolicyContinuous,
		lanes:        s.occupancy,
		registry:     s.registry,
		track:        &s.track,
		sources:      s.sources,
		rng:          s.rng,
		bus:          &s.bus,
		stats:        &s.stats,
		lastEmission: math.Inf(-1),
		backpressure: rate.Sometimes{First: 1, Every: 25},
	}
}

// Name 实现 tasks.Task
func (e *obstacleEmitter) Name() string { return "planet" }

// Resume 实现 tasks.Task
func (e *obstacleEmitter) Resume(now float64) float64 {
	if e.sources.timeFreeze() || !e.sources.canSpawn() {
		return e.cfg.FreezePollInterval
	}

	if since := now - e.lastEmission; since+tasks.TimeEpsilon < e.cfg.Interval {
		return e.cfg.Interval - since
	}

	// 每次都重新读取共享状态，不跨挂起点缓存
	trackY := e.track.TrackY(e.spawnY)
	eligible := e.lanes.ObstacleEligible(now, trackY)
	if len(eligible) == 0 {
		e.stats.PlanetBackpressure++
		e.backpressure.Do(func() {
			log.Printf("[GameplaySpawnSystem] No eligible lane for planet at t=%.2f (backpressure x%d)", now, e.stats.PlanetBackpressure)
		})
		e.bus.publish(SpawnEvent{Kind: EventBackpressure, Time: now, Lane: -1, Loop: e.Name()})
		return e.cfg.BackpressurePollInterval
	}

	roll := e.rng.Float64()
	if roll < e.cfg.DoubleChance && len(eligible) >= 2 {
		perm := e.rng.Perm(len(eligible))
		e.place(now, trackY, eligible[perm[0]], true)
		e.place(now, trackY, eligible[perm[1]], true)
		e.stats.DoubleObstacles++
		e.lastEmission = now
		return e.cfg.DoubleInterval
	}

	e.place(now, trackY, eligible[e.rng.Intn(len(eligible))], false)
	e.lastEmission = now
	return e.cfg.Interval
}

// place 放置一个障碍物并更新车道记录
func (e *obstacleEmitter) place(now, trackY float64, lane int, double bool) {
	e.lanes.RecordObstacle(lane, now, trackY)
	e.stats.Obstacles++

	e.bus.publish(SpawnEvent{
		Kind:             EventObstacle,
		Time:             now,
		Lane:             lane,
		X:                e.registry.WorldX(lane),
		Y:                e.spawnY,
		TrackY:           trackY,
		Prototype:        e.prototypes[e.rng.Intn(len(e.prototypes))],
		Speed:            e.sources.worldSpeed(),
		FollowWorldSpeed: e.follow,
		Double:           double,
	})
}
