package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/tasks"
)

// progressEpsilon 进度比较容差（碎片数之比可能带舍入误差）
const progressEpsilon = 1e-9

// StarState 星星循环状态
type StarState int

const (
	StarIdle       StarState = iota // 未开始
	Star1Scheduled                  // 等待第一颗星的触发时间（或正在放置）
	Star1Done                       // 第一颗星已处理，轮询第二颗星的进度阈值
	Star2Gated                      // 第二颗星已触发，正在放置
	Star2Done                       // 第二颗星已处理，轮询第三颗星的进度阈值
	Star3Gated                      // 第三颗星已触发，正在放置
	Star3Done                       // 终态：三颗星都已处理
	StarsHalted                     // 终态：某颗星放置失败后停止
)

var starStateNames = [...]string{
	StarIdle:       "idle",
	Star1Scheduled: "star1_scheduled",
	Star1Done:      "star1_done",
	Star2Gated:     "star2_gated",
	Star2Done:      "star2_done",
	Star3Gated:     "star3_gated",
	Star3Done:      "star3_done",
	StarsHalted:    "halted",
}

// String 返回状态名称
func (s StarState) String() string {
	if s >= 0 && int(s) < len(starStateNames) {
		return starStateNames[s]
	}
	return "unknown"
}

// MarshalText 使状态在 JSON 中以名称出现
func (s StarState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal 是否为终态
func (s StarState) Terminal() bool {
	return s == Star3Done || s == StarsHalted
}

// starEmitter 进度门控的星星循环
//
// 第一颗星在会话开始后 [star1MinDelay, star1MaxDelay] 内随机时刻触发；
// 第二、三颗星在任务进度达到各自窗口下界时触发（下界视为阈值，
// 进度一次跳过整个窗口也会在下一次轮询触发）。
// 第 N+1 颗星只在第 N 颗星处理完成后才会被评估。
type starEmitter struct {
	cfg    config.StarConfig
	spawnY float64
	proto  string
	follow bool
	laneCD float64

	lanes    collectibleLanes
	registry *LaneRegistry
	track    *ScrollTrack
	sources  *sourceCache
	rng      *rand.Rand
	bus      *eventBus
	stats    *SpawnStats

	state      StarState
	star1Time  float64
	attempts   int
	flags      [3]bool
	windowWarn [3]bool
}

func newStarEmitter(s *GameplaySpawnSystem) *starEmitter {
	return &starEmitter{
		cfg:      s.cfg.Stars,
		spawnY:   s.cfg.Rows.SpawnY,
		proto:    s.cfg.Prototypes.Star,
		follow:   s.cfg.Speed.Policy == config.SpeedPolicyContinuous,
		laneCD:   s.cfg.Collectibles.LaneCooldown,
		lanes:    s.occupancy,
		registry: s.registry,
		track:    &s.track,
		sources:  s.sources,
		rng:      s.rng,
		bus:      &s.bus,
		stats:    &s.stats,
		state:    StarIdle,
	}
}

// Name 实现 tasks.Task
func (e *starEmitter) Name() string { return "star" }

// Resume 实现 tasks.Task
func (e *starEmitter) Resume(now float64) float64 {
	switch e.state {
	case StarIdle:
		return e.schedule(now)

	case Star1Scheduled:
		if now+tasks.TimeEpsilon < e.star1Time {
			return e.star1Time - now
		}
		return e.attempt(now, 1)

	case Star1Done:
		return e.poll(now, 2, e.cfg.Star2Progress, Star2Gated)

	case Star2Gated:
		return e.attempt(now, 2)

	case Star2Done:
		return e.poll(now, 3, e.cfg.Star3Progress, Star3Gated)

	case Star3Gated:
		return e.attempt(now, 3)
	}

	return tasks.Done
}

// schedule 在会话开始时抽取第一颗星的触发时间，返回距触发的等待时间
func (e *starEmitter) schedule(now float64) float64 {
	span := e.cfg.Star1MaxDelay - e.cfg.Star1MinDelay
	e.star1Time = now + e.cfg.Star1MinDelay + e.rng.Float64()*span
	e.state = Star1Scheduled
	log.Printf("[GameplaySpawnSystem] Star 1 scheduled at t=%.2f", e.star1Time)
	return e.star1Time - now
}

// poll 检查任务进度是否达到下一颗星的阈值
func (e *starEmitter) poll(now float64, index int, window config.ProgressRange, gated StarState) float64 {
	progress := e.sources.missionProgress()
	if progress+progressEpsilon < window.Min {
		return e.cfg.PollInterval
	}

	if progress > window.Max+progressEpsilon && !e.windowWarn[index-1] {
		e.windowWarn[index-1] = true
		log.Printf("[GameplaySpawnSystem] Progress %.2f skipped star %d window [%.2f, %.2f], triggering anyway",
			progress, index, window.Min, window.Max)
	}

	e.state = gated
	e.attempts = 0
	log.Printf("[GameplaySpawnSystem] Star %d triggered at progress %.2f (t=%.2f)", index, progress, now)
	return e.attempt(now, index)
}

// attempt 尝试放置第 index 颗星
// 车道按随机顺序检查，使用第一条满足收集物判定的车道
func (e *starEmitter) attempt(now float64, index int) float64 {
	e.attempts++
	trackY := e.track.TrackY(e.spawnY)

	for _, lane := range e.rng.Perm(e.registry.Count()) {
		if !e.lanes.CanPlaceCollectible(lane, now, trackY) {
			continue
		}
		e.place(now, index, lane, trackY)
		return e.advance(index)
	}

	if e.attempts < e.cfg.MaxAttempts {
		return e.cfg.RetryBackoff
	}

	// 重试耗尽
	e.stats.StarsMissed++
	log.Printf("[GameplaySpawnSystem] WARNING: Star %d placement failed after %d attempts", index, e.attempts)
	e.bus.publish(SpawnEvent{
		Kind:      EventStarMissed,
		Time:      now,
		Lane:      -1,
		StarIndex: index,
		Attempts:  e.attempts,
		Loop:      e.Name(),
	})

	if !e.cfg.ContinueAfterMiss {
		e.state = StarsHalted
		log.Printf("[GameplaySpawnSystem] Star chain halted after star %d", index)
		return tasks.Done
	}
	return e.advance(index)
}

// place 放置星星并更新车道记录
func (e *starEmitter) place(now float64, index, lane int, trackY float64) {
	e.flags[index-1] = true
	e.stats.Stars++
	e.lanes.RecordCollectible(lane, now, trackY, e.laneCD)

	log.Printf("[GameplaySpawnSystem] Star %d placed in lane %d at t=%.2f (attempt %d)", index, lane, now, e.attempts)
	e.bus.publish(SpawnEvent{
		Kind:             EventStar,
		Time:             now,
		Lane:             lane,
		X:                e.registry.WorldX(lane),
		Y:                e.spawnY,
		TrackY:           trackY,
		Prototype:        e.proto,
		Speed:            e.sources.worldSpeed(),
		FollowWorldSpeed: e.follow,
		StarIndex:        index,
		Attempts:         e.attempts,
	})
}

// advance 第 index 颗星处理完成后进入下一状态
func (e *starEmitter) advance(index int) float64 {
	e.attempts = 0
	switch index {
	case 1:
		e.state = Star1Done
	case 2:
		e.state = Star2Done
	default:
		e.state = Star3Done
		log.Printf("[GameplaySpawnSystem] Star chain complete")
		return tasks.Done
	}
	return e.cfg.PollInterval
}
