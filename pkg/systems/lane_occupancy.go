package systems

import "math"

// OccupancyRules 车道占用判定参数
type OccupancyRules struct {
	PlanetLaneCooldown float64 // 同车道两次障碍物的最小间隔（秒）
	MinSafeZone        float64 // 障碍物与收集物的最小垂直距离
}

// laneRecord 单条车道的占用记录
//
// 垂直位置使用赛道坐标（见 ScrollTrack），不同时刻的放置可以直接比较。
// 未使用过的车道各字段为 -Inf，任何放置都合法。
type laneRecord struct {
	blockedUntil          float64
	lastPlanetSpawnTime   float64
	lastPlanetSpawnY      float64
	lastCollectibleSpawnY float64
}

// LaneOccupancy 车道占用状态
//
// 由调度器独占；障碍物循环只通过 obstacleLanes 访问，
// 收集物和星星循环只通过 collectibleLanes 访问。
type LaneOccupancy struct {
	rules OccupancyRules
	lanes []laneRecord
}

// obstacleLanes 障碍物循环可见的占用操作
type obstacleLanes interface {
	ObstacleEligible(now, trackY float64) []int
	RecordObstacle(lane int, now, trackY float64)
}

// collectibleLanes 收集物循环可见的占用操作
type collectibleLanes interface {
	CollectibleEligible(now, trackY float64) []int
	CanPlaceCollectible(lane int, now, trackY float64) bool
	RecordCollectible(lane int, now, trackY, cooldown float64)
}

// NewLaneOccupancy 创建 laneCount 条车道的占用状态
func NewLaneOccupancy(laneCount int, rules OccupancyRules) *LaneOccupancy {
	lanes := make([]laneRecord, laneCount)
	inf := math.Inf(-1)
	for i := range lanes {
		lanes[i] = laneRecord{
			blockedUntil:          inf,
			lastPlanetSpawnTime:   inf,
			lastPlanetSpawnY:      inf,
			lastCollectibleSpawnY: inf,
		}
	}
	return &LaneOccupancy{rules: rules, lanes: lanes}
}

// LaneCount 返回车道数量
func (o *LaneOccupancy) LaneCount() int { return len(o.lanes) }

// CanPlaceObstacle 障碍物放置判定：
// now - lastPlanetSpawnTime >= planetLaneCooldown 且与上一个收集物的垂直距离 >= minSafeZone
func (o *LaneOccupancy) CanPlaceObstacle(lane int, now, trackY float64) bool {
	if lane < 0 || lane >= len(o.lanes) {
		return false
	}
	rec := &o.lanes[lane]
	if now-rec.lastPlanetSpawnTime < o.rules.PlanetLaneCooldown {
		return false
	}
	return math.Abs(trackY-rec.lastCollectibleSpawnY) >= o.rules.MinSafeZone
}

// CanPlaceCollectible 收集物放置判定：
// now >= blockedUntil 且与上一个障碍物的垂直距离 >= minSafeZone
func (o *LaneOccupancy) CanPlaceCollectible(lane int, now, trackY float64) bool {
	if lane < 0 || lane >= len(o.lanes) {
		return false
	}
	rec := &o.lanes[lane]
	if now < rec.blockedUntil {
		return false
	}
	return math.Abs(trackY-rec.lastPlanetSpawnY) >= o.rules.MinSafeZone
}

// ObstacleEligible 返回可以放置障碍物的车道（升序）
func (o *LaneOccupancy) ObstacleEligible(now, trackY float64) []int {
	eligible := make([]int, 0, len(o.lanes))
	for i := range o.lanes {
		if o.CanPlaceObstacle(i, now, trackY) {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// CollectibleEligible 返回可以放置收集物的车道（升序）
func (o *LaneOccupancy) CollectibleEligible(now, trackY float64) []int {
	eligible := make([]int, 0, len(o.lanes))
	for i := range o.lanes {
		if o.CanPlaceCollectible(i, now, trackY) {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// RecordObstacle 记录障碍物放置
func (o *LaneOccupancy) RecordObstacle(lane int, now, trackY float64) {
	if lane < 0 || lane >= len(o.lanes) {
		return
	}
	o.lanes[lane].lastPlanetSpawnTime = now
	o.lanes[lane].lastPlanetSpawnY = trackY
}

// RecordCollectible 记录收集物放置，车道阻塞到 now + cooldown
func (o *LaneOccupancy) RecordCollectible(lane int, now, trackY, cooldown float64) {
	if lane < 0 || lane >= len(o.lanes) {
		return
	}
	o.lanes[lane].blockedUntil = now + cooldown
	o.lanes[lane].lastCollectibleSpawnY = trackY
}

// LaneSnapshot 单条车道占用状态的只读副本
// 未使用过的字段为 nil
type LaneSnapshot struct {
	Lane                  int      `json:"lane"`
	BlockedUntil          *float64 `json:"blockedUntil,omitempty"`
	LastPlanetSpawnTime   *float64 `json:"lastPlanetSpawnTime,omitempty"`
	LastPlanetSpawnY      *float64 `json:"lastPlanetSpawnY,omitempty"`
	LastCollectibleSpawnY *float64 `json:"lastCollectibleSpawnY,omitempty"`
}

// Snapshot 返回所有车道状态的副本
func (o *LaneOccupancy) Snapshot() []LaneSnapshot {
	out := make([]LaneSnapshot, len(o.lanes))
	for i, rec := range o.lanes {
		out[i] = LaneSnapshot{
			Lane:                  i,
			BlockedUntil:          finiteOrNil(rec.blockedUntil),
			LastPlanetSpawnTime:   finiteOrNil(rec.lastPlanetSpawnTime),
			LastPlanetSpawnY:      finiteOrNil(rec.lastPlanetSpawnY),
			LastCollectibleSpawnY: finiteOrNil(rec.lastCollectibleSpawnY),
		}
	}
	return out
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
