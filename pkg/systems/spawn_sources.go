package systems

import (
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/decker502/cosmorun/pkg/config"
)

// SpeedSource 提供当前世界滚动速度（像素/秒）
// ok 为 false 表示暂时不可用，调度器使用上一次的值
type SpeedSource interface {
	CurrentWorldSpeed() (speed float64, ok bool)
}

// EffectSource 提供道具效果状态
type EffectSource interface {
	IsTimeFreezeActive() bool
	IsSpeedBoostActive() bool
	CanSpawnNow() bool
}

// ProgressSource 提供当前关卡任务的收集进度 [0,1]
type ProgressSource interface {
	FragmentCollectionProgress() (progress float64, ok bool)
}

// RequirementSource 提供当前关卡的碎片需求
type RequirementSource interface {
	ActiveLevelFragmentRequirements() []config.FragmentRequirement
}

// SpawnListener 接收生成事件
type SpawnListener interface {
	OnSpawnEvent(ev SpawnEvent)
}

// SpawnListenerFunc 函数适配器
type SpawnListenerFunc func(ev SpawnEvent)

// OnSpawnEvent 实现 SpawnListener
func (f SpawnListenerFunc) OnSpawnEvent(ev SpawnEvent) { f(ev) }

// SpawnEventKind 生成事件类型
type SpawnEventKind int

const (
	EventObstacle     SpawnEventKind = iota // 障碍物
	EventCoin                               // 金币
	EventFragment                           // 任务碎片
	EventStar                               // 星星
	EventStarMissed                         // 星星放置失败（重试耗尽）
	EventBackpressure                       // 无可用车道
)

var eventKindNames = [...]string{
	EventObstacle:     "obstacle",
	EventCoin:         "coin",
	EventFragment:     "fragment",
	EventStar:         "star",
	EventStarMissed:   "star_missed",
	EventBackpressure: "backpressure",
}

// String 返回事件类型名称
func (k SpawnEventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// MarshalText 使事件类型在 JSON 中以名称出现
func (k SpawnEventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsPlacement 是否为实际放置了实体的事件
func (k SpawnEventKind) IsPlacement() bool {
	return k <= EventStar
}

// SpawnEvent 一次生成或诊断事件
//
// X 为车道的世界坐标（相对中间车道），Y 为生成时的屏幕坐标。
// Speed 始终是生成时的世界速度；FollowWorldSpeed 指示实体之后是否持续跟随世界速度。
type SpawnEvent struct {
	Kind             SpawnEventKind `json:"kind"`
	Time             float64        `json:"time"`
	Lane             int            `json:"lane"`
	X                float64        `json:"x"`
	Y                float64        `json:"y"`
	TrackY           float64        `json:"trackY"`
	Prototype        string         `json:"prototype,omitempty"`
	Speed            float64        `json:"speed"`
	FollowWorldSpeed bool           `json:"followWorldSpeed"`
	Double           bool           `json:"double,omitempty"`
	PatternID        string         `json:"patternId,omitempty"`
	PointIndex       int            `json:"pointIndex,omitempty"`
	FragmentType     string         `json:"fragmentType,omitempty"`
	Variant          string         `json:"variant,omitempty"`
	StarIndex        int            `json:"starIndex,omitempty"`
	Attempts         int            `json:"attempts,omitempty"`
	Loop             string         `json:"loop,omitempty"` // 产生诊断事件的循环
}

// SpawnDeps 调度器的外部协作者
// 所有字段都可以为 nil：缺失的协作者使用中性默认值
type SpawnDeps struct {
	Speed     SpeedSource
	Effects   EffectSource
	Progress  ProgressSource
	Listeners []SpawnListener
	Rand      *rand.Rand // nil 时使用时间种子
}

// sourceCache 包装协作者查询，暂时不可用时返回上一次的值或中性默认值
type sourceCache struct {
	speed    SpeedSource
	effects  EffectSource
	progress ProgressSource

	lastSpeed    float64
	lastProgress float64
}

func newSourceCache(deps SpawnDeps) *sourceCache {
	return &sourceCache{
		speed:    deps.Speed,
		effects:  deps.Effects,
		progress: deps.Progress,
	}
}

// worldSpeed 当前世界速度，不可用时为上一次的值（初始为 0）
func (c *sourceCache) worldSpeed() float64 {
	if c.speed == nil {
		return c.lastSpeed
	}
	if v, ok := c.speed.CurrentWorldSpeed(); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		c.lastSpeed = math.Max(v, 0)
	}
	return c.lastSpeed
}

// missionProgress 当前任务进度，限制在 [0,1]
func (c *sourceCache) missionProgress() float64 {
	if c.progress == nil {
		return c.lastProgress
	}
	if v, ok := c.progress.FragmentCollectionProgress(); ok && !math.IsNaN(v) {
		c.lastProgress = math.Min(math.Max(v, 0), 1)
	}
	return c.lastProgress
}

func (c *sourceCache) timeFreeze() bool {
	return c.effects != nil && c.effects.IsTimeFreezeActive()
}

func (c *sourceCache) canSpawn() bool {
	return c.effects == nil || c.effects.CanSpawnNow()
}

// eventBus 按注册顺序分发事件，监听器的 panic 不会传出调度循环
type eventBus struct {
	listeners []SpawnListener
}

func (b *eventBus) add(l SpawnListener) {
	if l != nil {
		b.listeners = append(b.listeners, l)
	}
}

func (b *eventBus) publish(ev SpawnEvent) {
	for _, l := range b.listeners {
		b.deliver(l, ev)
	}
}

func (b *eventBus) deliver(l SpawnListener, ev SpawnEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[GameplaySpawnSystem] WARNING: listener panicked on %s event: %v", ev.Kind, r)
		}
	}()
	l.OnSpawnEvent(ev)
}

// newRand 返回注入的随机源，nil 时创建时间种子随机源
func newRand(r *rand.Rand) *rand.Rand {
	if r != nil {
		return r
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
