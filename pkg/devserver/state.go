// Package devserver 提供调试用的 HTTP 接口
//
// 无头模拟在自己的 goroutine 中推进会话，每帧把状态快照发布到 StateStore；
// HTTP 处理器只读取快照，不直接访问会话。生成事件通过 EventHub 推送到 WebSocket 客户端。
package devserver

import (
	"sync"

	"github.com/decker502/cosmorun/pkg/modules"
	"github.com/decker502/cosmorun/pkg/systems"
)

// Snapshot 一局跑酷在某一帧的只读状态
type Snapshot struct {
	Level      string                        `json:"level"`
	Time       float64                       `json:"time"`
	Distance   float64                       `json:"distance"`
	WorldSpeed float64                       `json:"worldSpeed"`
	Running    bool                          `json:"running"`
	StarState  systems.StarState             `json:"starState"`
	StarFlags  [3]bool                       `json:"starFlags"`
	Stats      systems.SpawnStats            `json:"stats"`
	Lanes      []systems.LaneSnapshot        `json:"lanes"`
	Mission    []systems.RequirementProgress `json:"mission"`
	Coins      int                           `json:"coins"`
	Hits       int                           `json:"hits"`
}

// SnapshotOf 从会话生成快照（必须在推进会话的 goroutine 中调用）
func SnapshotOf(s *modules.RunSession) Snapshot {
	spawner := s.Spawner()
	speed, _ := s.Difficulty().CurrentWorldSpeed()

	snap := Snapshot{
		Level:      s.Level().ID,
		Time:       spawner.Now(),
		Distance:   spawner.Distance(),
		WorldSpeed: speed,
		Running:    spawner.IsRunning(),
		StarState:  spawner.StarState(),
		StarFlags:  spawner.StarFlags(),
		Stats:      spawner.Stats(),
		Lanes:      spawner.Lanes(),
		Mission:    s.Mission().Snapshot(),
	}
	if p, ok := s.Player().Player(); ok {
		snap.Coins = p.Coins
		snap.Hits = p.Hits
	}
	return snap
}

// StateStore 保存最近一次发布的快照，可被多个 goroutine 并发读取
type StateStore struct {
	mu   sync.RWMutex
	snap Snapshot
	ok   bool
}

// NewStateStore 创建空的快照存储
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Publish 发布新快照
func (st *StateStore) Publish(snap Snapshot) {
	st.mu.Lock()
	st.snap = snap
	st.ok = true
	st.mu.Unlock()
}

// Latest 返回最近的快照，尚未发布时返回 false
func (st *StateStore) Latest() (Snapshot, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap, st.ok
}
