package game

import (
	"log"

	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储使用的应用名
const AppName = "cosmorun"

// GameState 存储跨场景的全局状态
// 这是一个单例：持久化存储、设置、星星记录和最近一局的成绩
type GameState struct {
	CurrentLevel string     // 当前（或最近）游玩的关卡 ID
	LastResult   *RunResult // 最近一局成绩，尚未结束过任何一局时为 nil

	gdataManager    *gdata.Manager // 可为 nil（降级模式，仅内存）
	settingsManager *SettingsManager
	starRecords     *StarRecordManager
}

// 全局单例实例
var globalGameState *GameState

// GetGameState 返回全局 GameState 单例
// 首次调用时打开 gdata 存储；打开失败时以降级模式运行
func GetGameState() *GameState {
	if globalGameState == nil {
		manager, err := gdata.Open(gdata.Config{AppName: AppName})
		if err != nil {
			log.Printf("[GameState] Warning: gdata unavailable: %v (records and settings kept in memory)", err)
			manager = nil
		}
		globalGameState = NewGameState(manager)
	}
	return globalGameState
}

// NewGameState 用给定的存储创建状态（gdataManager 可为 nil，用于测试和工具）
func NewGameState(gdataManager *gdata.Manager) *GameState {
	gs := &GameState{gdataManager: gdataManager}
	gs.settingsManager, _ = NewSettingsManager(gdataManager)
	gs.starRecords, _ = NewStarRecordManager(gdataManager)
	gs.CurrentLevel = gs.settingsManager.GetSettings().LastLevel
	return gs
}

// GetGdataManager 返回 gdata 存储管理器，降级模式下为 nil
func (gs *GameState) GetGdataManager() *gdata.Manager {
	return gs.gdataManager
}

// GetSettingsManager 返回设置管理器
func (gs *GameState) GetSettingsManager() *SettingsManager {
	return gs.settingsManager
}

// GetStarRecords 返回星星记录管理器
func (gs *GameState) GetStarRecords() *StarRecordManager {
	return gs.starRecords
}

// SetCurrentLevel 记录当前关卡，并作为下次启动的默认关卡保存
func (gs *GameState) SetCurrentLevel(levelID string) {
	gs.CurrentLevel = levelID
	gs.settingsManager.SetLastLevel(levelID)
	if err := gs.settingsManager.Save(); err != nil {
		log.Printf("[GameState] Warning: failed to save settings: %v", err)
	}
}

// RecordResult 保存最近一局成绩
func (gs *GameState) RecordResult(result RunResult) {
	gs.LastResult = &result
}
