package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 时间倍率范围
const (
	MinTimeScale = 0.25
	MaxTimeScale = 4.0
)

// GameSettings 客户端设置
type GameSettings struct {
	// 显示设置
	Fullscreen      bool `yaml:"fullscreen"`      // 启动时是否全屏
	ShowLaneOverlay bool `yaml:"showLaneOverlay"` // 显示车道占用调试层

	// 游玩设置
	Autopilot bool    `yaml:"autopilot"` // 演示模式：自动驾驶
	TimeScale float64 `yaml:"timeScale"` // 模拟时间倍率

	LastLevel string `yaml:"lastLevel"` // 上次游玩的关卡
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		Fullscreen:      false,
		ShowLaneOverlay: false,
		Autopilot:       false,
		TimeScale:       1.0,
	}
}

// SettingsManager 设置管理器
// 负责设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "client"
)

// NewSettingsManager 创建设置管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例
//   - error: 保留给调用方检查，加载失败时使用默认设置而不返回错误
func NewSettingsManager(gdataManager *gdata.Manager) (*SettingsManager, error) {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm, nil
}

// Load 从 gdata 加载设置
//
// gdataManager 为 nil 或没有保存过设置时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.TimeScale = clampTimeScale(loaded.TimeScale)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// gdataManager 为 nil 时返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetFullscreen 设置全屏模式（仅修改内存，需调用 Save 持久化）
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetShowLaneOverlay 设置车道调试层开关
func (sm *SettingsManager) SetShowLaneOverlay(enabled bool) {
	sm.settings.ShowLaneOverlay = enabled
}

// SetAutopilot 设置自动驾驶开关
func (sm *SettingsManager) SetAutopilot(enabled bool) {
	sm.settings.Autopilot = enabled
}

// SetTimeScale 设置模拟时间倍率，限制在 [MinTimeScale, MaxTimeScale]
func (sm *SettingsManager) SetTimeScale(scale float64) {
	sm.settings.TimeScale = clampTimeScale(scale)
}

// SetLastLevel 记录上次游玩的关卡
func (sm *SettingsManager) SetLastLevel(levelID string) {
	sm.settings.LastLevel = levelID
}

// clampTimeScale 限制时间倍率，0 或负数视为 1
func clampTimeScale(scale float64) float64 {
	if scale <= 0 {
		return 1.0
	}
	if scale < MinTimeScale {
		return MinTimeScale
	}
	if scale > MaxTimeScale {
		return MaxTimeScale
	}
	return scale
}
