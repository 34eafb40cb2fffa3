package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 按关卡 ID 创建跑酷场景
// 由 app 注入，避免 game 包依赖 scenes 包
type SceneFactory func(levelID string) Scene

// SceneManager 管理当前活动场景
type SceneManager struct {
	currentScene Scene
	sceneFactory SceneFactory
	menuFactory  func() Scene
}

// NewSceneManager 创建场景管理器，初始没有活动场景
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置关卡场景工厂
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// SetMenuFactory 设置关卡选择场景工厂
func (sm *SceneManager) SetMenuFactory(factory func() Scene) {
	sm.menuFactory = factory
}

// SwitchTo 切换活动场景
// 被切走的场景如果实现了 Saveable，会先保存
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene != nil && sm.currentScene != scene {
		if s, ok := sm.currentScene.(Saveable); ok && !s.SaveOnExit() {
			log.Printf("[SceneManager] Warning: scene failed to save on switch")
		}
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动场景，没有时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// LoadLevel 创建并切换到指定关卡
// 返回 false 表示工厂未设置或创建失败，当前场景保持不变
func (sm *SceneManager) LoadLevel(levelID string) bool {
	log.Printf("[SceneManager] Loading level: %s", levelID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] ERROR: SceneFactory not set")
		return false
	}

	newScene := sm.sceneFactory(levelID)
	if newScene == nil {
		log.Printf("[SceneManager] ERROR: cannot create scene for level %s", levelID)
		return false
	}
	sm.SwitchTo(newScene)
	return true
}

// ShowMenu 切换到关卡选择场景
func (sm *SceneManager) ShowMenu() bool {
	if sm.menuFactory == nil {
		log.Printf("[SceneManager] ERROR: menu factory not set")
		return false
	}
	sm.SwitchTo(sm.menuFactory())
	return true
}

// Update 更新当前场景
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
}

// Draw 绘制当前场景
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}
