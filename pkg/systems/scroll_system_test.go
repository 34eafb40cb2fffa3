package systems

import (
	"testing"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/ecs"
)

func TestScrollSystemUpdate(t *testing.T) {
	em := ecs.NewEntityManager()
	speed := &fakeSpeed{speed: 300, available: true}
	s := NewScrollSystem(em, speed)

	follow := em.CreateEntity()
	followPos := &components.PositionComponent{Y: -40}
	ecs.AddComponent(em, follow, followPos)
	ecs.AddComponent(em, follow, &components.ScrollComponent{StampedSpeed: 100, FollowWorldSpeed: true})

	stamped := em.CreateEntity()
	stampedPos := &components.PositionComponent{Y: -40}
	ecs.AddComponent(em, stamped, stampedPos)
	ecs.AddComponent(em, stamped, &components.ScrollComponent{StampedSpeed: 100})

	// 没有滚动组件的实体不移动
	static := em.CreateEntity()
	staticPos := &components.PositionComponent{Y: 10}
	ecs.AddComponent(em, static, staticPos)

	s.Update(0.5)
	if followPos.Y != 110 {
		t.Errorf("Expected follow entity at 110, got %.2f", followPos.Y)
	}
	if stampedPos.Y != 10 {
		t.Errorf("Expected stamped entity at 10, got %.2f", stampedPos.Y)
	}
	if staticPos.Y != 10 {
		t.Errorf("Expected static entity unchanged, got %.2f", staticPos.Y)
	}

	// 速度源不可用时沿用上一帧速度
	speed.available = false
	speed.speed = 9999
	s.Update(0.5)
	if followPos.Y != 260 {
		t.Errorf("Expected last known speed to be used, got %.2f", followPos.Y)
	}
}

func TestScrollSystemNilSpeed(t *testing.T) {
	em := ecs.NewEntityManager()
	s := NewScrollSystem(em, nil)

	id := em.CreateEntity()
	pos := &components.PositionComponent{Y: 0}
	ecs.AddComponent(em, id, pos)
	ecs.AddComponent(em, id, &components.ScrollComponent{FollowWorldSpeed: true})

	s.Update(1)
	if pos.Y != 0 {
		t.Errorf("Expected no movement without speed source, got %.2f", pos.Y)
	}
}
