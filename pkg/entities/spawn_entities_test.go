package entities

import (
	"testing"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/ecs"
)

func testSpawnSpec() SpawnSpec {
	return SpawnSpec{
		X:                520,
		Y:                -40,
		Lane:             2,
		Speed:            260,
		FollowWorldSpeed: true,
		SpawnTime:        3.5,
		DespawnY:         860,
		MaxLifetime:      20,
	}
}

func TestNewObstacleEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	id := NewObstacleEntity(em, testSpawnSpec(), "planet_gas")

	obstacle, ok := ecs.GetComponent[*components.ObstacleComponent](em, id)
	if !ok {
		t.Fatal("Obstacle entity should have ObstacleComponent")
	}
	if obstacle.Prototype != "planet_gas" || obstacle.SpawnTime != 3.5 {
		t.Errorf("Unexpected obstacle component: %+v", obstacle)
	}

	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
	if !ok || pos.X != 520 || pos.Y != -40 {
		t.Errorf("Expected position (520, -40), got %+v", pos)
	}

	lane, ok := ecs.GetComponent[*components.LaneComponent](em, id)
	if !ok || lane.Index != 2 {
		t.Errorf("Expected lane 2, got %+v", lane)
	}

	scroll, ok := ecs.GetComponent[*components.ScrollComponent](em, id)
	if !ok || scroll.StampedSpeed != 260 || !scroll.FollowWorldSpeed {
		t.Errorf("Unexpected scroll component: %+v", scroll)
	}

	lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if !ok || lifetime.DespawnBelowY != 860 || lifetime.MaxLifetime != 20 {
		t.Errorf("Unexpected lifetime component: %+v", lifetime)
	}

	if ecs.HasComponent[*components.CollectibleComponent](em, id) {
		t.Error("Obstacle should not be collectible")
	}
}

func TestNewCollectibleEntity(t *testing.T) {
	tests := []struct {
		name string
		comp components.CollectibleComponent
	}{
		{"金币", components.CollectibleComponent{Kind: components.CollectibleCoin, Prototype: "coin", PatternID: "line"}},
		{"碎片", components.CollectibleComponent{Kind: components.CollectibleFragment, Prototype: "fragment", FragmentType: "crystal", Variant: "blue"}},
		{"星星", components.CollectibleComponent{Kind: components.CollectibleStar, Prototype: "star", StarIndex: 2, Collected: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em := ecs.NewEntityManager()
			id := NewCollectibleEntity(em, testSpawnSpec(), tt.comp)

			c, ok := ecs.GetComponent[*components.CollectibleComponent](em, id)
			if !ok {
				t.Fatal("Collectible entity should have CollectibleComponent")
			}
			if c.Kind != tt.comp.Kind || c.Prototype != tt.comp.Prototype {
				t.Errorf("Expected %s/%s, got %s/%s", tt.comp.Kind, tt.comp.Prototype, c.Kind, c.Prototype)
			}
			if c.SpawnTime != 3.5 || c.Collected {
				t.Errorf("Expected fresh collectible stamped at 3.5, got %+v", c)
			}
			if c.FragmentType != tt.comp.FragmentType || c.StarIndex != tt.comp.StarIndex {
				t.Errorf("Collectible data not preserved: %+v", c)
			}
			if !ecs.HasComponent[*components.ScrollComponent](em, id) || !ecs.HasComponent[*components.LifetimeComponent](em, id) {
				t.Error("Collectible should scroll and expire")
			}
		})
	}
}
