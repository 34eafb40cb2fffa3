package systems

import (
	"errors"
	"math"
	"testing"
)

// TestNewLaneRegistry 测试车道登记表的参数校验
func TestNewLaneRegistry(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		offset  float64
		wantErr bool
	}{
		{"单车道", 1, 100, false},
		{"三车道", 3, 120, false},
		{"零车道", 0, 120, true},
		{"负车道数", -2, 120, true},
		{"零间距", 3, 0, true},
		{"负间距", 3, -10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewLaneRegistry(tt.count, tt.offset)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLanes) {
					t.Fatalf("Expected ErrInvalidLanes, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if r.Count() != tt.count || r.Offset() != tt.offset {
				t.Errorf("Expected %d lanes at %.0f, got %d at %.0f", tt.count, tt.offset, r.Count(), r.Offset())
			}
		})
	}
}

// TestLaneRegistryWorldX 测试车道布局对称
func TestLaneRegistryWorldX(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		offset float64
		want   []float64
	}{
		{"单车道居中", 1, 100, []float64{0}},
		{"三车道", 3, 120, []float64{-120, 0, 120}},
		{"四车道", 4, 100, []float64{-150, -50, 50, 150}},
		{"五车道", 5, 88, []float64{-176, -88, 0, 88, 176}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewLaneRegistry(tt.count, tt.offset)
			if err != nil {
				t.Fatalf("NewLaneRegistry failed: %v", err)
			}
			sum := 0.0
			for i, want := range tt.want {
				got := r.WorldX(i)
				if math.Abs(got-want) > 1e-9 {
					t.Errorf("Lane %d: expected X=%.1f, got %.1f", i, want, got)
				}
				sum += got
			}
			if math.Abs(sum) > 1e-9 {
				t.Errorf("Expected symmetric layout, positions sum to %.3f", sum)
			}
		})
	}
}

// TestLaneRegistryClamp 测试车道索引限制
func TestLaneRegistryClamp(t *testing.T) {
	r, _ := NewLaneRegistry(3, 120)

	tests := []struct {
		in, want int
	}{
		{-3, 0}, {-1, 0}, {0, 0}, {1, 1}, {2, 2}, {3, 2}, {10, 2},
	}
	for _, tt := range tests {
		if got := r.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}

	if r.Contains(-1) || r.Contains(3) || !r.Contains(2) {
		t.Error("Contains returned wrong result at boundaries")
	}
	if r.CenterLane() != 1 {
		t.Errorf("Expected center lane 1, got %d", r.CenterLane())
	}

	even, _ := NewLaneRegistry(4, 100)
	if even.CenterLane() != 1 {
		t.Errorf("Expected center lane 1 for 4 lanes, got %d", even.CenterLane())
	}
}

// TestLaneOccupancyFreshLanes 未使用过的车道任何放置都合法
func TestLaneOccupancyFreshLanes(t *testing.T) {
	o := NewLaneOccupancy(3, OccupancyRules{PlanetLaneCooldown: 1.5, MinSafeZone: 90})

	for lane := 0; lane < 3; lane++ {
		if !o.CanPlaceObstacle(lane, 0, -40) {
			t.Errorf("Lane %d: expected obstacle placement allowed", lane)
		}
		if !o.CanPlaceCollectible(lane, 0, -40) {
			t.Errorf("Lane %d: expected collectible placement allowed", lane)
		}
	}

	for _, snap := range o.Snapshot() {
		if snap.BlockedUntil != nil || snap.LastPlanetSpawnTime != nil ||
			snap.LastPlanetSpawnY != nil || snap.LastCollectibleSpawnY != nil {
			t.Errorf("Lane %d: expected nil fields for untouched lane, got %+v", snap.Lane, snap)
		}
	}
}

// TestLaneOccupancyObstacleRules 测试障碍物冷却和安全距离
func TestLaneOccupancyObstacleRules(t *testing.T) {
	o := NewLaneOccupancy(3, OccupancyRules{PlanetLaneCooldown: 1.5, MinSafeZone: 90})
	o.RecordObstacle(1, 10, -40)

	tests := []struct {
		name   string
		lane   int
		now    float64
		trackY float64
		want   bool
	}{
		{"冷却中", 1, 11.4, -500, false},
		{"冷却刚好结束", 1, 11.5, -500, true},
		{"其他车道不受影响", 0, 10, -40, true},
		{"越界车道", 3, 20, 0, false},
		{"负车道", -1, 20, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.CanPlaceObstacle(tt.lane, tt.now, tt.trackY); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	// 收集物需要与障碍物保持安全距离
	if o.CanPlaceCollectible(1, 10, -100) {
		t.Error("Expected collectible 60 units from obstacle to be rejected")
	}
	if !o.CanPlaceCollectible(1, 10, -130) {
		t.Error("Expected collectible exactly minSafeZone away to be allowed")
	}

	// 障碍物也需要与收集物保持安全距离
	o.RecordCollectible(2, 10, -200, 0.1)
	if o.CanPlaceObstacle(2, 12, -250) {
		t.Error("Expected obstacle 50 units from collectible to be rejected")
	}
	if !o.CanPlaceObstacle(2, 12, -300) {
		t.Error("Expected obstacle 100 units from collectible to be allowed")
	}
}

// TestLaneOccupancyCollectibleBlock 测试收集物的车道阻塞时间
func TestLaneOccupancyCollectibleBlock(t *testing.T) {
	o := NewLaneOccupancy(2, OccupancyRules{})
	o.RecordCollectible(0, 5, -40, 0.25)

	if o.CanPlaceCollectible(0, 5.2, -40) {
		t.Error("Expected lane blocked until 5.25")
	}
	if !o.CanPlaceCollectible(0, 5.25, -40) {
		t.Error("Expected lane free at 5.25")
	}

	eligible := o.CollectibleEligible(5.1, -40)
	if len(eligible) != 1 || eligible[0] != 1 {
		t.Errorf("Expected only lane 1 eligible, got %v", eligible)
	}

	snap := o.Snapshot()
	if snap[0].BlockedUntil == nil || *snap[0].BlockedUntil != 5.25 {
		t.Errorf("Expected blockedUntil 5.25 in snapshot, got %v", snap[0].BlockedUntil)
	}
	if snap[0].LastCollectibleSpawnY == nil || *snap[0].LastCollectibleSpawnY != -40 {
		t.Errorf("Expected lastCollectibleSpawnY -40 in snapshot, got %v", snap[0].LastCollectibleSpawnY)
	}

	// 修改快照不影响内部状态
	*snap[0].BlockedUntil = 100
	if !o.CanPlaceCollectible(0, 6, -40) {
		t.Error("Snapshot mutation leaked into occupancy state")
	}
}

// TestLaneOccupancyEligibleSorted 可用车道按升序返回
func TestLaneOccupancyEligibleSorted(t *testing.T) {
	o := NewLaneOccupancy(5, OccupancyRules{PlanetLaneCooldown: 2})
	o.RecordObstacle(1, 0, 0)
	o.RecordObstacle(3, 0, 0)

	got := o.ObstacleEligible(1, -100)
	want := []int{0, 2, 4}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}

	if o.LaneCount() != 5 {
		t.Errorf("Expected 5 lanes, got %d", o.LaneCount())
	}
}

// TestScrollTrack 测试赛道坐标换算
func TestScrollTrack(t *testing.T) {
	var track ScrollTrack
	track.Advance(240, 0.5)
	track.Advance(-10, 1)
	track.Advance(100, 0)

	if track.Distance() != 120 {
		t.Fatalf("Expected distance 120, got %.2f", track.Distance())
	}
	if got := track.TrackY(-40); got != -160 {
		t.Errorf("Expected trackY -160, got %.2f", got)
	}

	// 早放置的实体向下滚动后，赛道坐标不变
	y := track.TrackY(-40)
	track.Advance(240, 1)
	if got := track.ScreenY(y); got != 200 {
		t.Errorf("Expected screenY 200 after scrolling, got %.2f", got)
	}

	track.Reset()
	if track.Distance() != 0 {
		t.Errorf("Expected distance 0 after Reset, got %.2f", track.Distance())
	}
}
