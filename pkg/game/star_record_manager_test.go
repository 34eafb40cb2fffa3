package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// TestStarRecordMerge 测试成绩合并只保留最佳值
func TestStarRecordMerge(t *testing.T) {
	rm, err := NewStarRecordManager(nil)
	if err != nil {
		t.Fatalf("NewStarRecordManager() error: %v", err)
	}

	tests := []struct {
		name     string
		result   RunResult
		improved bool
		stars    int
		coins    int
	}{
		{"第一局", RunResult{LevelID: "1-1", Stars: [3]bool{true, false, false}, Coins: 40, Distance: 3000}, true, 1, 40},
		{"更差的一局", RunResult{LevelID: "1-1", Stars: [3]bool{true, false, false}, Coins: 10, Distance: 100}, false, 1, 40},
		{"新星星", RunResult{LevelID: "1-1", Stars: [3]bool{false, false, true}, Coins: 5}, true, 2, 40},
		{"更多金币", RunResult{LevelID: "1-1", Coins: 90}, true, 2, 90},
		{"完成任务", RunResult{LevelID: "1-1", Complete: true}, true, 2, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rm.Record(tt.result); got != tt.improved {
				t.Errorf("Record() improved = %v, want %v", got, tt.improved)
			}
			rec, ok := rm.Get("1-1")
			if !ok {
				t.Fatal("Expected record for 1-1")
			}
			if rec.StarCount() != tt.stars || rec.BestCoins != tt.coins {
				t.Errorf("Got %d stars / %d coins, want %d / %d", rec.StarCount(), rec.BestCoins, tt.stars, tt.coins)
			}
		})
	}

	rec, _ := rm.Get("1-1")
	if rec.Runs != 5 || rec.BestDistance != 3000 || !rec.Completed {
		t.Errorf("Unexpected final record: %+v", rec)
	}

	if rm.Record(RunResult{}) {
		t.Error("Record without level ID should be ignored")
	}
}

// TestStarRecordTotals 测试跨关卡统计
func TestStarRecordTotals(t *testing.T) {
	rm, _ := NewStarRecordManager(nil)
	rm.Record(RunResult{LevelID: "1-2", Stars: [3]bool{true, true, false}})
	rm.Record(RunResult{LevelID: "1-1", Stars: [3]bool{true, true, true}})

	if got := rm.TotalStars(); got != 5 {
		t.Errorf("TotalStars() = %d, want 5", got)
	}
	ids := rm.LevelIDs()
	if len(ids) != 2 || ids[0] != "1-1" || ids[1] != "1-2" {
		t.Errorf("LevelIDs() = %v, want [1-1 1-2]", ids)
	}
	if err := rm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
}

// TestStarRecordPersistence 测试记录通过 gdata 保存和重新加载
func TestStarRecordPersistence(t *testing.T) {
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	defer os.Setenv("HOME", originalHome)

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: "test_star_records",
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}

	rm, _ := NewStarRecordManager(gdataManager)
	rm.Record(RunResult{LevelID: "1-2", Stars: [3]bool{true, false, true}, Coins: 33, Distance: 4200.5})
	if err := rm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded, _ := NewStarRecordManager(gdataManager)
	rec, ok := reloaded.Get("1-2")
	if !ok {
		t.Fatal("Expected record to survive reload")
	}
	if rec.Stars != [3]bool{true, false, true} || rec.BestCoins != 33 || rec.BestDistance != 4200.5 || rec.Runs != 1 {
		t.Errorf("Unexpected reloaded record: %+v", rec)
	}
}
