package game

import (
	"fmt"
	"log"
	"sort"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// RunResult 一局跑酷结束时的成绩
type RunResult struct {
	LevelID  string  // 关卡 ID，如 "1-1"
	Stars    [3]bool // 三颗星各自是否被拾取
	Coins    int     // 拾取的金币数
	Distance float64 // 滚动距离
	Complete bool    // 碎片任务是否完成
}

// LevelRecord 单个关卡的最佳记录
type LevelRecord struct {
	Stars        [3]bool `yaml:"stars"`        // 历史上拾取过的星星
	BestCoins    int     `yaml:"bestCoins"`    // 最多金币
	BestDistance float64 `yaml:"bestDistance"` // 最远距离
	Completed    bool    `yaml:"completed"`    // 是否完成过碎片任务
	Runs         int     `yaml:"runs"`         // 游玩次数
}

// StarCount 返回已获得的星星数量
func (r LevelRecord) StarCount() int {
	n := 0
	for _, s := range r.Stars {
		if s {
			n++
		}
	}
	return n
}

// starRecordFile 持久化格式
type starRecordFile struct {
	Levels map[string]LevelRecord `yaml:"levels"`
}

// StarRecordManager 关卡星星记录管理器
// 负责最佳成绩的加载、合并和保存
type StarRecordManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	levels       map[string]LevelRecord
}

// 存储路径常量
const (
	recordsObject   = "records"
	recordsProperty = "stars"
)

// NewStarRecordManager 创建星星记录管理器
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存记录）
//
// 返回：
//   - *StarRecordManager: 记录管理器实例
//   - error: 保留给调用方检查，加载失败不会返回错误（使用空记录）
func NewStarRecordManager(gdataManager *gdata.Manager) (*StarRecordManager, error) {
	rm := &StarRecordManager{
		gdataManager: gdataManager,
		levels:       make(map[string]LevelRecord),
	}

	if err := rm.Load(); err != nil {
		log.Printf("[StarRecordManager] Warning: Failed to load records: %v (starting empty)", err)
	}

	return rm, nil
}

// Load 从 gdata 加载记录
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误，此时记录被清空
func (rm *StarRecordManager) Load() error {
	rm.levels = make(map[string]LevelRecord)

	if rm.gdataManager == nil {
		return nil
	}
	if !rm.gdataManager.ObjectPropExists(recordsObject, recordsProperty) {
		return nil
	}

	data, err := rm.gdataManager.LoadObjectProp(recordsObject, recordsProperty)
	if err != nil {
		return fmt.Errorf("failed to load star records: %w", err)
	}

	var file starRecordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal star records: %w", err)
	}
	for id, rec := range file.Levels {
		rm.levels[id] = rec
	}

	log.Printf("[StarRecordManager] Loaded records for %d levels", len(rm.levels))
	return nil
}

// Save 保存记录到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (rm *StarRecordManager) Save() error {
	if rm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(starRecordFile{Levels: rm.levels})
	if err != nil {
		return fmt.Errorf("failed to marshal star records: %w", err)
	}

	if err := rm.gdataManager.SaveObjectProp(recordsObject, recordsProperty, data); err != nil {
		return fmt.Errorf("failed to save star records: %w", err)
	}

	log.Printf("[StarRecordManager] Records saved (%d levels)", len(rm.levels))
	return nil
}

// Record 把一局成绩合并进关卡记录
// 注意：仅修改内存中的记录，需调用 Save() 方法持久化
//
// 返回：
//   - bool: 记录是否有提升（新星星、更多金币、更远距离或首次完成任务）
func (rm *StarRecordManager) Record(result RunResult) bool {
	if result.LevelID == "" {
		return false
	}

	rec := rm.levels[result.LevelID]
	improved := false

	for i, got := range result.Stars {
		if got && !rec.Stars[i] {
			rec.Stars[i] = true
			improved = true
		}
	}
	if result.Coins > rec.BestCoins {
		rec.BestCoins = result.Coins
		improved = true
	}
	if result.Distance > rec.BestDistance {
		rec.BestDistance = result.Distance
		improved = true
	}
	if result.Complete && !rec.Completed {
		rec.Completed = true
		improved = true
	}
	rec.Runs++

	rm.levels[result.LevelID] = rec
	if improved {
		log.Printf("[StarRecordManager] New best for %s: %d stars, %d coins, %.0f distance",
			result.LevelID, rec.StarCount(), rec.BestCoins, rec.BestDistance)
	}
	return improved
}

// Get 返回关卡记录
func (rm *StarRecordManager) Get(levelID string) (LevelRecord, bool) {
	rec, ok := rm.levels[levelID]
	return rec, ok
}

// TotalStars 返回所有关卡获得的星星总数
func (rm *StarRecordManager) TotalStars() int {
	total := 0
	for _, rec := range rm.levels {
		total += rec.StarCount()
	}
	return total
}

// LevelIDs 返回有记录的关卡 ID（升序）
func (rm *StarRecordManager) LevelIDs() []string {
	ids := make([]string, 0, len(rm.levels))
	for id := range rm.levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
