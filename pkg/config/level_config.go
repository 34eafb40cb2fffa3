package config

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// 道具类型
const (
	BoosterTimeFreeze = "timeFreeze"
	BoosterSpeedBoost = "speedBoost"
)

// LevelConfig 关卡配置数据结构
// 定义了关卡的车道布局、任务碎片需求和道具时间表
type LevelConfig struct {
	ID          string `yaml:"id"`          // 关卡ID，如 "1-1"
	Name        string `yaml:"name"`        // 关卡名称
	Description string `yaml:"description"` // 关卡描述（可选）

	LaneCount  int     `yaml:"laneCount"`  // 车道数量，0 表示使用 spawner.yaml 的默认值
	LaneOffset float64 `yaml:"laneOffset"` // 车道间距，0 表示使用默认值

	FragmentRequirements []FragmentRequirement `yaml:"fragmentRequirements"` // 任务碎片需求
	Boosters             []BoosterSchedule     `yaml:"boosters"`             // 道具时间表（可选）
	IntroHold            float64               `yaml:"introHold"`            // 开场禁止生成障碍物的时长（秒）
}

// FragmentRequirement 任务碎片需求
// Count <= 0 的需求视为已满足，不参与碎片替换
type FragmentRequirement struct {
	Type    string `yaml:"type"`    // 碎片类型，如 "crystal"
	Variant string `yaml:"variant"` // 颜色变体，如 "blue"
	Count   int    `yaml:"count"`   // 需要收集的数量
}

// Key 返回 "type/variant" 形式的唯一键
func (r FragmentRequirement) Key() string {
	if r.Variant == "" {
		return r.Type
	}
	return r.Type + "/" + r.Variant
}

// BoosterSchedule 道具时间表条目
type BoosterSchedule struct {
	Type     string  `yaml:"type"`     // timeFreeze | speedBoost
	At       float64 `yaml:"at"`       // 相对关卡开始的触发时间（秒）
	Duration float64 `yaml:"duration"` // 持续时间（秒）
}

// LoadLevelConfig 从文件系统加载关卡配置
// 参数：
//
//	fsys - 关卡文件所在的文件系统
//	filepath - 关卡配置文件的路径
//
// 返回：
//
//	*LevelConfig - 解析后的关卡配置对象
//	error - 如果文件读取或解析失败，返回错误信息
func LoadLevelConfig(fsys fs.FS, filepath string) (*LevelConfig, error) {
	// 读取文件内容
	data, err := fs.ReadFile(fsys, filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read level config file %s: %w", filepath, err)
	}

	levelConfig, err := ParseLevelConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return levelConfig, nil
}

// ParseLevelConfig 解析关卡 YAML 数据
func ParseLevelConfig(data []byte) (*LevelConfig, error) {
	var levelConfig LevelConfig
	if err := yaml.Unmarshal(data, &levelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse level config YAML: %w", err)
	}

	// 验证必填字段
	if err := validateLevelConfig(&levelConfig); err != nil {
		return nil, fmt.Errorf("invalid level config: %w", err)
	}

	return &levelConfig, nil
}

// LoadLevelConfigs 加载目录下的全部关卡，按 ID 排序
func LoadLevelConfigs(fsys fs.FS, dir string) ([]*LevelConfig, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list levels in %s: %w", dir, err)
	}

	levels := make([]*LevelConfig, 0, len(matches))
	for _, m := range matches {
		lvl, err := LoadLevelConfig(fsys, m)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].ID < levels[j].ID })
	return levels, nil
}

// ResolveLanes 返回关卡实际使用的车道数量和间距
// 关卡未配置时使用 spawner.yaml 中的默认值
func (l *LevelConfig) ResolveLanes(defaults LaneDefaults) (int, float64) {
	count, offset := l.LaneCount, l.LaneOffset
	if count == 0 {
		count = defaults.Count
	}
	if offset == 0 {
		offset = defaults.Offset
	}
	return count, offset
}

// ActiveRequirements 返回 Count > 0 的需求
func (l *LevelConfig) ActiveRequirements() []FragmentRequirement {
	active := make([]FragmentRequirement, 0, len(l.FragmentRequirements))
	for _, r := range l.FragmentRequirements {
		if r.Count > 0 {
			active = append(active, r)
		}
	}
	return active
}

// validateLevelConfig 验证关卡配置的完整性和合法性
func validateLevelConfig(config *LevelConfig) error {
	// 验证关卡ID
	if config.ID == "" {
		return fmt.Errorf("level ID is required")
	}

	// 验证关卡名称
	if config.Name == "" {
		return fmt.Errorf("level name is required")
	}

	if config.LaneCount < 0 {
		return fmt.Errorf("laneCount cannot be negative, got %d", config.LaneCount)
	}
	if config.LaneOffset < 0 {
		return fmt.Errorf("laneOffset cannot be negative, got %.2f", config.LaneOffset)
	}
	if config.IntroHold < 0 {
		return fmt.Errorf("introHold cannot be negative, got %.2f", config.IntroHold)
	}

	seen := make(map[string]bool)
	for i, req := range config.FragmentRequirements {
		if req.Type == "" {
			return fmt.Errorf("fragmentRequirements[%d]: type is required", i)
		}
		if seen[req.Key()] {
			return fmt.Errorf("fragmentRequirements[%d]: duplicate requirement %s", i, req.Key())
		}
		seen[req.Key()] = true
	}

	// 验证道具类型（必须是合法值）
	validBoosters := map[string]bool{
		BoosterTimeFreeze: true,
		BoosterSpeedBoost: true,
	}
	for i, b := range config.Boosters {
		if !validBoosters[b.Type] {
			return fmt.Errorf("boosters[%d]: type must be one of: timeFreeze, speedBoost, got %q", i, b.Type)
		}
		if b.At < 0 || b.Duration <= 0 {
			return fmt.Errorf("boosters[%d]: at must be >= 0 and duration > 0", i)
		}
	}

	return nil
}
