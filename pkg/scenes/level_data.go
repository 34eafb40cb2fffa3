package scenes

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/decker502/cosmorun/pkg/config"
)

// 数据文件路径（相对数据文件系统根目录）
const (
	SpawnerConfigPath  = "data/spawner.yaml"
	PatternCatalogPath = "data/patterns.yaml"
	LevelsDir          = "data/levels"
)

// LevelData 客户端启动时加载的全部配置
type LevelData struct {
	Spawner  *config.SpawnerConfig
	Patterns *config.PatternCatalogConfig
	Levels   []*config.LevelConfig // 按 ID 排序
}

// LoadLevelData 从数据文件系统加载生成配置、图案目录和关卡列表
func LoadLevelData(fsys fs.FS) (*LevelData, error) {
	spawner, err := config.LoadSpawnerConfig(fsys, SpawnerConfigPath)
	if err != nil {
		return nil, err
	}
	patterns, err := config.LoadPatternCatalog(fsys, PatternCatalogPath)
	if err != nil {
		return nil, err
	}
	levels, err := config.LoadLevelConfigs(fsys, LevelsDir)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels found in %s", LevelsDir)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ID < levels[j].ID })

	return &LevelData{Spawner: spawner, Patterns: patterns, Levels: levels}, nil
}

// Level 按 ID 查找关卡
func (d *LevelData) Level(id string) (*config.LevelConfig, bool) {
	for _, l := range d.Levels {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}
