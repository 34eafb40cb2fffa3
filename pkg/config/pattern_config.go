package config

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// PatternCatalogConfig 收集物图案目录（data/patterns.yaml）
type PatternCatalogConfig struct {
	Patterns []PatternConfig `yaml:"patterns"`
}

// PatternConfig 单个收集物图案
type PatternConfig struct {
	ID                       string         `yaml:"id"`                       // 图案ID
	Weight                   float64        `yaml:"weight"`                   // 选择权重
	FragmentSubstituteChance float64        `yaml:"fragmentSubstituteChance"` // 每个点被替换为碎片的基础概率
	RandomDelay              float64        `yaml:"randomDelay"`              // 图案结束后的等待时间（秒）
	Points                   []PatternPoint `yaml:"points"`                   // 有序的点序列
}

// PatternPoint 图案中的一个点
//
// Offset 是相对基准车道的偏移（取整后使用），Step 是相对上一个点的垂直步数。
// YAML 中既可以写成 {offset: 1, step: -1}，也可以写成 [1, -1]。
type PatternPoint struct {
	Offset float64 `yaml:"offset"`
	Step   float64 `yaml:"step"`
}

// UnmarshalYAML 支持序列简写 [offset, step]
func (p *PatternPoint) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var pair []float64
		if err := node.Decode(&pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("line %d: pattern point must be [offset, step], got %d values", node.Line, len(pair))
		}
		p.Offset, p.Step = pair[0], pair[1]
		return nil
	}

	// 避免递归调用 UnmarshalYAML
	type plain PatternPoint
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*p = PatternPoint(v)
	return nil
}

// LoadPatternCatalog 从文件系统加载图案目录
func LoadPatternCatalog(fsys fs.FS, path string) (*PatternCatalogConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern catalog %s: %w", path, err)
	}

	catalog, err := ParsePatternCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// ParsePatternCatalog 解析图案目录 YAML
//
// 空目录可以成功解析，调度器启动时会拒绝空目录。
func ParsePatternCatalog(data []byte) (*PatternCatalogConfig, error) {
	var catalog PatternCatalogConfig
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse pattern catalog YAML: %w", err)
	}

	if err := validatePatternCatalog(&catalog); err != nil {
		return nil, fmt.Errorf("invalid pattern catalog: %w", err)
	}
	return &catalog, nil
}

// TotalWeight 返回所有图案的权重之和
func (c *PatternCatalogConfig) TotalWeight() float64 {
	total := 0.0
	for _, p := range c.Patterns {
		total += p.Weight
	}
	return total
}

// validatePatternCatalog 验证图案目录
func validatePatternCatalog(catalog *PatternCatalogConfig) error {
	seen := make(map[string]bool, len(catalog.Patterns))
	for i, p := range catalog.Patterns {
		if p.ID == "" {
			return fmt.Errorf("pattern %d: id is required", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("pattern %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true

		if p.Weight < 0 {
			return fmt.Errorf("pattern %s: weight cannot be negative, got %.2f", p.ID, p.Weight)
		}
		if err := checkChance("pattern "+p.ID+" fragmentSubstituteChance", p.FragmentSubstituteChance); err != nil {
			return err
		}
		if p.RandomDelay < 0 {
			return fmt.Errorf("pattern %s: randomDelay cannot be negative, got %.2f", p.ID, p.RandomDelay)
		}
		if len(p.Points) == 0 {
			return fmt.Errorf("pattern %s: at least one point is required", p.ID)
		}
	}
	return nil
}
