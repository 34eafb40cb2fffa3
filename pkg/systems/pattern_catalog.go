package systems

import (
	"log"
	"math/rand"

	"github.com/decker502/cosmorun/pkg/config"
)

// PatternCatalog 收集物图案目录
//
// 图案按权重累积和方式抽取：P(pattern) = weight / totalWeight。
// 权重为 0 的图案保留在目录中但永远不会被选中。
type PatternCatalog struct {
	patterns    []config.PatternConfig
	totalWeight float64
}

// NewPatternCatalog 从配置创建图案目录，cfg 为 nil 时返回空目录
func NewPatternCatalog(cfg *config.PatternCatalogConfig) *PatternCatalog {
	c := &PatternCatalog{}
	if cfg == nil {
		return c
	}
	c.patterns = make([]config.PatternConfig, len(cfg.Patterns))
	copy(c.patterns, cfg.Patterns)
	for _, p := range c.patterns {
		if p.Weight > 0 {
			c.totalWeight += p.Weight
		}
	}
	log.Printf("[PatternCatalog] Loaded %d patterns, total weight %.2f", len(c.patterns), c.totalWeight)
	return c
}

// Len 返回图案数量
func (c *PatternCatalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.patterns)
}

// TotalWeight 返回正权重之和
func (c *PatternCatalog) TotalWeight() float64 {
	if c == nil {
		return 0
	}
	return c.totalWeight
}

// Pattern 按索引返回图案
func (c *PatternCatalog) Pattern(i int) *config.PatternConfig {
	return &c.patterns[i]
}

// Pick 按权重随机选择一个图案
// 目录为空或总权重为 0 时返回 false
func (c *PatternCatalog) Pick(rng *rand.Rand) (*config.PatternConfig, bool) {
	if c.TotalWeight() <= 0 {
		return nil, false
	}

	randNum := rng.Float64() * c.totalWeight
	cumulativeWeight := 0.0
	last := -1
	for i := range c.patterns {
		w := c.patterns[i].Weight
		if w <= 0 {
			continue
		}
		cumulativeWeight += w
		last = i
		if randNum < cumulativeWeight {
			return &c.patterns[i], true
		}
	}

	// 浮点累加误差导致未命中时返回最后一个正权重图案
	return &c.patterns[last], true
}
