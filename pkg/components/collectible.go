package components

// CollectibleKind 收集物种类
type CollectibleKind int

const (
	CollectibleCoin     CollectibleKind = iota // 金币
	CollectibleFragment                        // 任务碎片
	CollectibleStar                            // 星星
)

// String 返回种类名称
func (k CollectibleKind) String() string {
	switch k {
	case CollectibleCoin:
		return "coin"
	case CollectibleFragment:
		return "fragment"
	case CollectibleStar:
		return "star"
	}
	return "unknown"
}

// CollectibleComponent 标记实体为可拾取物
type CollectibleComponent struct {
	Kind         CollectibleKind
	Prototype    string  // 原型名称
	FragmentType string  // 碎片类型（仅碎片）
	Variant      string  // 碎片颜色变体（仅碎片）
	StarIndex    int     // 星星序号 1..3（仅星星）
	PatternID    string  // 所属图案（星星为空）
	SpawnTime    float64 // 生成时间（游戏时间，秒）
	Collected    bool    // 是否已被拾取
}
