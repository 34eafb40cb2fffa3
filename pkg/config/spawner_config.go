package config

import (
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// 速度策略
const (
	// SpeedPolicyContinuous 实体每帧读取当前世界速度
	SpeedPolicyContinuous = "continuous"
	// SpeedPolicyStamped 实体保持生成时捕获的速度
	SpeedPolicyStamped = "stamped"
)

// SpawnerConfig 生成调度器配置（data/spawner.yaml）
//
// 坐标约定：屏幕 Y 轴向下，实体从屏幕上方的 spawnY 生成后向下滚动。
// 图案点向上（Y 减小）延伸，minVisibleY 是图案允许到达的最远行。
type SpawnerConfig struct {
	Lanes        LaneDefaults      `yaml:"lanes"`        // 关卡未指定时的默认车道设置
	Rows         RowsConfig        `yaml:"rows"`         // 生成/消失行与安全距离
	Planets      PlanetConfig      `yaml:"planets"`      // 障碍物（行星）循环参数
	Collectibles CollectibleConfig `yaml:"collectibles"` // 收集物图案循环参数
	Stars        StarConfig        `yaml:"stars"`        // 星星循环参数
	Prototypes   PrototypeConfig   `yaml:"prototypes"`   // 实体原型名称
	Speed        SpeedConfig       `yaml:"speed"`        // 世界速度与速度策略
	Player       PlayerConfig      `yaml:"player"`       // 玩家参数
	Entities     EntityConfig      `yaml:"entities"`     // 生成实体的公共参数
}

// LaneDefaults 默认车道设置
type LaneDefaults struct {
	Count  int     `yaml:"count"`  // 车道数量
	Offset float64 `yaml:"offset"` // 相邻车道中心的水平间距（像素）
}

// RowsConfig 垂直方向的关键位置
type RowsConfig struct {
	SpawnY      float64 `yaml:"spawnY"`      // 生成行
	MinVisibleY float64 `yaml:"minVisibleY"` // 图案截断行（图案点 Y 小于此值时停止）
	DespawnY    float64 `yaml:"despawnY"`    // 实体越过此行后销毁
	MinSafeZone float64 `yaml:"minSafeZone"` // 同车道障碍物与收集物的最小垂直距离
}

// PlanetConfig 障碍物循环参数
type PlanetConfig struct {
	Interval                 float64 `yaml:"interval"`                 // 单个障碍物后的等待时间（秒）
	DoubleInterval           float64 `yaml:"doubleInterval"`           // 成对障碍物后的等待时间（秒）
	DoubleChance             float64 `yaml:"doubleChance"`             // 成对生成概率 [0,1]
	LaneCooldown             float64 `yaml:"laneCooldown"`             // 同车道两次障碍物的最小间隔（秒）
	FreezePollInterval       float64 `yaml:"freezePollInterval"`       // 时间冻结/禁止生成时的轮询间隔（秒）
	BackpressurePollInterval float64 `yaml:"backpressurePollInterval"` // 无可用车道时的重试间隔（秒）
}

// CollectibleConfig 收集物图案循环参数
type CollectibleConfig struct {
	Spacing            float64 `yaml:"spacing"`            // 图案单位步长对应的像素距离
	PointDelay         float64 `yaml:"pointDelay"`         // 同一图案相邻点之间的等待（秒）
	LaneCooldown       float64 `yaml:"laneCooldown"`       // 收集物生成后车道阻塞时间（秒）
	DampingFactor      float64 `yaml:"dampingFactor"`      // 图案结束后等待时间的缩放系数
	FragmentMultiplier float64 `yaml:"fragmentMultiplier"` // 碎片替换概率的全局系数
	RetryDelay         float64 `yaml:"retryDelay"`         // 无可用车道时的重试间隔（秒）
}

// ProgressRange 任务进度窗口
type ProgressRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// StarConfig 星星循环参数
type StarConfig struct {
	Star1MinDelay     float64       `yaml:"star1MinDelay"`     // 第一颗星最早出现时间（相对会话开始，秒）
	Star1MaxDelay     float64       `yaml:"star1MaxDelay"`     // 第一颗星最晚出现时间
	Star2Progress     ProgressRange `yaml:"star2Progress"`     // 第二颗星的进度窗口（下界为触发阈值）
	Star3Progress     ProgressRange `yaml:"star3Progress"`     // 第三颗星的进度窗口
	MaxAttempts       int           `yaml:"maxAttempts"`       // 单颗星最多放置尝试次数
	RetryBackoff      float64       `yaml:"retryBackoff"`      // 放置尝试之间的等待（秒）
	PollInterval      float64       `yaml:"pollInterval"`      // 进度轮询间隔（秒）
	ContinueAfterMiss bool          `yaml:"continueAfterMiss"` // 放置失败后是否继续下一颗星
}

// PrototypeConfig 实体原型名称
type PrototypeConfig struct {
	Planets  []string `yaml:"planets"`  // 障碍物原型列表，生成时均匀选择
	Coin     string   `yaml:"coin"`     // 金币原型
	Fragment string   `yaml:"fragment"` // 碎片原型
	Star     string   `yaml:"star"`     // 星星原型
}

// SpeedConfig 世界速度参数
type SpeedConfig struct {
	Policy          string  `yaml:"policy"`          // continuous | stamped
	Base            float64 `yaml:"base"`            // 初始速度（像素/秒）
	RampPerSecond   float64 `yaml:"rampPerSecond"`   // 每秒增加的速度
	Max             float64 `yaml:"max"`             // 速度上限
	BoostMultiplier float64 `yaml:"boostMultiplier"` // 加速道具生效时的速度倍率
}

// PlayerConfig 玩家参数
type PlayerConfig struct {
	Y            float64 `yaml:"y"`            // 玩家所在行
	StartLane    int     `yaml:"startLane"`    // 初始车道，-1 表示中间车道
	PickupRadius float64 `yaml:"pickupRadius"` // 拾取/碰撞的垂直判定半径
}

// EntityConfig 生成实体的公共参数
type EntityConfig struct {
	MaxLifetime float64 `yaml:"maxLifetime"` // 实体最长存活时间（秒），0 表示不限制
}

// DefaultSpawnerConfig 返回完整的默认配置
//
// 解析 YAML 时先填充默认值再覆盖，因此文件中只需要写出与默认不同的字段，
// 并且显式写出的 0（如 doubleChance: 0）会被保留。
func DefaultSpawnerConfig() *SpawnerConfig {
	return &SpawnerConfig{
		Lanes: LaneDefaults{Count: 3, Offset: 120},
		Rows: RowsConfig{
			SpawnY:      -40,
			MinVisibleY: -400,
			DespawnY:    860,
			MinSafeZone: 90,
		},
		Planets: PlanetConfig{
			Interval:                 1.2,
			DoubleInterval:           1.8,
			DoubleChance:             0.25,
			LaneCooldown:             1.5,
			FreezePollInterval:       0.2,
			BackpressurePollInterval: 0.2,
		},
		Collectibles: CollectibleConfig{
			Spacing:            60,
			PointDelay:         0.15,
			LaneCooldown:       0.1,
			DampingFactor:      1.0,
			FragmentMultiplier: 1.0,
			RetryDelay:         0.25,
		},
		Stars: StarConfig{
			Star1MinDelay: 8,
			Star1MaxDelay: 15,
			Star2Progress: ProgressRange{Min: 0.4, Max: 0.6},
			Star3Progress: ProgressRange{Min: 0.8, Max: 1.0},
			MaxAttempts:   10,
			RetryBackoff:  0.5,
			PollInterval:  0.5,
		},
		Prototypes: PrototypeConfig{
			Planets:  []string{"planet_rock", "planet_gas", "planet_ice"},
			Coin:     "coin",
			Fragment: "fragment",
			Star:     "star",
		},
		Speed: SpeedConfig{
			Policy:          SpeedPolicyContinuous,
			Base:            240,
			RampPerSecond:   2,
			Max:             480,
			BoostMultiplier: 1.8,
		},
		Player: PlayerConfig{
			Y:            700,
			StartLane:    -1,
			PickupRadius: 36,
		},
		Entities: EntityConfig{
			MaxLifetime: 20,
		},
	}
}

// LoadSpawnerConfig 从文件系统加载生成调度器配置
// 参数：
//
//	fsys - 配置所在的文件系统（os.DirFS 或嵌入资源）
//	path - 配置文件路径
//
// 返回：
//
//	*SpawnerConfig - 应用默认值并验证后的配置
//	error - 读取、解析或验证失败时返回错误
func LoadSpawnerConfig(fsys fs.FS, path string) (*SpawnerConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spawner config file %s: %w", path, err)
	}

	cfg, err := ParseSpawnerConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseSpawnerConfig 解析 YAML 数据为生成调度器配置
func ParseSpawnerConfig(data []byte) (*SpawnerConfig, error) {
	cfg := DefaultSpawnerConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse spawner config YAML: %w", err)
	}

	applySpawnerDefaults(cfg)

	if err := ValidateSpawnerConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid spawner config: %w", err)
	}
	return cfg, nil
}

// applySpawnerDefaults 规范化字段
func applySpawnerDefaults(cfg *SpawnerConfig) {
	cfg.Speed.Policy = strings.ToLower(strings.TrimSpace(cfg.Speed.Policy))
	if cfg.Speed.Policy == "" {
		cfg.Speed.Policy = SpeedPolicyContinuous
	}

	// 空白原型名在验证阶段报错，这里只去掉首尾空格
	for i, name := range cfg.Prototypes.Planets {
		cfg.Prototypes.Planets[i] = strings.TrimSpace(name)
	}
}

// ValidateSpawnerConfig 验证生成调度器配置的合法性
func ValidateSpawnerConfig(cfg *SpawnerConfig) error {
	if cfg.Lanes.Count < 1 {
		return fmt.Errorf("lanes.count must be at least 1, got %d", cfg.Lanes.Count)
	}
	if cfg.Lanes.Offset <= 0 {
		return fmt.Errorf("lanes.offset must be positive, got %.2f", cfg.Lanes.Offset)
	}

	// 行
	if cfg.Rows.MinVisibleY > cfg.Rows.SpawnY {
		return fmt.Errorf("rows.minVisibleY (%.1f) must not be below rows.spawnY (%.1f)", cfg.Rows.MinVisibleY, cfg.Rows.SpawnY)
	}
	if cfg.Rows.DespawnY <= cfg.Rows.SpawnY {
		return fmt.Errorf("rows.despawnY (%.1f) must be greater than rows.spawnY (%.1f)", cfg.Rows.DespawnY, cfg.Rows.SpawnY)
	}
	if cfg.Rows.MinSafeZone < 0 {
		return fmt.Errorf("rows.minSafeZone cannot be negative, got %.2f", cfg.Rows.MinSafeZone)
	}

	// 行星
	p := cfg.Planets
	if p.Interval <= 0 || p.DoubleInterval <= 0 {
		return fmt.Errorf("planets.interval and planets.doubleInterval must be positive")
	}
	if err := checkChance("planets.doubleChance", p.DoubleChance); err != nil {
		return err
	}
	if p.LaneCooldown < 0 {
		return fmt.Errorf("planets.laneCooldown cannot be negative, got %.2f", p.LaneCooldown)
	}
	if p.FreezePollInterval <= 0 || p.BackpressurePollInterval <= 0 {
		return fmt.Errorf("planets poll intervals must be positive")
	}

	// 收集物
	c := cfg.Collectibles
	if c.Spacing <= 0 {
		return fmt.Errorf("collectibles.spacing must be positive, got %.2f", c.Spacing)
	}
	if c.PointDelay < 0 || c.LaneCooldown < 0 || c.DampingFactor < 0 {
		return fmt.Errorf("collectibles.pointDelay, laneCooldown and dampingFactor cannot be negative")
	}
	if c.FragmentMultiplier < 0 {
		return fmt.Errorf("collectibles.fragmentMultiplier cannot be negative, got %.2f", c.FragmentMultiplier)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("collectibles.retryDelay must be positive, got %.2f", c.RetryDelay)
	}

	// 星星
	s := cfg.Stars
	if s.Star1MinDelay < 0 || s.Star1MaxDelay < s.Star1MinDelay {
		return fmt.Errorf("stars: invalid star1 delay window [%.2f, %.2f]", s.Star1MinDelay, s.Star1MaxDelay)
	}
	if err := checkRange("stars.star2Progress", s.Star2Progress); err != nil {
		return err
	}
	if err := checkRange("stars.star3Progress", s.Star3Progress); err != nil {
		return err
	}
	if s.MaxAttempts < 1 {
		return fmt.Errorf("stars.maxAttempts must be at least 1, got %d", s.MaxAttempts)
	}
	if s.RetryBackoff < 0 {
		return fmt.Errorf("stars.retryBackoff cannot be negative, got %.2f", s.RetryBackoff)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("stars.pollInterval must be positive, got %.2f", s.PollInterval)
	}

	// 速度
	switch cfg.Speed.Policy {
	case SpeedPolicyContinuous, SpeedPolicyStamped:
	default:
		return fmt.Errorf("speed.policy must be one of: continuous, stamped, got %q", cfg.Speed.Policy)
	}
	if cfg.Speed.Base < 0 || cfg.Speed.Max < cfg.Speed.Base {
		return fmt.Errorf("speed: base (%.1f) must be >= 0 and <= max (%.1f)", cfg.Speed.Base, cfg.Speed.Max)
	}
	if cfg.Speed.BoostMultiplier < 1 {
		return fmt.Errorf("speed.boostMultiplier must be at least 1, got %.2f", cfg.Speed.BoostMultiplier)
	}

	if cfg.Player.PickupRadius <= 0 {
		return fmt.Errorf("player.pickupRadius must be positive, got %.2f", cfg.Player.PickupRadius)
	}
	if cfg.Entities.MaxLifetime < 0 {
		return fmt.Errorf("entities.maxLifetime cannot be negative, got %.2f", cfg.Entities.MaxLifetime)
	}

	// 原型列表为空不在此处报错：由调度器 Start() 以 ErrNoObstaclePrototypes 拒绝启动
	for i, name := range cfg.Prototypes.Planets {
		if name == "" {
			return fmt.Errorf("prototypes.planets[%d] cannot be empty", i)
		}
	}

	return nil
}

func checkChance(field string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %.3f", field, v)
	}
	return nil
}

func checkRange(field string, r ProgressRange) error {
	if r.Min < 0 || r.Max > 1 || r.Min > r.Max {
		return fmt.Errorf("%s must satisfy 0 <= min <= max <= 1, got [%.2f, %.2f]", field, r.Min, r.Max)
	}
	return nil
}
