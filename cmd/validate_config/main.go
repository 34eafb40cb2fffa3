// validate_config 校验 data/ 下的生成配置、图案目录和所有关卡
//
// 用法：
//
//	go run ./cmd/validate_config [-data .]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/systems"
)

var dataDir = flag.String("data", ".", "数据根目录（包含 data/）")

func main() {
	flag.Parse()
	fsys := os.DirFS(*dataDir)
	failed := 0

	spawner, err := config.LoadSpawnerConfig(fsys, "data/spawner.yaml")
	if err != nil {
		fmt.Printf("❌ spawner.yaml: %v\n", err)
		failed++
	} else {
		fmt.Printf("✅ spawner.yaml: %d 车道, %d 种行星, 速度策略 %s\n",
			spawner.Lanes.Count, len(spawner.Prototypes.Planets), spawner.Speed.Policy)
	}

	patterns, err := config.LoadPatternCatalog(fsys, "data/patterns.yaml")
	if err != nil {
		fmt.Printf("❌ patterns.yaml: %v\n", err)
		failed++
	} else {
		catalog := systems.NewPatternCatalog(patterns)
		fmt.Printf("✅ patterns.yaml: %d 个图案, 总权重 %.1f\n", catalog.Len(), catalog.TotalWeight())
	}

	levels, err := config.LoadLevelConfigs(fsys, "data/levels")
	if err != nil {
		fmt.Printf("❌ levels: %v\n", err)
		failed++
	}
	for _, l := range levels {
		// 关卡车道布局必须能构建车道注册表
		if spawner != nil {
			count, offset := l.ResolveLanes(spawner.Lanes)
			if _, err := systems.NewLaneRegistry(count, offset); err != nil {
				fmt.Printf("❌ 关卡 %s: %v\n", l.ID, err)
				failed++
				continue
			}
		}
		fmt.Printf("✅ 关卡 %s (%s): %d 项碎片需求, %d 个道具\n",
			l.ID, l.Name, len(l.ActiveRequirements()), len(l.Boosters))
	}

	if failed > 0 {
		fmt.Printf("❌ %d 项配置无效\n", failed)
		os.Exit(1)
	}
	fmt.Printf("✅ 所有配置有效\n")
}
