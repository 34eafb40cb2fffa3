// spawnsim 无头运行一局跑酷，输出生成统计
//
// 用法：
//
//	go run ./cmd/spawnsim -level 1-2 -seconds 120 -png out.png
//	go run ./cmd/spawnsim -level 1-1 -serve :8080 -realtime
//
// -serve 时启动调试服务（/api/state、/api/stats、/api/lanes、/metrics、/ws/events），
// 模拟结束后服务继续运行直到收到中断信号。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/devserver"
	"github.com/decker502/cosmorun/pkg/game"
	"github.com/decker502/cosmorun/pkg/metrics"
	"github.com/decker502/cosmorun/pkg/modules"
	"github.com/decker502/cosmorun/pkg/preview"
	"github.com/decker502/cosmorun/pkg/systems"
)

var (
	dataDir      = flag.String("data", ".", "数据根目录（包含 data/）")
	spawnerPath  = flag.String("spawner", "data/spawner.yaml", "生成配置路径（相对数据根目录）")
	patternsPath = flag.String("patterns", "data/patterns.yaml", "图案目录路径（相对数据根目录）")
	levelsDir    = flag.String("levels", "data/levels", "关卡目录（相对数据根目录）")
	levelID      = flag.String("level", "1-1", "关卡 ID")
	seed         = flag.Int64("seed", 0, "随机种子，0 表示使用当前时间")
	seconds      = flag.Float64("seconds", 90, "模拟时长（游戏秒）")
	dt           = flag.Float64("dt", 1.0/60.0, "每帧时长（秒）")
	autopilot    = flag.Bool("autopilot", true, "启用自动驾驶")
	lookahead    = flag.Float64("lookahead", 260, "自动驾驶前方检查距离（像素）")
	centerX      = flag.Float64("center", 240, "中间车道的屏幕 X 坐标")
	pngPath      = flag.String("png", "", "输出生成事件预览 PNG 的路径")
	serveAddr    = flag.String("serve", "", "调试服务监听地址，如 :8080")
	realtime     = flag.Bool("realtime", false, "按真实时间推进（配合 -serve 观察）")
	saveRecords  = flag.Bool("records", false, "把成绩写入本地星星记录")
	verbose      = flag.Bool("verbose", false, "显示详细调试信息")
)

func main() {
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "spawnsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *dt <= 0 || *seconds <= 0 {
		return fmt.Errorf("dt and seconds must be positive (dt=%v seconds=%v)", *dt, *seconds)
	}

	fsys := os.DirFS(*dataDir)
	spawnerCfg, err := config.LoadSpawnerConfig(fsys, *spawnerPath)
	if err != nil {
		return err
	}
	patterns, err := config.LoadPatternCatalog(fsys, *patternsPath)
	if err != nil {
		return err
	}
	level, err := findLevel(fsys)
	if err != nil {
		return err
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spawnMetrics := metrics.NewSpawnMetrics()
	recorder := &preview.Recorder{}
	listeners := []systems.SpawnListener{spawnMetrics, recorder}

	var (
		store  *devserver.StateStore
		hub    *devserver.EventHub
		served chan error
	)
	if *serveAddr != "" {
		store = devserver.NewStateStore()
		hub = devserver.NewEventHub()
		listeners = append(listeners, hub)
		go hub.Run(ctx)

		router := devserver.NewRouter(devserver.RouterConfig{
			State:          store,
			Hub:            hub,
			Metrics:        spawnMetrics.Handler(),
			DisableLogging: !*verbose,
		})
		served = make(chan error, 1)
		go func() { served <- devserver.Serve(ctx, *serveAddr, router) }()
		fmt.Printf("dev server on %s\n", *serveAddr)
	}

	var records *game.StarRecordManager
	if *saveRecords {
		records, err = openRecords()
		if err != nil {
			return err
		}
	}

	session, err := modules.NewRunSession(modules.RunSessionConfig{
		Spawner:   spawnerCfg,
		Patterns:  patterns,
		Level:     level,
		CenterX:   *centerX,
		Rand:      rand.New(rand.NewSource(*seed)),
		Records:   records,
		Listeners: listeners,
	})
	if err != nil {
		return err
	}

	simulate(ctx, session, store)

	result, improved := session.Finish()
	printSummary(session, result, improved)

	if *pngPath != "" {
		if err := preview.SavePNG(*pngPath, recorder.Events(), session.Spawner().LaneCount(), preview.Options{}); err != nil {
			return err
		}
		fmt.Printf("preview written to %s\n", *pngPath)
	}

	if served != nil {
		store.Publish(devserver.SnapshotOf(session))
		fmt.Println("simulation finished, press Ctrl+C to stop the dev server")
		return <-served
	}
	return nil
}

// simulate 以固定帧长推进会话
func simulate(ctx context.Context, session *modules.RunSession, store *devserver.StateStore) {
	var pilot *modules.Autopilot
	if *autopilot {
		pilot = modules.NewAutopilot(session, *lookahead)
	}

	var ticker *time.Ticker
	if *realtime {
		ticker = time.NewTicker(time.Duration(*dt * float64(time.Second)))
		defer ticker.Stop()
	}

	steps := int(*seconds / *dt + 0.5)
	for i := 0; i < steps; i++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return
		}

		if pilot != nil {
			pilot.Steer()
		}
		session.Update(*dt)
		if store != nil {
			store.Publish(devserver.SnapshotOf(session))
		}
	}
}

// findLevel 在关卡目录中查找 -level 指定的关卡
func findLevel(fsys fs.FS) (*config.LevelConfig, error) {
	levels, err := config.LoadLevelConfigs(fsys, *levelsDir)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(levels))
	for _, l := range levels {
		if l.ID == *levelID {
			return l, nil
		}
		ids = append(ids, l.ID)
	}
	sort.Strings(ids)
	return nil, fmt.Errorf("level %q not found in %s (available: %v)", *levelID, *levelsDir, ids)
}

// openRecords 打开本地星星记录
func openRecords() (*game.StarRecordManager, error) {
	manager, err := gdata.Open(gdata.Config{AppName: game.AppName})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return game.NewStarRecordManager(manager)
}

func printSummary(session *modules.RunSession, result game.RunResult, improved bool) {
	spawner := session.Spawner()
	stats := spawner.Stats()

	fmt.Printf("level %s  seed %d  t=%.1fs  distance=%.0f\n", result.LevelID, *seed, spawner.Now(), result.Distance)
	fmt.Printf("  obstacles  %d (double %d)\n", stats.Obstacles, stats.DoubleObstacles)
	fmt.Printf("  coins      %d\n", stats.Coins)
	fmt.Printf("  fragments  %d\n", stats.Fragments)
	fmt.Printf("  patterns   %d started, %d truncated, %d points skipped\n",
		stats.PatternsStarted, stats.PatternsTruncated, stats.PointsSkipped)
	fmt.Printf("  stars      %d placed, %d missed, state %s\n", stats.Stars, stats.StarsMissed, spawner.StarState())
	fmt.Printf("  pressure   planet %d, pattern %d\n", stats.PlanetBackpressure, stats.PatternBackpressure)

	for _, p := range session.Mission().Snapshot() {
		fmt.Printf("  mission    %s/%s %d/%d\n", p.Type, p.Variant, p.Collected, p.Required)
	}
	if p, ok := session.Player().Player(); ok {
		fmt.Printf("  player     coins %d, hits %d, stars %v\n", p.Coins, p.Hits, result.Stars)
	}
	if *saveRecords {
		fmt.Printf("  records    improved=%v\n", improved)
	}
}
