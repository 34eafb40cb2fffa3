// Package metrics 把生成事件导出为 Prometheus 指标
//
// 标签只使用有限取值（事件种类、循环名称），不带车道或时间等无界标签。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/decker502/cosmorun/pkg/systems"
)

// SpawnMetrics 生成事件指标，实现 systems.SpawnListener
//
// 每个实例使用独立的 Registry，同一进程可以并存多个会话的指标。
type SpawnMetrics struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	backpressure *prometheus.CounterVec
	doubles      prometheus.Counter
	starsPlaced  prometheus.Gauge
	starAttempts prometheus.Histogram
	worldSpeed   prometheus.Gauge
	gameTime     prometheus.Gauge
}

// NewSpawnMetrics 创建指标集合并注册到新的 Registry
func NewSpawnMetrics() *SpawnMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &SpawnMetrics{
		registry: reg,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cosmorun_spawn_events_total",
			Help: "Spawn events by kind",
		}, []string{"kind"}), // Bounded: obstacle, coin, fragment, star, star_missed, backpressure
		backpressure: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cosmorun_spawn_backpressure_total",
			Help: "Iterations that found no eligible lane",
		}, []string{"loop"}), // Bounded: planet, pattern
		doubles: factory.NewCounter(prometheus.CounterOpts{
			Name: "cosmorun_double_obstacles_total",
			Help: "Obstacles placed as part of a double placement",
		}),
		starsPlaced: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cosmorun_stars_placed",
			Help: "Stars placed in the current session",
		}),
		starAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cosmorun_star_attempts",
			Help:    "Placement attempts needed per star",
			Buckets: []float64{1, 2, 3, 5, 8, 10},
		}),
		worldSpeed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cosmorun_world_speed",
			Help: "World speed stamped on the latest placement",
		}),
		gameTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cosmorun_game_time_seconds",
			Help: "Game time of the latest spawn event",
		}),
	}
}

// OnSpawnEvent 实现 systems.SpawnListener
func (m *SpawnMetrics) OnSpawnEvent(ev systems.SpawnEvent) {
	m.events.WithLabelValues(ev.Kind.String()).Inc()
	m.gameTime.Set(ev.Time)

	switch ev.Kind {
	case systems.EventBackpressure:
		m.backpressure.WithLabelValues(ev.Loop).Inc()
	case systems.EventObstacle:
		if ev.Double {
			m.doubles.Inc()
		}
	case systems.EventStar:
		m.starsPlaced.Inc()
		m.starAttempts.Observe(float64(ev.Attempts))
	case systems.EventStarMissed:
		m.starAttempts.Observe(float64(ev.Attempts))
	}

	if ev.Kind.IsPlacement() {
		m.worldSpeed.Set(ev.Speed)
	}
}

// Reset 清空本局相关的瞬时指标（计数器保留）
func (m *SpawnMetrics) Reset() {
	m.starsPlaced.Set(0)
	m.worldSpeed.Set(0)
	m.gameTime.Set(0)
}

// Registry 返回指标注册表
func (m *SpawnMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回 /metrics 处理器
func (m *SpawnMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
