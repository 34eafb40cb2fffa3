package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig 路由依赖
type RouterConfig struct {
	// State 快照存储（必填）
	State *StateStore

	// Hub 事件中心，nil 时不提供 /ws/events
	Hub *EventHub

	// Metrics /metrics 处理器，nil 时不提供
	Metrics http.Handler

	// CORSOrigins 允许的跨域来源，nil 时只允许本机
	CORSOrigins []string

	// DisableLogging 关闭请求日志（测试用）
	DisableLogging bool
}

type routerHandlers struct {
	state *StateStore
}

// NewRouter 构建调试服务路由
//
// 不启动 goroutine 也不监听端口，可直接用于 httptest.NewServer。
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	h := &routerHandlers{state: cfg.State}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/lanes", h.handleGetLanes)
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.Hub != nil {
		r.Get("/ws/events", cfg.Hub.HandleWebSocket)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

func (h *routerHandlers) latest(w http.ResponseWriter) (Snapshot, bool) {
	snap, ok := h.state.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no session running")
	}
	return snap, ok
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.latest(w); ok {
		writeJSON(w, snap)
	}
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.latest(w)
	if !ok {
		return
	}
	writeJSON(w, map[string]interface{}{
		"level":     snap.Level,
		"time":      snap.Time,
		"distance":  snap.Distance,
		"running":   snap.Running,
		"starState": snap.StarState,
		"starFlags": snap.StarFlags,
		"stats":     snap.Stats,
	})
}

func (h *routerHandlers) handleGetLanes(w http.ResponseWriter, r *http.Request) {
	if snap, ok := h.latest(w); ok {
		writeJSON(w, map[string]interface{}{
			"time":  snap.Time,
			"lanes": snap.Lanes,
		})
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[DevServer] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Serve 在 addr 上提供 handler，ctx 结束时优雅关闭
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[DevServer] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		log.Printf("[DevServer] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
