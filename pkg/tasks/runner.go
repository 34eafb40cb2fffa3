package tasks

import (
	"log"
	"math"
)

// TimeEpsilon 时间比较容差
//
// 帧时间以 float64 累加（如 20 × 0.05），直接比较会因舍入误差晚一帧触发。
const TimeEpsilon = 1e-6

// Done 作为 Resume 的返回值表示任务结束，Runner 会将其移除
const Done = -1.0

// Task 协作式任务
//
// Resume 在任务到期时被调用，返回距离下一次恢复的等待时间（秒）。
// 返回 0 表示下一帧继续；返回 Done（或任意负值）表示任务结束。
// Resume 内部不得阻塞：所有等待都通过返回值表达。
type Task interface {
	Name() string
	Resume(now float64) float64
}

// entry 任务登记信息
type entry struct {
	task   Task
	wakeAt float64
	done   bool
}

// Runner 单线程协作式任务调度器
//
// 调度规则：
//   - Tick(now) 按登记顺序恢复所有 wakeAt <= now 的任务，每个任务每帧最多恢复一次
//   - 同一时刻只有一个任务体在执行，任务之间共享的状态不存在数据竞争
//   - Stop() 立即丢弃所有任务，不给任务清理机会
type Runner struct {
	entries []*entry
	ticking bool
	pending []*entry
}

// NewRunner 创建空的任务调度器
func NewRunner() *Runner {
	return &Runner{
		entries: make([]*entry, 0, 4),
	}
}

// Add 登记任务，首次恢复时间为 now + delay
//
// Tick 执行期间登记的任务从下一次 Tick 开始参与调度。
func (r *Runner) Add(task Task, now, delay float64) {
	if task == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	e := &entry{task: task, wakeAt: now + delay}
	if r.ticking {
		r.pending = append(r.pending, e)
		return
	}
	r.entries = append(r.entries, e)
}

// Tick 恢复所有到期任务
//
// 返回本次实际恢复的任务数量。
func (r *Runner) Tick(now float64) int {
	r.ticking = true
	resumed := 0

	// 按索引遍历：任务体内调用 Stop() 时循环立即结束
	for i := 0; i < len(r.entries); i++ {
		e := r.entries[i]
		if e.done || now+TimeEpsilon < e.wakeAt {
			continue
		}

		delay := e.task.Resume(now)
		resumed++

		if delay < 0 || math.IsNaN(delay) {
			e.done = true
			log.Printf("[TaskRunner] Task %s finished at t=%.2f", e.task.Name(), now)
			continue
		}
		e.wakeAt = now + delay
	}

	r.ticking = false
	r.compact()
	return resumed
}

// compact 移除已结束的任务并合并 Tick 期间新登记的任务
func (r *Runner) compact() {
	alive := r.entries[:0]
	for _, e := range r.entries {
		if !e.done {
			alive = append(alive, e)
		}
	}
	r.entries = append(alive, r.pending...)
	r.pending = r.pending[:0]
}

// Stop 立即取消全部任务
func (r *Runner) Stop() {
	if len(r.entries) > 0 {
		log.Printf("[TaskRunner] Stopping %d tasks", len(r.entries))
	}
	r.entries = r.entries[:0]
	r.pending = r.pending[:0]
}

// Len 返回当前登记的任务数量
func (r *Runner) Len() int {
	return len(r.entries) + len(r.pending)
}

// Has 检查指定名称的任务是否在调度中
func (r *Runner) Has(name string) bool {
	for _, e := range r.entries {
		if !e.done && e.task.Name() == name {
			return true
		}
	}
	for _, e := range r.pending {
		if e.task.Name() == name {
			return true
		}
	}
	return false
}

// NextWake 返回指定任务的下一次恢复时间，任务不存在时返回 false
func (r *Runner) NextWake(name string) (float64, bool) {
	for _, e := range r.entries {
		if !e.done && e.task.Name() == name {
			return e.wakeAt, true
		}
	}
	return 0, false
}
