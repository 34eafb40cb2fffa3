package modules

import (
	"math"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/ecs"
)

// Autopilot 自动驾驶
//
// 用于无头模拟和演示：避开本车道前方的障碍物，否则向最近的收集物所在车道移动。
// 每次 Steer 最多移动一条车道。
type Autopilot struct {
	session   *RunSession
	lookahead float64
}

// NewAutopilot 创建自动驾驶，lookahead 为玩家上方的检查距离（像素）
func NewAutopilot(session *RunSession, lookahead float64) *Autopilot {
	return &Autopilot{session: session, lookahead: lookahead}
}

// Steer 根据当前实体分布调整玩家车道
func (a *Autopilot) Steer() {
	player, ok := a.session.player.Player()
	if !ok {
		return
	}
	em := a.session.entityManager
	laneCount := a.session.spawner.LaneCount()
	playerY := a.session.cfg.Player.Y
	radius := a.session.cfg.Player.PickupRadius

	danger := make([]bool, laneCount)
	target, best := -1, math.Inf(1)

	for _, id := range ecs.GetEntitiesWith2[*components.LaneComponent, *components.PositionComponent](em) {
		lane, _ := ecs.GetComponent[*components.LaneComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		if lane.Index < 0 || lane.Index >= laneCount {
			continue
		}

		ahead := playerY - pos.Y
		if ahead < -radius || ahead > a.lookahead {
			continue
		}

		if o, ok := ecs.GetComponent[*components.ObstacleComponent](em, id); ok && !o.Hit {
			danger[lane.Index] = true
			continue
		}
		if c, ok := ecs.GetComponent[*components.CollectibleComponent](em, id); ok && !c.Collected && ahead < best {
			best = ahead
			target = lane.Index
		}
	}

	current := player.Lane
	if danger[current] {
		for _, next := range dodgeOrder(current, target, laneCount) {
			if !danger[next] {
				a.session.player.MoveTo(next)
				return
			}
		}
		return
	}

	if target < 0 || target == current {
		return
	}
	next := current + 1
	if target < current {
		next = current - 1
	}
	if !danger[next] {
		a.session.player.MoveTo(next)
	}
}

// dodgeOrder 返回躲避时候选的相邻车道，优先朝目标方向
func dodgeOrder(current, target, laneCount int) []int {
	left, right := current-1, current+1
	order := []int{right, left}
	if target >= 0 && target < current {
		order = []int{left, right}
	}

	out := make([]int, 0, 2)
	for _, lane := range order {
		if lane >= 0 && lane < laneCount {
			out = append(out, lane)
		}
	}
	return out
}
