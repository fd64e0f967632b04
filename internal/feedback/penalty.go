package feedback

import "time"

// penalty escalates once when accuracy drops below threshold and again for every
// interval it stays there. Recovering clears it.
type penalty struct {
	below bool
	timer time.Duration
	level int
}

func (p *penalty) step(below bool, dt, interval time.Duration) {
	if !below {
		*p = penalty{}
		return
	}
	if !p.below {
		p.below = true
		p.timer = 0
		p.level++
		return
	}
	if interval <= 0 {
		return
	}
	p.timer += dt
	for p.timer >= interval {
		p.timer -= interval
		p.level++
	}
}
