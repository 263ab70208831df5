package credential

import (
	"sync"
	"time"

	"github.com/ignatzorin/marketplace-listings/internal/pkg/clock"
)

// TickInterval - шаг обратного отсчёта.
const TickInterval = time.Second

// Countdown - таймер одного кода. Каждый тик пересчитывает остаток от дедлайна,
// поэтому задержки тиков не накапливаются. onExpire вызывается не более одного раза
// и только если таймер не был остановлен раньше.
type Countdown struct {
	clock    clock.Clock
	deadline time.Time
	onTick   func(remaining int)
	onExpire func()

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// StartCountdown запускает отсчёт до deadline.
func StartCountdown(clk clock.Clock, deadline time.Time, interval time.Duration, onTick func(int), onExpire func()) *Countdown {
	if onTick == nil {
		onTick = func(int) {}
	}
	if onExpire == nil {
		onExpire = func() {}
	}

	c := &Countdown{
		clock:    clk,
		deadline: deadline,
		onTick:   onTick,
		onExpire: onExpire,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	ticker := clk.NewTicker(interval)
	go c.run(ticker)
	return c
}

func (c *Countdown) run(ticker clock.Ticker) {
	defer close(c.done)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C():
			remaining := c.Remaining()
			if remaining <= 0 {
				select {
				case <-c.stop:
					return
				default:
				}
				c.onExpire()
				return
			}
			c.onTick(remaining)
		}
	}
}

// Remaining - оставшиеся секунды, округлённые вверх.
func (c *Countdown) Remaining() int {
	left := c.deadline.Sub(c.clock.Now())
	if left <= 0 {
		return 0
	}
	secs := int(left / time.Second)
	if left%time.Second != 0 {
		secs++
	}
	return secs
}

// Stop останавливает отсчёт. Повторные вызовы безопасны; не ждёт завершения горутины.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Done закрывается, когда горутина отсчёта завершилась.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
