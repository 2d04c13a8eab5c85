package room

import (
	"sync"
	"time"
)

const warningSeconds = 60

// Config wires a Controller. MinuteTick and SecondTick exist so tests can
// run the countdown in milliseconds; production uses the defaults.
type Config struct {
	// ExpirationMinutes is the room's configured lifetime.
	ExpirationMinutes int

	// MinuteTick defaults to time.Minute.
	MinuteTick time.Duration
	// SecondTick drives the warning countdown, default time.Second.
	SecondTick time.Duration

	// OnWarning fires once when at most one minute remains.
	OnWarning func()
	// OnExpire fires exactly once when the room's time is up.
	OnExpire func()
}

// Controller runs one room's expiry countdown.
type Controller struct {
	cfg Config

	mu             sync.Mutex
	remaining      int
	warningActive  bool
	warningSeconds int

	stopOnce   sync.Once
	expireOnce sync.Once
	stop       chan struct{}
}

// Start begins the countdown from cfg.ExpirationMinutes.
func Start(cfg Config) *Controller {
	if cfg.MinuteTick <= 0 {
		cfg.MinuteTick = time.Minute
	}
	if cfg.SecondTick <= 0 {
		cfg.SecondTick = time.Second
	}
	c := &Controller{
		cfg:       cfg,
		remaining: cfg.ExpirationMinutes,
		stop:      make(chan struct{}),
	}
	go c.run()
	return c
}

// Remaining returns the minutes left.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// WarningActive reports whether the final-minute warning is showing.
func (c *Controller) WarningActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warningActive
}

// WarningSeconds returns the warning countdown's remaining seconds.
func (c *Controller) WarningSeconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warningSeconds
}

// Stop cancels both tickers. Safe to call from any teardown path, any
// number of times; after Stop neither callback fires again.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Controller) run() {
	minute := time.NewTicker(c.cfg.MinuteTick)
	defer minute.Stop()

	var second *time.Ticker
	var secondC <-chan time.Time
	defer func() {
		if second != nil {
			second.Stop()
		}
	}()

	for {
		select {
		case <-c.stop:
			return

		case <-minute.C:
			c.mu.Lock()
			c.remaining--
			remaining := c.remaining
			startWarning := remaining <= 1 && remaining > 0 && !c.warningActive
			if startWarning {
				c.warningActive = true
				c.warningSeconds = warningSeconds
			}
			c.mu.Unlock()

			if remaining <= 0 {
				c.expire()
				return
			}
			if startWarning {
				second = time.NewTicker(c.cfg.SecondTick)
				secondC = second.C
				if c.cfg.OnWarning != nil {
					c.cfg.OnWarning()
				}
			}

		case <-secondC:
			c.mu.Lock()
			c.warningSeconds--
			left := c.warningSeconds
			c.mu.Unlock()

			if left <= 0 {
				c.expire()
				return
			}
		}
	}
}

func (c *Controller) expire() {
	c.expireOnce.Do(func() {
		c.Stop()
		if c.cfg.OnExpire != nil {
			c.cfg.OnExpire()
		}
	})
}
