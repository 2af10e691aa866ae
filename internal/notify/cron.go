package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronChannel schedules reminders on an in-process cron engine and hands
// fired ones to a Sender. Delivery failures are logged, never propagated:
// a reminder that cannot be delivered is lost, the dose record is not.
type CronChannel struct {
	cron    *cron.Cron
	sender  Sender
	logger  *zap.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewCronChannel(loc *time.Location, sender Sender, logger *zap.Logger) *CronChannel {
	return &CronChannel{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		sender:  sender,
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

func (c *CronChannel) Start() {
	c.cron.Start()
}

func (c *CronChannel) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// RequestPermission is a no-op for in-process delivery.
func (c *CronChannel) RequestPermission(ctx context.Context) error {
	return nil
}

// Arm registers the reminder. An existing reminder for the same id is
// replaced so an id never fires twice for one trigger.
func (c *CronChannel) Arm(req Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[req.ID]; ok {
		c.cron.Remove(old)
		delete(c.entries, req.ID)
	}

	job := func() { c.fire(req) }

	var (
		id  cron.EntryID
		err error
	)
	if req.Trigger.Repeats {
		spec, specErr := dailySpec(req.Trigger.Hour, req.Trigger.Minute)
		if specErr != nil {
			return specErr
		}
		id, err = c.cron.AddFunc(spec, job)
		if err != nil {
			return fmt.Errorf("arm reminder %s: %w", req.ID, err)
		}
	} else {
		id = c.cron.Schedule(oneShotSchedule{at: req.Trigger.At}, cron.FuncJob(job))
	}

	c.entries[req.ID] = id
	return nil
}

// Cancel removes any pending reminder for the id. Unknown ids are a no-op.
func (c *CronChannel) Cancel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[id]; ok {
		c.cron.Remove(entry)
		delete(c.entries, id)
	}
}

// Pending reports how many reminders are currently armed.
func (c *CronChannel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *CronChannel) fire(req Request) {
	if err := c.sender.Send(req); err != nil {
		c.logger.Warn("reminder delivery failed",
			zap.String("id", req.ID),
			zap.Error(err),
		)
	}
	if !req.Trigger.Repeats {
		c.Cancel(req.ID)
	}
}

func dailySpec(hour, minute int) (string, error) {
	if hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %d", hour)
	}
	if minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %d", minute)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// oneShotSchedule fires exactly once at its instant. After that Next returns
// the zero time, which cron treats as "never again".
type oneShotSchedule struct {
	at time.Time
}

func (s oneShotSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}
