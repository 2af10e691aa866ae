package notify

import (
	"context"
	"time"
)

// TriggerSpec describes when a reminder fires. Repeating triggers ignore the
// date and fire every day at Hour:Minute; one-shot triggers fire once at At.
type TriggerSpec struct {
	At      time.Time
	Hour    int
	Minute  int
	Repeats bool
}

// Daily builds a repeating trigger at the given clock time.
func Daily(hour, minute int) TriggerSpec {
	return TriggerSpec{Hour: hour, Minute: minute, Repeats: true}
}

// Once builds a one-shot trigger at the given instant.
func Once(at time.Time) TriggerSpec {
	return TriggerSpec{At: at}
}

// Request is one reminder to be delivered when its trigger fires.
type Request struct {
	ID      string
	Title   string
	Body    string
	Trigger TriggerSpec
}

// Channel delivers reminders. At most one pending reminder exists per id:
// arming an id that already has one replaces it.
type Channel interface {
	RequestPermission(ctx context.Context) error
	Arm(req Request) error
	Cancel(id string)
}
