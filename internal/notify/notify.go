// Package notify sends desktop notifications when a trainee crosses a
// completion milestone.
package notify

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/Tiliavir/ojt-tracker/internal/logging"
	"github.com/Tiliavir/ojt-tracker/internal/stats"
)

// AppName is shown as the notification sender where the platform supports it.
const AppName = "OJT Tracker"

// Notifier delivers a single notification.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the operating system.
type Desktop struct{}

func (Desktop) Notify(title, message string) error {
	beeep.AppName = AppName
	return beeep.Notify(title, message, "")
}

// Message returns the title and body for a crossed milestone.
func Message(milestone int, totalHours, targetHours float64) (string, string) {
	if milestone >= 100 {
		return "OJT complete", fmt.Sprintf("You reached your %.1f hour target. Well done!", targetHours)
	}
	return fmt.Sprintf("OJT %d%% complete", milestone),
		fmt.Sprintf("%.1f of %.1f hours logged.", totalHours, targetHours)
}

// Milestones notifies once per milestone crossed between the before and
// after completion percentages. Delivery failures are logged and skipped.
// It returns the milestones that were announced.
func Milestones(ctx context.Context, n Notifier, before, after, totalHours, targetHours float64) []int {
	log := logging.FromContext(ctx)
	var sent []int
	for _, m := range stats.Milestones(before, after) {
		title, body := Message(m, totalHours, targetHours)
		if err := n.Notify(title, body); err != nil {
			log.Warn("could not send notification", "milestone", m, "err", err)
			continue
		}
		sent = append(sent, m)
	}
	return sent
}
