package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// HoldSweeper releases expired holds and restores their inventory.
type HoldSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// InitCronJobs registers the periodic hold sweep and starts the
// scheduler. The sweep is the reclaim path for holds abandoned by
// crashed or timed-out booking attempts.
func InitCronJobs(c *cron.Cron, sweeper HoldSweeper, schedule string) error {
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		released, err := sweeper.SweepExpired(ctx)
		if err != nil {
			log.Printf("level=error msg=hold sweep failed err=%v", err)
			return
		}
		if released > 0 {
			log.Printf("level=info msg=hold sweep completed released=%d", released)
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	log.Printf("level=info msg=cron jobs initialized schedule=%q", schedule)
	return nil
}
