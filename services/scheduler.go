package services

import (
	"log"
	"time"

	"gamer-network-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// How long a friend request may sit pending before the janitor clears it.
const pendingRequestTTL = 30 * 24 * time.Hour

// StartMaintenanceScheduler runs the periodic janitor jobs: pruning stale
// pending friend requests and reconciling cached XP totals against the
// ledger.
func StartMaintenanceScheduler(db *gorm.DB) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every hour: drop pending requests past the TTL.
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-pendingRequestTTL)
			res := db.Where("created_at < ?", cutoff).Delete(&models.FriendRequest{})
			if res.Error != nil {
				log.Printf("[Scheduler] request prune failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("[Scheduler] pruned %d stale friend requests", res.RowsAffected)
			}
		}),
	)

	// Every 6 hours: repair any xp_total that drifted from the ledger sum.
	// The ledger is the source of truth; drift here means a bug or manual
	// DB surgery, so it gets logged loudly.
	_, _ = sched.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(func() {
			type drift struct {
				ID          string
				XPTotal     int64
				LedgerTotal int64
			}
			var rows []drift
			err := db.Raw(`
				SELECT u.id, u.xp_total, COALESCE(SUM(e.amount), 0) AS ledger_total
				FROM users u
				LEFT JOIN xp_events e ON e.user_id = u.id
				GROUP BY u.id, u.xp_total
				HAVING u.xp_total <> COALESCE(SUM(e.amount), 0)
			`).Scan(&rows).Error
			if err != nil {
				log.Printf("[Scheduler] xp reconcile query failed: %v", err)
				return
			}

			for _, r := range rows {
				log.Printf("[Scheduler] xp drift for %s: cached=%d ledger=%d — repairing", r.ID, r.XPTotal, r.LedgerTotal)
				if err := db.Model(&models.User{}).Where("id = ?", r.ID).
					Update("xp_total", r.LedgerTotal).Error; err != nil {
					log.Printf("[Scheduler] xp repair failed for %s: %v", r.ID, err)
				}
			}
		}),
	)
}
