// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gamer-network-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileChange is one row from the profile service's change feed.
type ProfileChange struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileChangesResponse is the top-level structure of the feed response.
type ProfileChangesResponse struct {
	Users []ProfileChange `json:"users"`
}

// ProfileSyncWorker mirrors display data (username, avatar) from the
// profile service into the local users table. A profile seen for the
// first time is a first-login: it gets a fresh isolated network.
type ProfileSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, baseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("Starting Profile Sync Worker (profile service → users)…")

	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("[SYNC] initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.lastSyncTime()); err != nil {
				log.Printf("[SYNC] batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("Profile Sync Worker stopped")
			return
		}
	}
}

// lastSyncTime is the most recent updated_at already mirrored locally.
func (w *ProfileSyncWorker) lastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile service URL '%s': %w", w.baseURL, err)
	}
	base.Path = w.endpointPath
	q := base.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	base.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("profile service returned %d: %s", resp.StatusCode, string(body))
	}

	var changes ProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return err
	}

	for _, p := range changes.Users {
		if err := w.upsertUser(p); err != nil {
			log.Printf("[SYNC] upsert failed for %s: %v", p.ID, err)
		}
	}
	if len(changes.Users) > 0 {
		log.Printf("[SYNC] mirrored %d profile changes", len(changes.Users))
	}
	return nil
}

// upsertUser updates display data on an existing row, or creates the row
// with a fresh isolated network on first login. Membership fields are
// never touched for existing users — the merge/split engine owns those.
func (w *ProfileSyncWorker) upsertUser(p ProfileChange) error {
	var existing models.User
	err := w.db.First(&existing, "id = ?", p.ID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return w.db.Transaction(func(tx *gorm.DB) error {
			nw := models.Network{ID: uuid.NewString()}
			if err := tx.Create(&nw).Error; err != nil {
				return err
			}
			user := models.User{
				ID:              p.ID,
				Username:        p.Username,
				NetworkID:       nw.ID,
				NetworkJoinedAt: time.Now().UTC(),
			}
			if p.Avatar != nil {
				user.Avatar = *p.Avatar
			}
			return tx.Create(&user).Error
		})
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"username": p.Username}
	if p.Avatar != nil {
		updates["avatar"] = *p.Avatar
	}
	return w.db.Model(&models.User{}).Where("id = ?", p.ID).Updates(updates).Error
}
