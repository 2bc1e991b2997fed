// workers/user_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"prediction-league-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MirroredUserFromProfile matches the JSON the profile sync service returns.
type MirroredUserFromProfile struct {
	ID           string     `json:"id"`
	ExternalID   string     `json:"external_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type getUserChangesResponse struct {
	Users []MirroredUserFromProfile `json:"users"`
}

type LeagueUserSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string // e.g. "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewLeagueUserSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *LeagueUserSyncWorker {
	return &LeagueUserSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *LeagueUserSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting League User Sync Worker (profile service → league_users)…")
	go w.run(ctx)
}

func (w *LeagueUserSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial user sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ User sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ League User Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local mirror table.
func (w *LeagueUserSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM league_users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *LeagueUserSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile sync URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create sync request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to profile sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("profile sync service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response getUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode profile sync response: %w", err)
	}

	if len(response.Users) == 0 {
		log.Printf("[SYNC] ✅ No user changes since %s", sinceStr)
		return nil
	}

	var upsertCount, errorCount int
	for _, remoteUser := range response.Users {
		localUser := models.LeagueUser{
			ID:             uuid.NewString(),
			ExternalUserID: remoteUser.ExternalID,
			Username:       remoteUser.Username,
			Email:          remoteUser.Email,
			AvatarURL:      remoteUser.AvatarURL,
			LastSeen:       remoteUser.LastSeen,
			CreatedAt:      remoteUser.CreatedAt,
			UpdatedAt:      remoteUser.UpdatedAt,
		}

		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "email", "avatar_url", "last_seen", "updated_at",
			}),
		}).Create(&localUser).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert league_user (external_id=%q): %v", remoteUser.ExternalID, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d user(s) (%d upserted, %d errors)", len(response.Users), upsertCount, errorCount)
	return nil
}
