package syncx

import (
	"context"
	"database/sql"
	"time"
)

const TypeSubmissionStored = "submission.stored"

type Event struct {
	Offset    int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64 // unix ms
}

// Execer lets Append run on a *sql.DB or inside a *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type EventRepo struct {
	db     *sql.DB
	siteID string
	now    func() time.Time
}

func NewEventRepo(db *sql.DB, siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{db: db, siteID: siteID, now: time.Now}
}

// Append writes e through ex, or through the repo's own handle when ex is nil.
// An empty SiteID falls back to the repo's site.
func (r *EventRepo) Append(ctx context.Context, ex Execer, e Event) error {
	if ex == nil {
		ex = r.db
	}
	site := e.SiteID
	if site == "" {
		site = r.siteID
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		site, e.Type, e.Key, e.DataJSON, r.now().UnixMilli())
	return err
}

// List returns up to limit events with an offset greater than after, oldest first.
func (r *EventRepo) List(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", site_id, typ, key, data, created_at
		 FROM event_log WHERE "offset" > $1 ORDER BY "offset" ASC LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
