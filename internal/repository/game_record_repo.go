package repository

import (
	"context"

	"spyfall_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameRecordRepository persists finished games, one row per participant.
// Live game state never touches the database; only terminal outcomes do.
type GameRecordRepository struct {
	db *pgxpool.Pool
}

func NewGameRecordRepository(db *pgxpool.Pool) *GameRecordRepository {
	return &GameRecordRepository{db: db}
}

func (r *GameRecordRepository) Create(ctx context.Context, rec *domain.GameRecord) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO game_records
			(room_id, account_id, role, outcome, spy_id, location)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		rec.RoomID,
		rec.AccountID,
		rec.Role,
		rec.Outcome,
		rec.SpyID,
		rec.Location,
	).Scan(&rec.ID, &rec.CreatedAt)
}

// ListByAccount returns a participant's past games, most recent first.
func (r *GameRecordRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, room_id, account_id, role, outcome, spy_id, location, created_at
		 FROM game_records
		 WHERE account_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		accountID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]*domain.GameRecord, error) {
	var out []*domain.GameRecord
	for rows.Next() {
		rec := &domain.GameRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.RoomID,
			&rec.AccountID,
			&rec.Role,
			&rec.Outcome,
			&rec.SpyID,
			&rec.Location,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
