package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/armory/internal/model"
)

// ErrLoadoutNotFound is returned when a bearer has no stored loadout for a weapon.
var ErrLoadoutNotFound = errors.New("loadout not found")

// Loadout is the persisted part selection of one bearer's weapon.
type Loadout struct {
	BearerID  uuid.UUID
	Weapon    string
	Parts     map[model.AttachPoint]string // slot -> catalog part name
	UpdatedAt time.Time                    // set by Load
}

// LoadoutRepository stores loadouts in the loadouts table, one row per
// occupied slot.
type LoadoutRepository struct {
	db *pgxpool.Pool
}

// NewLoadoutRepository creates a new LoadoutRepository.
func NewLoadoutRepository(db *pgxpool.Pool) *LoadoutRepository {
	return &LoadoutRepository{db: db}
}

// Save replaces the stored loadout of (l.BearerID, l.Weapon) in one transaction.
// An empty Parts map stores an empty loadout, which Load reports as not found.
func (r *LoadoutRepository) Save(ctx context.Context, l Loadout) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for loadout %s/%s: %w", l.BearerID, l.Weapon, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "bearerID", l.BearerID, "weapon", l.Weapon, "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, l); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing loadout %s/%s: %w", l.BearerID, l.Weapon, err)
	}
	return nil
}

// SaveTx saves the loadout within a transaction (full replace).
func (r *LoadoutRepository) SaveTx(ctx context.Context, tx pgx.Tx, l Loadout) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM loadouts WHERE bearer_id = $1 AND weapon = $2`,
		l.BearerID, l.Weapon,
	); err != nil {
		return fmt.Errorf("deleting old loadout %s/%s: %w", l.BearerID, l.Weapon, err)
	}

	if len(l.Parts) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(l.Parts))
	for _, point := range model.AttachPoints() {
		name, ok := l.Parts[point]
		if !ok || name == "" {
			continue
		}
		rows = append(rows, []any{l.BearerID, l.Weapon, point.String(), name, now})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"loadouts"},
		[]string{"bearer_id", "weapon", "slot", "part", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting loadout %s/%s: %w", l.BearerID, l.Weapon, err)
	}

	slog.Debug("saved loadout",
		"bearerID", l.BearerID,
		"weapon", l.Weapon,
		"parts", len(rows))

	return nil
}

// Load returns the stored loadout of a bearer's weapon.
// Returns ErrLoadoutNotFound if nothing is stored.
func (r *LoadoutRepository) Load(ctx context.Context, bearerID uuid.UUID, weapon string) (Loadout, error) {
	query := `
		SELECT slot, part, updated_at
		FROM loadouts
		WHERE bearer_id = $1 AND weapon = $2
		ORDER BY slot
	`

	rows, err := r.db.Query(ctx, query, bearerID, weapon)
	if err != nil {
		return Loadout{}, fmt.Errorf("querying loadout %s/%s: %w", bearerID, weapon, err)
	}
	defer rows.Close()

	l := Loadout{
		BearerID: bearerID,
		Weapon:   weapon,
		Parts:    make(map[model.AttachPoint]string, model.AttachPointCount),
	}
	for rows.Next() {
		var (
			slot, part string
			updated    time.Time
		)
		if err := rows.Scan(&slot, &part, &updated); err != nil {
			return Loadout{}, fmt.Errorf("scanning loadout row: %w", err)
		}
		point, err := model.ParseAttachPoint(slot)
		if err != nil {
			return Loadout{}, fmt.Errorf("loadout %s/%s: %w", bearerID, weapon, err)
		}
		l.Parts[point] = part
		if updated.After(l.UpdatedAt) {
			l.UpdatedAt = updated
		}
	}
	if err := rows.Err(); err != nil {
		return Loadout{}, fmt.Errorf("iterating loadout rows: %w", err)
	}

	if len(l.Parts) == 0 {
		return Loadout{}, fmt.Errorf("loadout %s/%s: %w", bearerID, weapon, ErrLoadoutNotFound)
	}
	return l, nil
}

// Weapons lists weapon names with a stored loadout for the bearer.
func (r *LoadoutRepository) Weapons(ctx context.Context, bearerID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT weapon FROM loadouts WHERE bearer_id = $1 ORDER BY weapon`,
		bearerID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying weapons of bearer %s: %w", bearerID, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting weapons of bearer %s: %w", bearerID, err)
	}
	return names, nil
}

// Delete removes the stored loadout. Returns ErrLoadoutNotFound if nothing was stored.
func (r *LoadoutRepository) Delete(ctx context.Context, bearerID uuid.UUID, weapon string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM loadouts WHERE bearer_id = $1 AND weapon = $2`,
		bearerID, weapon,
	)
	if err != nil {
		return fmt.Errorf("deleting loadout %s/%s: %w", bearerID, weapon, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loadout %s/%s: %w", bearerID, weapon, ErrLoadoutNotFound)
	}
	return nil
}
