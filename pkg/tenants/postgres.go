// pkg/tenants/postgres.go
package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"qrmenu/pkg/db"
	"qrmenu/pkg/subdomain"
)

// PostgresStore implements Store backed by PostgreSQL.
type PostgresStore struct {
	db  db.Querier         // *pgxpool.Pool in production
	log *zap.SugaredLogger // Logger for diagnostic output
}

// NewPostgresStore constructs a PostgreSQL-backed restaurant store.
func NewPostgresStore(q db.Querier, log *zap.SugaredLogger) *PostgresStore {
	return &PostgresStore{db: q, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, q db.Querier) error {
	_, err := q.Exec(ctx, `
CREATE TABLE IF NOT EXISTS restaurants (
  id uuid PRIMARY KEY,
  name text NOT NULL,
  subdomain text NOT NULL,
  description text,
  logo_url text,
  owner_id text,
  is_active boolean NOT NULL DEFAULT true,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS restaurants_subdomain_idx ON restaurants(subdomain);
CREATE INDEX IF NOT EXISTS restaurants_owner_idx ON restaurants(owner_id);
CREATE TABLE IF NOT EXISTS menu_categories (
  id uuid PRIMARY KEY,
  restaurant_id uuid NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
  name text NOT NULL,
  "order" int NOT NULL DEFAULT 0,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS menu_items (
  id uuid PRIMARY KEY,
  category_id uuid NOT NULL REFERENCES menu_categories(id) ON DELETE CASCADE,
  name text NOT NULL,
  description text,
  price numeric(10,2) NOT NULL,
  image_url text,
  is_available boolean NOT NULL DEFAULT true,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS audits (
  id BIGSERIAL PRIMARY KEY,
  restaurant_id uuid NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
  action text NOT NULL,
  payload jsonb NOT NULL DEFAULT '{}'::jsonb,
  created_at timestamptz NOT NULL DEFAULT NOW()
);
`)
	return err
}

const restaurantColumns = `id::text, name, subdomain, description, logo_url, owner_id, is_active, created_at, updated_at`

func scanRestaurant(row pgx.Row) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.Name, &r.Subdomain, &r.Description, &r.LogoURL, &r.OwnerID, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// FindBySubdomain loads the restaurant plus its menu. Items that are not available are excluded
// in the query; prices are cast to float8 so no numeric type reaches callers.
func (p *PostgresStore) FindBySubdomain(ctx context.Context, sub string) (Restaurant, error) {
	r, err := scanRestaurant(p.db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE subdomain=$1`, sub))
	if err != nil {
		return Restaurant{}, mapErr(err)
	}
	rows, err := p.db.Query(ctx, `
SELECT c.id::text, c.name, c."order", i.id::text, i.name, i.description, i.price::float8, i.image_url, i.is_available
FROM menu_categories c
LEFT JOIN menu_items i ON i.category_id = c.id AND i.is_available
WHERE c.restaurant_id = $1
ORDER BY c."order" ASC, c.created_at ASC, c.id ASC, i.created_at DESC`, r.ID)
	if err != nil {
		return Restaurant{}, mapErr(err)
	}
	defer rows.Close()

	r.Categories = []Category{}
	byCat := map[string]int{} // category id -> index in r.Categories
	for rows.Next() {
		var (
			catID, catName                  string
			order                           int
			itemID, itemName, desc, imgURL *string
			price                           *float64
			available                       *bool
		)
		if err := rows.Scan(&catID, &catName, &order, &itemID, &itemName, &desc, &price, &imgURL, &available); err != nil {
			return Restaurant{}, mapErr(err)
		}
		idx, seen := byCat[catID]
		if !seen {
			idx = len(r.Categories)
			byCat[catID] = idx
			r.Categories = append(r.Categories, Category{ID: catID, Name: catName, Order: order, Items: []MenuItem{}})
		}
		if itemID == nil {
			continue
		}
		it := MenuItem{ID: *itemID, Description: desc, ImageURL: imgURL}
		if itemName != nil {
			it.Name = *itemName
		}
		if price != nil {
			it.Price = *price
		}
		if available != nil {
			it.IsAvailable = *available
		}
		cat := &r.Categories[idx]
		cat.Items = append(cat.Items, it)
	}
	if err := rows.Err(); err != nil {
		return Restaurant{}, mapErr(err)
	}
	return r, nil
}

func (p *PostgresStore) FindByID(ctx context.Context, id string) (Restaurant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Restaurant{}, ErrNotFound
	}
	r, err := scanRestaurant(p.db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE id=$1`, id))
	return r, mapErr(err)
}

func (p *PostgresStore) FindByOwner(ctx context.Context, userID string) (Restaurant, error) {
	r, err := scanRestaurant(p.db.QueryRow(ctx, `SELECT `+restaurantColumns+` FROM restaurants WHERE owner_id=$1 ORDER BY created_at ASC LIMIT 1`, userID))
	return r, mapErr(err)
}

func (p *PostgresStore) List(ctx context.Context) ([]Restaurant, error) {
	rows, err := p.db.Query(ctx, `SELECT `+restaurantColumns+` FROM restaurants ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []Restaurant{}
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, r)
	}
	return out, mapErr(rows.Err())
}

func (p *PostgresStore) CreateRestaurant(ctx context.Context, in NewRestaurant) (Restaurant, error) {
	r, err := scanRestaurant(p.db.QueryRow(ctx, `
INSERT INTO restaurants(id, name, subdomain, description, owner_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING `+restaurantColumns, uuid.NewString(), in.Name, in.Subdomain, in.Description, in.OwnerID))
	return r, mapErr(err)
}

func (p *PostgresStore) UpdateSubdomain(ctx context.Context, id, sub string) (Restaurant, error) {
	r, err := scanRestaurant(p.db.QueryRow(ctx, `
UPDATE restaurants SET subdomain=$2, updated_at=NOW() WHERE id=$1
RETURNING `+restaurantColumns, id, sub))
	return r, mapErr(err)
}

func (p *PostgresStore) RecordAudit(ctx context.Context, e AuditEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `INSERT INTO audits(restaurant_id, action, payload) VALUES ($1,$2,$3)`, e.RestaurantID, e.Action, payload)
	return mapErr(err)
}

// ListAudits reads the latest audit rows for one restaurant.
func (p *PostgresStore) ListAudits(ctx context.Context, restaurantID string, limit int) ([]AuditEntry, error) {
	if _, err := uuid.Parse(restaurantID); err != nil {
		return []AuditEntry{}, nil
	}
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	rows, err := p.db.Query(ctx, `
SELECT restaurant_id::text, action, payload, created_at
FROM audits WHERE restaurant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2`, restaurantID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := []AuditEntry{}
	for rows.Next() {
		var (
			e       AuditEntry
			payload []byte
		)
		if err := rows.Scan(&e.RestaurantID, &e.Action, &payload, &e.CreatedAt); err != nil {
			return nil, mapErr(err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				p.log.Warnw("audit payload", "restaurant", restaurantID, "err", err)
			}
		}
		out = append(out, e)
	}
	return out, mapErr(rows.Err())
}

// SetOwner links (or with an empty userID, unlinks) the restaurant's owner account.
func (p *PostgresStore) SetOwner(ctx context.Context, id, userID string) (Restaurant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Restaurant{}, ErrNotFound
	}
	r, err := scanRestaurant(p.db.QueryRow(ctx, `
UPDATE restaurants SET owner_id=$2, updated_at=NOW() WHERE id=$1
RETURNING `+restaurantColumns, id, optional(userID)))
	return r, mapErr(err)
}

// SetActive toggles a restaurant's active flag.
func (p *PostgresStore) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := p.db.Exec(ctx, `UPDATE restaurants SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed ingests restaurants with their menus. Each restaurant is written in its own transaction
// and skipped when its subdomain already exists.
func (p *PostgresStore) Seed(ctx context.Context, entries []SeedRestaurant) error {
	for i, e := range entries {
		sub := subdomain.Normalize(e.Subdomain)
		if res := subdomain.Validate(sub); !res.Valid {
			return fmt.Errorf("seed %d: %w", i, &InvalidSubdomainError{Subdomain: sub, Reason: res.Reason})
		}
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		err := db.InTx(ctx, p.db, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, `INSERT INTO restaurants(id, name, subdomain, description, owner_id, is_active)
VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (subdomain) DO NOTHING`,
				id, e.Name, sub, optional(e.Description), optional(e.OwnerID), !e.Inactive)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil
			}
			for _, c := range e.Categories {
				catID := uuid.NewString()
				if _, err := tx.Exec(ctx, `INSERT INTO menu_categories(id, restaurant_id, name, "order") VALUES ($1,$2,$3,$4)`,
					catID, id, c.Name, c.Order); err != nil {
					return err
				}
				for _, it := range c.Items {
					if _, err := tx.Exec(ctx, `INSERT INTO menu_items(id, category_id, name, description, price, is_available) VALUES ($1,$2,$3,$4,$5,$6)`,
						uuid.NewString(), catID, it.Name, optional(it.Description), it.Price, !it.Unavailable); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("seed %q: %w", sub, mapErr(err))
		}
		p.log.Debugw("seeded restaurant", "subdomain", sub)
	}
	return nil
}

// mapErr converts driver errors to the package's sentinel errors.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicateSubdomain
	}
	return fmt.Errorf("datastore: %w", err)
}
