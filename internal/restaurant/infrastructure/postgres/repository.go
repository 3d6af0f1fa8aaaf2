package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dongju2-lee/sample-micro-app/internal/restaurant/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS restaurants (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			address     TEXT NOT NULL DEFAULT '',
			phone       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS menus (
			id            BIGSERIAL PRIMARY KEY,
			restaurant_id BIGINT NOT NULL REFERENCES restaurants(id),
			name          TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			price_cents   BIGINT NOT NULL,
			image_url     TEXT NOT NULL DEFAULT '',
			is_available  BOOLEAN NOT NULL DEFAULT true,
			inventory     INT NOT NULL DEFAULT 100 CHECK (inventory >= 0),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// Seed inserts sample restaurants and menus when the catalog is empty.
func (r *Repository) Seed(ctx context.Context) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM restaurants`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	type seedMenu struct {
		name       string
		desc       string
		priceCents int64
		inventory  int
	}
	seeds := []struct {
		name    string
		address string
		phone   string
		desc    string
		menus   []seedMenu
	}{
		{entryChicken, "Gangnam-gu 123-45, Seoul", "02-1234-5678", "fried chicken specialists", []seedMenu{
			{"fried chicken", "crispy fried chicken", 18000, 100},
			{"seasoned chicken", "sweet and spicy", 19000, 100},
		}},
		{entryPizza, "Seocho-gu 456-78, Seoul", "02-5678-1234", "fresh ingredient pizza", []seedMenu{
			{"pepperoni pizza", "classic pepperoni", 20000, 50},
			{"bulgogi pizza", "korean style bulgogi", 22000, 50},
		}},
		{entrySalad, "Songpa-gu 789-12, Seoul", "02-9876-5432", "salads for a healthy meal", []seedMenu{
			{"caesar salad", "fresh greens, caesar dressing", 12000, 80},
			{"greek salad", "feta and olive oil", 13000, 80},
		}},
	}

	for _, s := range seeds {
		var restaurantID int64
		err := tx.QueryRow(ctx, `INSERT INTO restaurants (name, address, phone, description) VALUES ($1,$2,$3,$4) RETURNING id`,
			s.name, s.address, s.phone, s.desc).Scan(&restaurantID)
		if err != nil {
			return err
		}
		for _, m := range s.menus {
			_, err := tx.Exec(ctx, `INSERT INTO menus (restaurant_id, name, description, price_cents, inventory) VALUES ($1,$2,$3,$4,$5)`,
				restaurantID, m.name, m.desc, m.priceCents, m.inventory)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

const (
	entryChicken = "tasty chicken"
	entryPizza   = "happy pizza"
	entrySalad   = "fresh salad"
)

func (r *Repository) ListMenus(ctx context.Context) ([]domain.Menu, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, restaurant_id, name, description, price_cents, image_url, is_available, inventory, created_at FROM menus ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []domain.Menu
	for rows.Next() {
		var m domain.Menu
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.PriceCents, &m.ImageURL, &m.Available, &m.Inventory, &m.CreatedAt); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

func (r *Repository) GetMenu(ctx context.Context, id int64) (domain.Menu, error) {
	var m domain.Menu
	err := r.pool.QueryRow(ctx, `SELECT id, restaurant_id, name, description, price_cents, image_url, is_available, inventory, created_at FROM menus WHERE id=$1`, id).
		Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.PriceCents, &m.ImageURL, &m.Available, &m.Inventory, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Menu{}, domain.ErrMenuNotFound
		}
		return domain.Menu{}, err
	}
	return m, nil
}

func (r *Repository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address, phone, description, created_at FROM restaurants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.Phone, &rest.Description, &rest.CreatedAt); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}
	return restaurants, rows.Err()
}

// Reserve takes a row lock on the menu, verifies sufficient stock and
// decrements inside one transaction. SELECT FOR UPDATE serializes concurrent
// reservations per menu; rows for different menus never block each other.
func (r *Repository) Reserve(ctx context.Context, menuID int64, qty int) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var inventory int
	err = tx.QueryRow(ctx, `SELECT inventory FROM menus WHERE id=$1 FOR UPDATE`, menuID).Scan(&inventory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrMenuNotFound
		}
		return 0, err
	}
	if inventory < qty {
		return inventory, fmt.Errorf("menu %d has %d, want %d: %w", menuID, inventory, qty, domain.ErrInsufficientStock)
	}

	remaining := inventory - qty
	_, err = tx.Exec(ctx, `UPDATE menus SET inventory=$2, is_available=($2 > 0) WHERE id=$1`, menuID, remaining)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}

// Release restores quantity under the same row lock. It never rejects: the
// caller is compensating a prior reservation.
func (r *Repository) Release(ctx context.Context, menuID int64, qty int) (int, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var inventory int
	err = tx.QueryRow(ctx, `SELECT inventory FROM menus WHERE id=$1 FOR UPDATE`, menuID).Scan(&inventory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrMenuNotFound
		}
		return 0, err
	}

	remaining := inventory + qty
	_, err = tx.Exec(ctx, `UPDATE menus SET inventory=$2, is_available=true WHERE id=$1`, menuID, remaining)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return remaining, nil
}
