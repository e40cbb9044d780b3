package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"shiftswap/internal/domain/auth"
	"shiftswap/internal/platform/config"
)

// Seed installs the baseline data a fresh installation needs: the two
// shift templates, the standard rooms, and an administrative login.
// Every step is idempotent so the seed can run on each boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureShiftTemplates(ctx, pool); err != nil {
		return err
	}

	if err := ensureRooms(ctx, pool); err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureShiftTemplates(ctx context.Context, pool *pgxpool.Pool) error {
	templates := []struct {
		name  string
		start string
		end   string
	}{
		{"AM", "07:00", "14:00"},
		{"PM", "13:30", "20:30"},
	}

	for _, tpl := range templates {
		_, err := pool.Exec(ctx, `
      INSERT INTO shift_templates (name, start_time, end_time)
      VALUES ($1, $2::time, $3::time)
      ON CONFLICT (name) DO NOTHING
    `, tpl.name, tpl.start, tpl.end)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRooms(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range []string{"Room 1", "Room 2", "Room 3", "Reception"} {
		_, err := pool.Exec(ctx, "INSERT INTO rooms (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (email, password_hash, role_name)
    VALUES ($1, $2, $3)
  `, email, hash, auth.RoleAdmin)
	return err
}
