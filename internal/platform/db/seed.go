package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"apas/internal/domain/auth"
	"apas/internal/domain/core"
	"apas/internal/platform/config"
)

func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureRoles(ctx, pool); err != nil {
		return err
	}

	if err := ensureDepartments(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		if err := ensureAdmin(ctx, pool, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return err
		}
	}

	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) error {
	roles := map[int64]string{
		core.RoleSystemAdmin: "System Admin",
		core.RoleHR:          "HR",
		core.RoleManager:     "Manager",
		core.RoleEmployee:    "Employee",
	}
	for id, name := range roles {
		if _, err := pool.Exec(ctx, `
      INSERT INTO roles (role_id, role_name)
      VALUES ($1, $2)
      ON CONFLICT (role_id) DO NOTHING
    `, id, name); err != nil {
			return err
		}
	}
	_, err := pool.Exec(ctx, "SELECT setval('roles_role_id_seq', (SELECT MAX(role_id) FROM roles))")
	return err
}

func ensureDepartments(ctx context.Context, pool *pgxpool.Pool) error {
	for _, name := range []string{"Engineering", "Finance", "Human Resources", "Operations"} {
		if _, err := pool.Exec(ctx, `
      INSERT INTO departments (department_name)
      VALUES ($1)
      ON CONFLICT (department_name) DO NOTHING
    `, name); err != nil {
			return err
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, name, email, password string) error {
	var id int64
	err := pool.QueryRow(ctx, "SELECT employee_id FROM employees WHERE employee_email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO employees (employee_name, employee_email, password_hash, role_id, department_id, manager_id)
    VALUES ($1, $2, $3, $4, (SELECT department_id FROM departments WHERE department_name = 'Human Resources'), NULL)
  `, name, email, hash, core.RoleHR)
	return err
}
