package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.DB.Query(ctx, "SELECT role_id, role_name FROM roles ORDER BY role_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.RoleID, &role.RoleName); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, "SELECT department_id, department_name FROM departments ORDER BY department_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var dept Department
		if err := rows.Scan(&dept.DepartmentID, &dept.DepartmentName); err != nil {
			return nil, err
		}
		departments = append(departments, dept)
	}
	return departments, rows.Err()
}

func (s *Store) Profile(ctx context.Context, employeeID int64) (Profile, error) {
	var profile Profile
	err := s.DB.QueryRow(ctx, `
    SELECT e.manager_id, m.employee_name
    FROM employees e
    LEFT JOIN employees m ON e.manager_id = m.employee_id
    WHERE e.employee_id = $1
  `, employeeID).Scan(&profile.ManagerID, &profile.ManagerName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

func (s *Store) ListManagers(ctx context.Context) ([]EmployeeRef, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, employee_name
    FROM employees
    WHERE role_id = $1
    ORDER BY employee_name
  `, RoleManager)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var managers []EmployeeRef
	for rows.Next() {
		var ref EmployeeRef
		if err := rows.Scan(&ref.EmployeeID, &ref.EmployeeName); err != nil {
			return nil, err
		}
		managers = append(managers, ref)
	}
	return managers, rows.Err()
}

// ListPeers returns employees eligible as 360 review subjects, excluding the
// admin, HR and manager roles. The acting reviewer is filtered client-side.
func (s *Store) ListPeers(ctx context.Context) ([]Peer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, employee_name, department_id
    FROM employees
    WHERE role_id != ALL($1)
    ORDER BY employee_name
  `, PeerExcludedRoles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peers []Peer
	for rows.Next() {
		var peer Peer
		if err := rows.Scan(&peer.EmployeeID, &peer.EmployeeName, &peer.DepartmentID); err != nil {
			return nil, err
		}
		peers = append(peers, peer)
	}
	return peers, rows.Err()
}

// UpdateManager lets an employee change their own reporting line. There is no
// manager-side acknowledgement step; a known looseness carried from the
// original design.
func (s *Store) UpdateManager(ctx context.Context, employeeID, newManagerID int64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET manager_id = $1
    WHERE employee_id = $2
  `, newManagerID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) CreateEmployee(ctx context.Context, name, email, passwordHash string, roleID, departmentID int64) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_name, employee_email, password_hash, role_id, department_id, manager_id)
    VALUES ($1, $2, $3, $4, $5, NULL)
    RETURNING employee_id
  `, name, email, passwordHash, roleID, departmentID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrEmailTaken
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (Account, error) {
	var account Account
	err := s.DB.QueryRow(ctx, `
    SELECT e.employee_id, e.employee_name, e.role_id, r.role_name, e.password_hash
    FROM employees e
    JOIN roles r ON e.role_id = r.role_id
    WHERE e.employee_email = $1
  `, email).Scan(&account.EmployeeID, &account.EmployeeName, &account.RoleID, &account.RoleName, &account.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return account, nil
}
