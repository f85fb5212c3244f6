package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// EmployeeRepository implements port.EmployeeRepository
type EmployeeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *sql.DB, logger *zap.Logger) port.EmployeeRepository {
	return &EmployeeRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new employee
func (r *EmployeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	query := `
		INSERT INTO employees (
			id, name, registration_number, email, department,
			active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		employee.ID,
		employee.Name,
		employee.RegistrationNumber,
		employee.Email,
		employee.Department,
		employee.Active,
		employee.CreatedAt,
		employee.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create employee", zap.String("id", employee.ID), zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}

	return nil
}

// GetByID retrieves an employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	query := `
		SELECT id, name, registration_number, email, department,
			active, created_at, updated_at
		FROM employees
		WHERE id = ?
	`

	var employee entity.Employee
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&employee.ID,
		&employee.Name,
		&employee.RegistrationNumber,
		&employee.Email,
		&employee.Department,
		&employee.Active,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get employee by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}

	return &employee, nil
}

// Update persists the mutable fields of an employee
func (r *EmployeeRepository) Update(ctx context.Context, employee *entity.Employee) error {
	query := `
		UPDATE employees SET
			name = ?, registration_number = ?, email = ?, department = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		employee.Name,
		employee.RegistrationNumber,
		employee.Email,
		employee.Department,
		employee.UpdatedAt,
		employee.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update employee", zap.String("id", employee.ID), zap.Error(err))
		return fmt.Errorf("failed to update employee: %w", err)
	}

	return nil
}

// Deactivate soft-deletes an employee
func (r *EmployeeRepository) Deactivate(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE employees SET active = 0, updated_at = ? WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to deactivate employee", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}

	return nil
}

// List retrieves active employees ordered by registration number, plus the
// total active count for pagination.
func (r *EmployeeRepository) List(ctx context.Context, limit, offset int) ([]*entity.Employee, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM employees WHERE active = 1`
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		r.logger.Error("Failed to count employees", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := `
		SELECT id, name, registration_number, email, department,
			active, created_at, updated_at
		FROM employees
		WHERE active = 1
		ORDER BY registration_number ASC
		LIMIT ? OFFSET ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list employees", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*entity.Employee
	for rows.Next() {
		var employee entity.Employee
		err := rows.Scan(
			&employee.ID,
			&employee.Name,
			&employee.RegistrationNumber,
			&employee.Email,
			&employee.Department,
			&employee.Active,
			&employee.CreatedAt,
			&employee.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, &employee)
	}

	return employees, total, rows.Err()
}

// Verify interface compliance
var _ port.EmployeeRepository = (*EmployeeRepository)(nil)
