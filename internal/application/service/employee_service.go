package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
	"github.com/expensedesk/reimbursement-backoffice/pkg/utils"
)

// EmployeeInput carries the fields accepted for directory writes.
type EmployeeInput struct {
	Name               string
	RegistrationNumber string
	Email              string
	Department         string
}

// EmployeeService is the collaborator directory: plain CRUD plus the Lookup
// used by the lifecycle manager for display enrichment.
type EmployeeService interface {
	port.EmployeeDirectory

	Create(ctx context.Context, in EmployeeInput) (*entity.Employee, error)
	Get(ctx context.Context, id string) (*entity.Employee, error)
	Update(ctx context.Context, id string, in EmployeeInput) (*entity.Employee, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int) ([]*entity.Employee, int, error)
}

type employeeServiceImpl struct {
	repo   port.EmployeeRepository
	logger *zap.Logger
}

// NewEmployeeService creates the directory service.
func NewEmployeeService(repo port.EmployeeRepository, logger *zap.Logger) EmployeeService {
	return &employeeServiceImpl{repo: repo, logger: logger}
}

func validateEmployeeInput(in EmployeeInput) error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(in.RegistrationNumber) == "" {
		verr.Add("registration_number", "registration number is required")
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		verr.Add("email", err.Error())
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *employeeServiceImpl) Create(ctx context.Context, in EmployeeInput) (*entity.Employee, error) {
	if err := validateEmployeeInput(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	employee := &entity.Employee{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(in.Name),
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
		Email:              in.Email,
		Department:         in.Department,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}

	s.logger.Info("Employee created",
		zap.String("employee_id", employee.ID),
		zap.String("registration_number", employee.RegistrationNumber))
	return employee, nil
}

func (s *employeeServiceImpl) Get(ctx context.Context, id string) (*entity.Employee, error) {
	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if employee == nil || !employee.Active {
		return nil, fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, id)
	}
	return employee, nil
}

func (s *employeeServiceImpl) Update(ctx context.Context, id string, in EmployeeInput) (*entity.Employee, error) {
	if err := validateEmployeeInput(in); err != nil {
		return nil, err
	}

	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.Name = strings.TrimSpace(in.Name)
	employee.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	employee.Email = in.Email
	employee.Department = in.Department
	employee.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return employee, nil
}

func (s *employeeServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	s.logger.Info("Employee soft-deleted", zap.String("employee_id", id))
	return nil
}

func (s *employeeServiceImpl) List(ctx context.Context, page, pageSize int) ([]*entity.Employee, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = port.DefaultPageSize
	}
	if pageSize > port.MaxPageSize {
		pageSize = port.MaxPageSize
	}

	employees, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return employees, total, nil
}

// Lookup resolves a collaborator id to display fields. A missing employee
// yields (nil, nil) so that enrichment callers can proceed without it.
func (s *employeeServiceImpl) Lookup(ctx context.Context, employeeID string) (*port.DirectoryEntry, error) {
	employee, err := s.repo.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("lookup employee: %w", err)
	}
	if employee == nil {
		return nil, nil
	}
	return &port.DirectoryEntry{
		Name:               employee.Name,
		RegistrationNumber: employee.RegistrationNumber,
	}, nil
}
