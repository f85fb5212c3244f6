package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

type fakeEmployeeRepo struct {
	mu        sync.Mutex
	employees map[string]*entity.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*entity.Employee)}
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *e
	f.employees[e.ID] = &c
	return nil
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (*entity.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.employees[id]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (f *fakeEmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *e
	f.employees[e.ID] = &c
	return nil
}

func (f *fakeEmployeeRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.employees[id]; ok {
		e.Active = false
		e.UpdatedAt = at
	}
	return nil
}

func (f *fakeEmployeeRepo) List(ctx context.Context, limit, offset int) ([]*entity.Employee, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*entity.Employee
	for _, e := range f.employees {
		if e.Active {
			c := *e
			active = append(active, &c)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].RegistrationNumber < active[j].RegistrationNumber })

	total := len(active)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return active[offset:end], total, nil
}

func newTestEmployeeService(t *testing.T) (EmployeeService, *fakeEmployeeRepo) {
	t.Helper()
	repo := newFakeEmployeeRepo()
	return NewEmployeeService(repo, zap.NewNop()), repo
}

func validEmployeeInput() EmployeeInput {
	return EmployeeInput{
		Name:               "Ana Souza",
		RegistrationNumber: "EMP-0042",
		Email:              "ana.souza@example.com",
		Department:         "Engineering",
	}
}

func TestEmployeeService_CRUD(t *testing.T) {
	svc, _ := newTestEmployeeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmployeeInput())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", got.Name)

	updated, err := svc.Update(ctx, created.ID, EmployeeInput{
		Name:               "Ana Souza Lima",
		RegistrationNumber: "EMP-0042",
		Email:              "ana.lima@example.com",
		Department:         "Platform",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza Lima", updated.Name)
	assert.Equal(t, "Platform", updated.Department)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEmployeeService_Validation(t *testing.T) {
	svc, _ := newTestEmployeeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, EmployeeInput{Email: "not-an-email"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "registration_number")
	assert.Contains(t, verr.Fields, "email")

	_, err = svc.Update(ctx, "whatever", EmployeeInput{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestEmployeeService_List(t *testing.T) {
	svc, _ := newTestEmployeeService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		in := validEmployeeInput()
		in.RegistrationNumber = fmt.Sprintf("EMP-%04d", i)
		in.Email = fmt.Sprintf("emp%d@example.com", i)
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	t.Run("defaults apply to out-of-range paging", func(t *testing.T) {
		items, total, err := svc.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 15, total)
		assert.Len(t, items, 10)
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		items, total, err := svc.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, 15, total)
		assert.Len(t, items, 5)
	})

	t.Run("oversized page size is clamped", func(t *testing.T) {
		items, _, err := svc.List(ctx, 1, 500)
		require.NoError(t, err)
		assert.Len(t, items, 15)
	})
}

func TestEmployeeService_Lookup(t *testing.T) {
	svc, _ := newTestEmployeeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEmployeeInput())
	require.NoError(t, err)

	entry, err := svc.Lookup(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Ana Souza", entry.Name)
	assert.Equal(t, "EMP-0042", entry.RegistrationNumber)

	// Missing collaborators resolve to nil so enrichment can degrade.
	entry, err = svc.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
