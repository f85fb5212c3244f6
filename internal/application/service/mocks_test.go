package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/expensedesk/reimbursement-backoffice/internal/application/port"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

// In-memory fakes shared by the service tests. They implement the ports with
// map-backed state plus optional func-field overrides for failure injection.

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*entity.ReimbursementRequest

	createFunc func(ctx context.Context, r *entity.ReimbursementRequest) error
	listFunc   func(ctx context.Context, f port.RequestFilter) ([]*entity.ReimbursementRequest, int, error)
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entity.ReimbursementRequest)}
}

func cloneRequest(r *entity.ReimbursementRequest) *entity.ReimbursementRequest {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func (f *fakeRequestRepo) Create(ctx context.Context, r *entity.ReimbursementRequest) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, r)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.ID] = cloneRequest(r)
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*entity.ReimbursementRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || !r.Active {
		return nil, nil
	}
	return cloneRequest(r), nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, r *entity.ReimbursementRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.ID] = cloneRequest(r)
	return nil
}

func (f *fakeRequestRepo) Deactivate(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.requests[id]; ok {
		r.Active = false
		r.UpdatedAt = at
	}
	return nil
}

func (f *fakeRequestRepo) List(ctx context.Context, filter port.RequestFilter) ([]*entity.ReimbursementRequest, int, error) {
	if f.listFunc != nil {
		return f.listFunc(ctx, filter)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*entity.ReimbursementRequest
	for _, r := range f.requests {
		if !r.Active {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		matched = append(matched, cloneRequest(r))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	attachments map[int64]*entity.Attachment

	createFunc func(ctx context.Context, a *entity.Attachment) error
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[int64]*entity.Attachment)}
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, a *entity.Attachment) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, a)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	c := *a
	f.attachments[a.ID] = &c
	return nil
}

func (f *fakeAttachmentRepo) GetByID(ctx context.Context, id int64) (*entity.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.attachments[id]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (f *fakeAttachmentRepo) ListByRequestID(ctx context.Context, requestID string) ([]*entity.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Attachment
	for _, a := range f.attachments {
		if a.RequestID == requestID && a.Active {
			c := *a
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAttachmentRepo) CountByRequestID(ctx context.Context, requestID string) (int, error) {
	list, _ := f.ListByRequestID(ctx, requestID)
	return len(list), nil
}

func (f *fakeAttachmentRepo) Deactivate(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.attachments[id]; ok {
		a.Active = false
	}
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []*entity.StatusHistoryEntry

	createFunc func(ctx context.Context, e *entity.StatusHistoryEntry) error
}

func (f *fakeHistoryRepo) Create(ctx context.Context, e *entity.StatusHistoryEntry) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, e)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	c := *e
	f.entries = append(f.entries, &c)
	return nil
}

func (f *fakeHistoryRepo) ListByRequestID(ctx context.Context, requestID string) ([]*entity.StatusHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.StatusHistoryEntry
	for _, e := range f.entries {
		if e.RequestID == requestID {
			c := *e
			out = append(out, &c)
		}
	}
	// Changed-at descending, matching the repository contract.
	sort.Slice(out, func(i, j int) bool {
		if out[i].ChangedAt.Equal(out[j].ChangedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].ChangedAt.After(out[j].ChangedAt)
	})
	return out, nil
}

type fakeTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.withTransactionFunc != nil {
		return f.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type fakeDirectory struct {
	lookupFunc func(ctx context.Context, employeeID string) (*port.DirectoryEntry, error)
}

func (f *fakeDirectory) Lookup(ctx context.Context, employeeID string) (*port.DirectoryEntry, error) {
	if f.lookupFunc != nil {
		return f.lookupFunc(ctx, employeeID)
	}
	return &port.DirectoryEntry{Name: "Ana Souza", RegistrationNumber: "EMP-0042"}, nil
}

type fakeActors struct {
	displayNameFunc func(ctx context.Context, userID string) (string, error)
}

func (f *fakeActors) DisplayName(ctx context.Context, userID string) (string, error) {
	if f.displayNameFunc != nil {
		return f.displayNameFunc(ctx, userID)
	}
	return "Carlos Lima", nil
}

type fakeStorage struct {
	mu    sync.Mutex
	files map[string][]byte

	saveFunc func(relativePath string, content []byte) (string, error)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(relativePath string, content []byte) (string, error) {
	if f.saveFunc != nil {
		return f.saveFunc(relativePath, content)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[relativePath] = content
	return "/storage/" + relativePath, nil
}

func (f *fakeStorage) Remove(relativePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, relativePath)
	return nil
}

func (f *fakeStorage) AbsolutePath(relativePath string) (string, error) {
	return "/storage/" + relativePath, nil
}
