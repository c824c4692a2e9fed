package mocks

import (
	"context"
	"sync"

	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
)

// MockGateway is an in-memory implementation of the Gateway port for testing
type MockGateway struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]*domain.StoredFile

	addErr    error
	listErr   error
	getErr    error
	deleteErr error

	listCalls   int
	getCalls    int
	deleteCalls int
}

// NewMockGateway creates an empty mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		nextID:  1,
		records: make(map[int64]*domain.StoredFile),
	}
}

func (m *MockGateway) Add(ctx context.Context, file domain.NewFile) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.addErr != nil {
		return 0, m.addErr
	}

	id := m.nextID
	m.nextID++

	payload := make([]byte, len(file.Payload))
	copy(payload, file.Payload)

	m.records[id] = &domain.StoredFile{
		FileMeta: domain.FileMeta{
			ID:                  id,
			Name:                file.Name,
			MimeType:            file.MimeType,
			SizeBytes:           file.SizeBytes(),
			LastModifiedEpochMs: file.LastModifiedEpochMs,
			Category:            domain.Classify(file.MimeType),
		},
		Payload: payload,
	}
	return id, nil
}

func (m *MockGateway) List(ctx context.Context) ([]domain.FileMeta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := make([]domain.FileMeta, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.FileMeta)
	}
	return out, nil
}

func (m *MockGateway) Get(ctx context.Context, id int64) (*domain.StoredFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}

	r, ok := m.records[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.Payload = append([]byte(nil), r.Payload...)
	return &cp, nil
}

func (m *MockGateway) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.records, id)
	return nil
}

// Seed inserts a record with a fixed id and category, bypassing classification.
// Useful for legacy rows that have no category.
func (m *MockGateway) Seed(file domain.StoredFile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[file.ID] = &file
	if file.ID >= m.nextID {
		m.nextID = file.ID + 1
	}
}

// Len returns the number of stored records
func (m *MockGateway) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// SetAddError makes every Add fail with err (nil clears it)
func (m *MockGateway) SetAddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addErr = err
}

// SetListError makes every List fail with err (nil clears it)
func (m *MockGateway) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// SetGetError makes every Get fail with err (nil clears it)
func (m *MockGateway) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// SetDeleteError makes every Delete fail with err (nil clears it)
func (m *MockGateway) SetDeleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

// ListCalls returns how many times List was called
func (m *MockGateway) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// GetCalls returns how many times Get was called
func (m *MockGateway) GetCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCalls
}

// DeleteCalls returns how many times Delete was called
func (m *MockGateway) DeleteCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.deleteCalls
}

// --- MockMaintenance ---

// Backfill fills in categories for seeded legacy rows
func (m *MockGateway) Backfill(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, r := range m.records {
		if r.Category == "" {
			r.Category = domain.Classify(r.MimeType)
			n++
		}
	}
	return n, nil
}

func (m *MockGateway) SchemaVersion(ctx context.Context) (int64, error) {
	return 2, nil
}

func (m *MockGateway) UsageBytes(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, r := range m.records {
		total += r.SizeBytes
	}
	return total, nil
}

// --- MockFileOpener ---

type MockFileOpener struct {
	mu         sync.Mutex
	calls      []string
	shouldFail bool
	failError  error
}

func NewMockFileOpener() *MockFileOpener {
	return &MockFileOpener{}
}

func (m *MockFileOpener) Open(ctx context.Context, path string, viewer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, path)
	if m.shouldFail {
		return m.failError
	}
	return nil
}

func (m *MockFileOpener) SetShouldFail(fail bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
	m.failError = err
}

func (m *MockFileOpener) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// --- MockPDFExtractor ---

type MockPDFExtractor struct {
	Text string
	Err  error
}

func (m *MockPDFExtractor) ExtractText(data []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// --- MockImageRenderer ---

type MockImageRenderer struct {
	Art string
	Err error

	mu    sync.Mutex
	calls int
}

func (m *MockImageRenderer) Render(data []byte, cols, rows int) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Art, nil
}

func (m *MockImageRenderer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
