package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockCounter struct {
	total    int
	embedded int
	err      error
}

func (m *mockCounter) Count(_ context.Context) (int, error) { return m.total, m.err }
func (m *mockCounter) CountWithEmbedding(_ context.Context) (int, error) {
	return m.embedded, m.err
}

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockCounter{total: 12, embedded: 10}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("Status = %s, want %s", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK || report.Checks["embedding"] != CheckOK {
		t.Errorf("Checks = %v", report.Checks)
	}
	if report.TotalDocuments != 12 {
		t.Errorf("TotalDocuments = %d, want 12", report.TotalDocuments)
	}
	if report.DocumentsWithEmbeddings != 10 {
		t.Errorf("DocumentsWithEmbeddings = %d, want 10", report.DocumentsWithEmbeddings)
	}
}

func TestCheck_StoreDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("refused")}, &mockCounter{total: 12}, nil)

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("database check = %s", report.Checks["database"])
	}
	if report.TotalDocuments != 0 {
		t.Error("counters must stay zero when the store is down")
	}
}

func TestCheck_EmbeddingDown(t *testing.T) {
	svc := New(&mockPinger{}, &mockCounter{}, &mockChecker{err: errors.New("api error")})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("Status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["embedding"] != CheckError {
		t.Errorf("embedding check = %s", report.Checks["embedding"])
	}
}

func TestCheck_NilEmbeddingChecker(t *testing.T) {
	svc := New(&mockPinger{}, &mockCounter{}, nil)

	report := svc.Check(context.Background())
	if _, ok := report.Checks["embedding"]; ok {
		t.Error("nil embedding checker must not report a check")
	}
	if report.Status != Healthy {
		t.Errorf("Status = %s, want %s", report.Status, Healthy)
	}
}
