package task

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/shopspring/decimal"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/model"
)

type countingJob struct {
	runs atomic.Int32
}

func (j *countingJob) GetName() string { return "counting" }

func (j *countingJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(10 * time.Millisecond)
}

func (j *countingJob) Execute() { j.runs.Add(1) }

func TestManagerRunsRegisteredJobs(t *testing.T) {
	job := &countingJob{}
	m, err := NewManager(job)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	m.Start()
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("job ran %d times before deadline", job.runs.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type fakeProjects struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProjects) UpdateProjectStatuses(ctx context.Context) error {
	f.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	return f.err
}

func TestProjectStatusJob(t *testing.T) {
	projects := &fakeProjects{}
	job := NewProjectStatusJob(projects, time.Minute)
	job.Execute()
	if projects.calls.Load() != 1 {
		t.Errorf("calls = %d", projects.calls.Load())
	}

	// 失败只记录日志
	projects.err = errors.New("db down")
	job.Execute()
	if projects.calls.Load() != 2 {
		t.Errorf("calls = %d", projects.calls.Load())
	}
}

type fakeExpirer struct {
	stale   []model.DonationModel
	ttl     time.Duration
	limit   int
	expired []string
	results map[string]model.DonationStatus
}

func (f *fakeExpirer) ListStalePending(_ context.Context, ttl time.Duration, limit int) ([]model.DonationModel, error) {
	f.ttl, f.limit = ttl, limit
	return f.stale, nil
}

func (f *fakeExpirer) ExpireStalePayment(_ context.Context, orderId string) (*model.DonationModel, error) {
	f.expired = append(f.expired, orderId)
	status, ok := f.results[orderId]
	if !ok {
		return nil, errors.New("boom")
	}
	return &model.DonationModel{OrderId: orderId, Status: status}, nil
}

func TestPendingExpiryJob(t *testing.T) {
	expirer := &fakeExpirer{
		stale: []model.DonationModel{{OrderId: "ORDER_a"}, {OrderId: "ORDER_b"}, {OrderId: "ORDER_c"}},
		results: map[string]model.DonationStatus{
			"ORDER_a": model.DonationStatusFailed,
			"ORDER_c": model.DonationStatusCompleted,
		},
	}
	job := NewPendingExpiryJob(expirer, 30*time.Minute, 0, time.Minute)
	job.Execute()

	if expirer.ttl != 30*time.Minute || expirer.limit != 100 {
		t.Errorf("list args = %s/%d", expirer.ttl, expirer.limit)
	}
	// 单笔失败不影响后续
	if strings.Join(expirer.expired, ",") != "ORDER_a,ORDER_b,ORDER_c" {
		t.Errorf("expired = %v", expirer.expired)
	}
}

type fakeReconciler struct {
	checks     map[int64]*logic.AggregateCheck
	recomputed []int64
}

func (f *fakeReconciler) ProjectIds(context.Context) ([]int64, error) {
	return []int64{1, 2, 3}, nil
}

func (f *fakeReconciler) Check(_ context.Context, projectId int64) (*logic.AggregateCheck, error) {
	check, ok := f.checks[projectId]
	if !ok {
		return nil, errors.New("not found")
	}
	return check, nil
}

func (f *fakeReconciler) Recompute(_ context.Context, projectId int64) (*logic.AggregateSnapshot, error) {
	f.recomputed = append(f.recomputed, projectId)
	return &logic.AggregateSnapshot{ProjectId: projectId}, nil
}

type recordingAlerter struct {
	mu    sync.Mutex
	texts []string
}

func (a *recordingAlerter) Alert(_ context.Context, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.texts = append(a.texts, text)
	return nil
}

func TestAggregateReconcileJob(t *testing.T) {
	reconciler := &fakeReconciler{checks: map[int64]*logic.AggregateCheck{
		1: {ProjectId: 1, CachedAmount: decimal.NewFromInt(100), LedgerAmount: decimal.NewFromInt(100)},
		2: {ProjectId: 2, CachedAmount: decimal.NewFromInt(50), CachedCount: 1, LedgerAmount: decimal.NewFromInt(80), LedgerCount: 2, Drifted: true},
	}}
	alerter := &recordingAlerter{}

	NewAggregateReconcileJob(reconciler, alerter, time.Minute).Execute()

	if len(reconciler.recomputed) != 1 || reconciler.recomputed[0] != 2 {
		t.Errorf("recomputed = %v, want [2]", reconciler.recomputed)
	}
	if len(alerter.texts) != 1 || !strings.Contains(alerter.texts[0], "80") {
		t.Errorf("alerts = %v", alerter.texts)
	}
}
