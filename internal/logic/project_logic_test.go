package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/storage"
)

func newProjectLogic(t *testing.T, f *donationFixture) *ProjectLogic {
	t.Helper()
	files, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return NewProjectLogic(f.db, files)
}

func TestCreateProjectValidation(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()

	cases := []struct {
		name    string
		project model.ProjectModel
	}{
		{"empty title", model.ProjectModel{TargetAmount: decimal.NewFromInt(1), StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}},
		{"zero target", model.ProjectModel{Title: "x", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}},
		{"start after end", model.ProjectModel{Title: "x", TargetAmount: decimal.NewFromInt(1), StartTime: time.Now().Add(2 * time.Hour), EndTime: time.Now().Add(time.Hour)}},
		{"already ended", model.ProjectModel{Title: "x", TargetAmount: decimal.NewFromInt(1), StartTime: time.Now().Add(-2 * time.Hour), EndTime: time.Now().Add(-time.Hour)}},
		{"min above max", model.ProjectModel{Title: "x", TargetAmount: decimal.NewFromInt(1), StartTime: time.Now(), EndTime: time.Now().Add(time.Hour), MinAmount: decimal.NewFromInt(10), MaxAmount: decimal.NewFromInt(5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			project := tc.project
			if err := projects.CreateProject(ctx, &project); !errors.Is(err, appErrors.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}

	project := &model.ProjectModel{
		Title:         "Library",
		TargetAmount:  decimal.NewFromInt(500000),
		CurrentAmount: decimal.NewFromInt(999), // 会被重置
		DonorCount:    3,
		StartTime:     time.Now().Add(time.Hour),
		EndTime:       time.Now().Add(48 * time.Hour),
	}
	if err := projects.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if project.Status != model.ProjectStatusPending || !project.CurrentAmount.IsZero() || project.DonorCount != 0 {
		t.Errorf("created project = %+v", project)
	}
}

func TestDeleteProjectDetachesDonations(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()
	creator := int64(10)
	project := f.createProject(t, 1000000, &creator)

	donation := f.createDonation(t, project.Id, 50000, nil)
	if _, err := f.logic.BeginPayment(ctx, donation.OrderId); err != nil {
		t.Fatalf("BeginPayment: %v", err)
	}
	if _, err := f.logic.ConfirmPayment(ctx, donation.OrderId, "pg-token"); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	media, err := projects.AddMedia(ctx, Actor{UserId: creator}, project.Id, model.MediaKindImage, "cover.png", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	if media.Path == "" || media.Size != 3 {
		t.Errorf("media = %+v", media)
	}

	if err := projects.DeleteProject(ctx, Actor{UserId: 99}, project.Id); !errors.Is(err, appErrors.ErrForbidden) {
		t.Fatalf("non-owner delete: expected ErrForbidden, got %v", err)
	}
	if err := projects.DeleteProject(ctx, Actor{UserId: creator}, project.Id); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	if _, _, err := projects.GetProject(ctx, project.Id); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("deleted project: expected ErrNotFound, got %v", err)
	}

	kept, err := f.logic.GetDonationByOrderId(ctx, donation.OrderId)
	if err != nil {
		t.Fatalf("donation should survive project deletion: %v", err)
	}
	if kept.ProjectId != nil || kept.Status != model.DonationStatusCompleted {
		t.Errorf("detached donation = %+v", kept)
	}
}

func TestConfirmAfterProjectDeletedStillCompletes(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()
	project := f.createProject(t, 1000000, nil)

	donation := f.createDonation(t, project.Id, 50000, nil)
	if _, err := f.logic.BeginPayment(ctx, donation.OrderId); err != nil {
		t.Fatalf("BeginPayment: %v", err)
	}
	if err := projects.DeleteProject(ctx, Actor{IsAdmin: true}, project.Id); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}

	completed, err := f.logic.ConfirmPayment(ctx, donation.OrderId, "pg-token")
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if completed.Status != model.DonationStatusCompleted || completed.ProjectId != nil {
		t.Errorf("completed = %+v", completed)
	}
}

func TestProjectStatsAndSummary(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()
	project := f.createProject(t, 200000, nil)
	f.createProject(t, 100000, nil)

	donation := f.createDonation(t, project.Id, 50000, int64Ptr(1))
	if _, err := f.logic.BeginPayment(ctx, donation.OrderId); err != nil {
		t.Fatalf("BeginPayment: %v", err)
	}
	if _, err := f.logic.ConfirmPayment(ctx, donation.OrderId, "pg-token"); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	stats, err := projects.GetProjectStats(ctx, project.Id)
	if err != nil {
		t.Fatalf("GetProjectStats: %v", err)
	}
	if stats.CompletionPercentage != 25 || stats.DonorCount != 1 {
		t.Errorf("stats = %+v", stats)
	}

	summary, err := projects.GetAllProjectStats(ctx)
	if err != nil {
		t.Fatalf("GetAllProjectStats: %v", err)
	}
	if summary.TotalProjects != 2 || summary.ActiveProjects != 2 {
		t.Errorf("summary counts = %+v", summary)
	}
	if !summary.TotalRaised.Equal(decimal.NewFromInt(50000)) || !summary.TotalGoal.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("summary amounts = %s/%s", summary.TotalRaised, summary.TotalGoal)
	}
	if summary.TotalDonations != 1 || summary.TotalDonors != 1 {
		t.Errorf("summary donors = %d/%d", summary.TotalDonations, summary.TotalDonors)
	}
}

func TestUpdateProjectStatuses(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()
	now := time.Now()

	starting := &model.ProjectModel{Title: "starting", TargetAmount: decimal.NewFromInt(100),
		StartTime: now.Add(-time.Minute), EndTime: now.Add(time.Hour), Status: model.ProjectStatusPending}
	funded := &model.ProjectModel{Title: "funded", TargetAmount: decimal.NewFromInt(100), CurrentAmount: decimal.NewFromInt(150),
		StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Minute), Status: model.ProjectStatusActive}
	short := &model.ProjectModel{Title: "short", TargetAmount: decimal.NewFromInt(100), CurrentAmount: decimal.NewFromInt(10),
		StartTime: now.Add(-2 * time.Hour), EndTime: now.Add(-time.Minute), Status: model.ProjectStatusActive}
	for _, p := range []*model.ProjectModel{starting, funded, short} {
		if err := f.projects.Create(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.Title, err)
		}
	}

	if err := projects.UpdateProjectStatuses(ctx); err != nil {
		t.Fatalf("UpdateProjectStatuses: %v", err)
	}

	want := map[int64]model.ProjectStatus{
		starting.Id: model.ProjectStatusActive,
		funded.Id:   model.ProjectStatusSuccess,
		short.Id:    model.ProjectStatusFailed,
	}
	for id, status := range want {
		if got := f.project(t, id).Status; got != status {
			t.Errorf("project %d status = %s, want %s", id, got, status)
		}
	}
}

func TestUpdateAndCancelProject(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()
	creator := int64(10)
	project := f.createProject(t, 1000000, &creator)

	title := "New title"
	updated, err := projects.UpdateProject(ctx, Actor{UserId: creator}, project.Id, ProjectUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title = %s", updated.Title)
	}

	if _, err := projects.CancelProject(ctx, Actor{UserId: 11}, project.Id); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("non-owner cancel: expected ErrForbidden, got %v", err)
	}
	cancelled, err := projects.CancelProject(ctx, Actor{UserId: creator}, project.Id)
	if err != nil || cancelled.Status != model.ProjectStatusCancelled {
		t.Fatalf("CancelProject: %v, %v", cancelled, err)
	}
	if _, err := projects.UpdateProject(ctx, Actor{UserId: creator}, project.Id, ProjectUpdate{Title: &title}); !errors.Is(err, appErrors.ErrInvalidState) {
		t.Errorf("update cancelled: expected ErrInvalidState, got %v", err)
	}
}

func TestRemoveMedia(t *testing.T) {
	f := newDonationFixture(t)
	projects := newProjectLogic(t, f)
	ctx := context.Background()
	creator := int64(10)
	project := f.createProject(t, 1000000, &creator)

	media, err := projects.AddMedia(ctx, Actor{UserId: creator}, project.Id, model.MediaKindDocument, "plan.pdf", "application/pdf", []byte("pdf"))
	if err != nil {
		t.Fatalf("AddMedia: %v", err)
	}
	if _, err := projects.AddMedia(ctx, Actor{UserId: creator}, project.Id, "video", "x.mp4", "video/mp4", []byte("x")); !errors.Is(err, appErrors.ErrValidation) {
		t.Errorf("bad kind: expected ErrValidation, got %v", err)
	}

	if err := projects.RemoveMedia(ctx, Actor{UserId: creator}, project.Id, media.Id); err != nil {
		t.Fatalf("RemoveMedia: %v", err)
	}
	if err := projects.RemoveMedia(ctx, Actor{UserId: creator}, project.Id, media.Id); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("second remove: expected ErrNotFound, got %v", err)
	}
}
