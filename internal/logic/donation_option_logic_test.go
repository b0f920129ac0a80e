package logic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/repository"
)

func boolPtr(v bool) *bool { return &v }

func TestDonationOptionLifecycle(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()
	options := NewDonationOptionLogic(f.db)
	owner := Actor{UserId: 100}
	stranger := Actor{UserId: 200}
	project := f.createProject(t, 1000000, int64Ptr(owner.UserId))

	for _, tc := range []struct {
		name string
		in   OptionInput
	}{
		{"empty name", OptionInput{Name: "  ", Amount: decimal.NewFromInt(4000)}},
		{"below minimum", OptionInput{Name: "Snack", Amount: decimal.NewFromInt(999)}},
	} {
		if _, err := options.CreateOption(ctx, owner, project.Id, tc.in); !errors.Is(err, appErrors.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
	if _, err := options.CreateOption(ctx, stranger, project.Id, OptionInput{Name: "Meal", Amount: decimal.NewFromInt(4000)}); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("stranger create: expected ErrForbidden, got %v", err)
	}

	meal, err := options.CreateOption(ctx, owner, project.Id, OptionInput{Name: "Meal", Amount: decimal.NewFromInt(4000), DisplayOrder: intPtr(2)})
	if err != nil {
		t.Fatalf("CreateOption: %v", err)
	}
	books, err := options.CreateOption(ctx, owner, project.Id, OptionInput{Name: "Books", Amount: decimal.NewFromInt(15000), IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("CreateOption: %v", err)
	}
	if !meal.IsActive || books.IsActive {
		t.Fatalf("active flags = %v/%v", meal.IsActive, books.IsActive)
	}

	active, err := options.ListOptions(ctx, Actor{}, project.Id, false)
	if err != nil || len(active) != 1 || active[0].Id != meal.Id {
		t.Fatalf("active options = %+v, %v", active, err)
	}
	if _, err := options.ListOptions(ctx, stranger, project.Id, true); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("stranger list all: expected ErrForbidden, got %v", err)
	}
	all, err := options.ListOptions(ctx, owner, project.Id, true)
	if err != nil || len(all) != 2 || all[0].Id != books.Id {
		t.Fatalf("all options ordered by display order = %+v, %v", all, err)
	}

	updated, err := options.UpdateOption(ctx, owner, books.Id, OptionInput{Name: "Books", Amount: decimal.NewFromInt(20000)})
	if err != nil {
		t.Fatalf("UpdateOption: %v", err)
	}
	if !updated.IsActive || !updated.Amount.Equal(decimal.NewFromInt(20000)) || updated.DisplayOrder != books.DisplayOrder {
		t.Errorf("updated = %+v", updated)
	}

	if err := options.DeleteOption(ctx, stranger, meal.Id); !errors.Is(err, appErrors.ErrForbidden) {
		t.Errorf("stranger delete: expected ErrForbidden, got %v", err)
	}
	if err := options.DeleteOption(ctx, owner, meal.Id); err != nil {
		t.Fatalf("DeleteOption: %v", err)
	}
	if _, err := options.GetOption(ctx, meal.Id); !errors.Is(err, appErrors.ErrNotFound) {
		t.Errorf("deleted option: expected ErrNotFound, got %v", err)
	}
}

func intPtr(v int) *int { return &v }

func TestCreateDonationWithSelectedOption(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()
	options := NewDonationOptionLogic(f.db)
	owner := Actor{UserId: 100}
	project := f.createProject(t, 1000000, int64Ptr(owner.UserId))
	otherProject := f.createProject(t, 1000000, int64Ptr(owner.UserId))

	meal, err := options.CreateOption(ctx, owner, project.Id, OptionInput{Name: "Meal", Amount: decimal.NewFromInt(4000)})
	if err != nil {
		t.Fatalf("CreateOption: %v", err)
	}
	retired, err := options.CreateOption(ctx, owner, project.Id, OptionInput{Name: "Old", Amount: decimal.NewFromInt(5000), IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("CreateOption: %v", err)
	}
	foreign, err := options.CreateOption(ctx, owner, otherProject.Id, OptionInput{Name: "Books", Amount: decimal.NewFromInt(5000)})
	if err != nil {
		t.Fatalf("CreateOption: %v", err)
	}

	input := func(optionId int64) CreateDonationInput {
		return CreateDonationInput{
			ProjectId:        project.Id,
			Amount:           decimal.NewFromInt(4000),
			DonorName:        "Kim",
			PaymentMethod:    model.PaymentMethodKakaoPay,
			SelectedOptionId: &optionId,
		}
	}

	donation, err := f.logic.CreateDonation(ctx, input(meal.Id))
	if err != nil {
		t.Fatalf("CreateDonation: %v", err)
	}
	stored, _ := f.logic.GetDonationByOrderId(ctx, donation.OrderId)
	if stored.SelectedOptionId == nil || *stored.SelectedOptionId != meal.Id {
		t.Errorf("selected option = %v, want %d", stored.SelectedOptionId, meal.Id)
	}

	for name, optionId := range map[string]int64{"inactive": retired.Id, "other project": foreign.Id, "missing": 987654} {
		if _, err := f.logic.CreateDonation(ctx, input(optionId)); !errors.Is(err, appErrors.ErrValidation) {
			t.Errorf("%s option: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestCreateProjectWithOptionsAndDelete(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()
	projects := newProjectLogic(t, f)
	creator := int64(100)

	invalid := &model.ProjectModel{
		Title:         "Shelter",
		TargetAmount:  decimal.NewFromInt(500000),
		StartTime:     time.Now(),
		EndTime:       time.Now().Add(48 * time.Hour),
		CreatorUserId: &creator,
	}
	if err := projects.CreateProject(ctx, invalid, OptionInput{Name: "Blanket", Amount: decimal.NewFromInt(10)}); !errors.Is(err, appErrors.ErrValidation) {
		t.Fatalf("invalid option: expected ErrValidation, got %v", err)
	}
	if invalid.Id != 0 {
		t.Fatalf("project created despite invalid option: id=%d", invalid.Id)
	}

	project := &model.ProjectModel{
		Title:         "Shelter",
		TargetAmount:  decimal.NewFromInt(500000),
		StartTime:     time.Now(),
		EndTime:       time.Now().Add(48 * time.Hour),
		CreatorUserId: &creator,
	}
	err := projects.CreateProject(ctx, project,
		OptionInput{Name: "Blanket", Amount: decimal.NewFromInt(20000)},
		OptionInput{Name: "Bed", Amount: decimal.NewFromInt(80000)},
	)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	optionRepo := repository.NewDonationOptionRepository(f.db)
	stored, err := optionRepo.ListByProject(ctx, project.Id, true)
	if err != nil || len(stored) != 2 || stored[0].Name != "Blanket" || stored[1].DisplayOrder != 1 {
		t.Fatalf("stored options = %+v, %v", stored, err)
	}

	if err := projects.DeleteProject(ctx, Actor{UserId: creator}, project.Id); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if left, _ := optionRepo.ListByProject(ctx, project.Id, false); len(left) != 0 {
		t.Errorf("options left after delete: %d", len(left))
	}
}

func TestGetPopularProjects(t *testing.T) {
	f := newDonationFixture(t)
	ctx := context.Background()
	projects := newProjectLogic(t, f)

	quiet := f.createProject(t, 1000000, nil)
	busy := f.createProject(t, 1000000, nil)
	rich := f.createProject(t, 1000000, nil)
	closed := f.createProject(t, 1000000, nil)

	for id, agg := range map[int64]struct {
		amount int64
		count  int64
	}{
		quiet.Id:  {1000, 1},
		busy.Id:   {30000, 5},
		rich.Id:   {90000, 5},
		closed.Id: {500000, 50},
	} {
		if err := f.projects.SetAggregate(ctx, id, decimal.NewFromInt(agg.amount), agg.count); err != nil {
			t.Fatalf("SetAggregate: %v", err)
		}
	}
	if err := f.projects.Updates(ctx, closed.Id, map[string]interface{}{"status": model.ProjectStatusCancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	popular, err := projects.GetPopularProjects(ctx, 2)
	if err != nil {
		t.Fatalf("GetPopularProjects: %v", err)
	}
	if len(popular) != 2 || popular[0].Id != rich.Id || popular[1].Id != busy.Id {
		t.Errorf("popular = %+v", popular)
	}

	all, err := projects.GetPopularProjects(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Errorf("default limit: %d, %v", len(all), err)
	}
}
