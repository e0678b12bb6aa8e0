package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vancetran/medisupply-backend/pkg/db/models"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
)

type stubCategoryRepo struct {
	byID          map[uuid.UUID]*models.Category
	productCounts map[uuid.UUID]int64
	updates       map[string]any
	deleted       []uuid.UUID
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		byID:          map[uuid.UUID]*models.Category{},
		productCounts: map[uuid.UUID]int64{},
	}
}

func (s *stubCategoryRepo) add(c *models.Category) *models.Category {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.byID[c.ID] = c
	return c
}

func (s *stubCategoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCategoryRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	return s.add(category), nil
}

func (s *stubCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) ListAll(ctx context.Context) ([]models.Category, error) {
	rows := make([]models.Category, 0, len(s.byID))
	for _, c := range s.byID {
		rows = append(rows, *c)
	}
	return rows, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCategoryRepo) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.productCounts[id], nil
}

func TestTreeAssemblesForest(t *testing.T) {
	repo := newStubCategoryRepo()
	root := repo.add(&models.Category{Name: "Medical Devices", DisplayOrder: 1})
	child := repo.add(&models.Category{Name: "Monitors", ParentID: &root.ID, DisplayOrder: 1})
	grandchild := repo.add(&models.Category{Name: "Blood Pressure", ParentID: &child.ID})
	other := repo.add(&models.Category{Name: "Consumables", DisplayOrder: 2})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tree, err := svc.Tree(context.Background())
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots got %d", len(tree))
	}
	if tree[0].Name != "Medical Devices" || tree[1].Name != "Consumables" {
		t.Fatalf("roots out of order: %s, %s", tree[0].Name, tree[1].Name)
	}
	if len(tree[0].Children) != 1 || tree[0].Children[0].ID != child.ID {
		t.Fatal("expected child under first root")
	}
	if len(tree[0].Children[0].Children) != 1 || tree[0].Children[0].Children[0].ID != grandchild.ID {
		t.Fatal("expected grandchild nesting")
	}
	if len(tree[1].Children) != 0 {
		t.Fatalf("expected no children under %s", other.Name)
	}
}

func TestTreePromotesOrphansToRoots(t *testing.T) {
	repo := newStubCategoryRepo()
	missing := uuid.New()
	repo.add(&models.Category{Name: "Orphan", ParentID: &missing})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tree, err := svc.Tree(context.Background())
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 1 || tree[0].Name != "Orphan" {
		t.Fatal("expected orphan promoted to root")
	}
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := repo.add(&models.Category{Name: "Gloves"})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Update(context.Background(), cat.ID, UpdateInput{
		ParentID:    &cat.ID,
		ParentIDSet: true,
	})
	if err == nil {
		t.Fatal("expected error for self-parenting")
	}
}

func TestUpdateRejectsCycle(t *testing.T) {
	repo := newStubCategoryRepo()
	a := repo.add(&models.Category{Name: "A"})
	b := repo.add(&models.Category{Name: "B", ParentID: &a.ID})
	c := repo.add(&models.Category{Name: "C", ParentID: &b.ID})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	// Moving A under its grandchild C closes a loop.
	_, err = svc.Update(context.Background(), a.ID, UpdateInput{
		ParentID:    &c.ID,
		ParentIDSet: true,
	})
	if err == nil {
		t.Fatal("expected cycle rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestUpdateMovesToRoot(t *testing.T) {
	repo := newStubCategoryRepo()
	parent := repo.add(&models.Category{Name: "Parent"})
	child := repo.add(&models.Category{Name: "Child", ParentID: &parent.ID})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Update(context.Background(), child.ID, UpdateInput{ParentIDSet: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if parentID, ok := repo.updates["parent_id"]; !ok || parentID != (*uuid.UUID)(nil) {
		t.Fatalf("expected parent_id cleared, got %v", repo.updates)
	}
}

func TestDeleteRejectsCategoryWithProducts(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := repo.add(&models.Category{Name: "Syringes"})
	repo.productCounts[cat.ID] = 4

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.Delete(context.Background(), cat.ID)
	if err == nil {
		t.Fatal("expected conflict for category with products")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatal("category must not be deleted")
	}
}

func TestDeleteEmptyCategory(t *testing.T) {
	repo := newStubCategoryRepo()
	cat := repo.add(&models.Category{Name: "Empty"})

	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.Delete(context.Background(), cat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != cat.ID {
		t.Fatal("expected category deleted")
	}
}
