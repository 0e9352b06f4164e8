package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"bistro/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMenuFixture() (*MockMenuRepository, *MockImageStore, MenuService) {
	repo := new(MockMenuRepository)
	images := new(MockImageStore)
	return repo, images, NewMenuService(repo, images, zerolog.Nop())
}

func TestMenuService_ListMenu_SkipsInactiveCategories(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newMenuFixture()

	repo.On("ListCategories", ctx).Return([]model.Category{
		{ID: 1, Name: "Mains", IsActive: true},
		{ID: 2, Name: "Retired", IsActive: false},
		{ID: 3, Name: "Desserts", IsActive: true},
	}, nil)
	repo.On("ListAvailableItems", ctx).Return([]model.MenuItem{
		{ID: 10, CategoryID: 1, Name: "Ribeye"},
		{ID: 11, CategoryID: 2, Name: "Old Dish"},
	}, nil)

	menu, err := svc.ListMenu(ctx)

	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Mains", menu[0].Category.Name)
	assert.Len(t, menu[0].Items, 1)
	assert.Equal(t, "Desserts", menu[1].Category.Name)
	assert.NotNil(t, menu[1].Items)
	assert.Empty(t, menu[1].Items)
}

func TestMenuService_GetDish_HidesUnavailable(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newMenuFixture()

	repo.On("GetItemBySlug", ctx, "ribeye").Return(&model.MenuItem{ID: 1, IsAvailable: false}, nil)

	item, err := svc.GetDish(ctx, "ribeye")

	assert.Nil(t, item)
	assert.ErrorIs(t, err, model.ErrMenuItemNotFound)
}

func TestMenuService_CreateItem_SlugCollision(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newMenuFixture()

	in := &model.MenuItemInput{
		Name:        "  Grilled Ribeye ",
		Price:       decimal.RequireFromString("32.005"),
		CategoryID:  3,
		IsAvailable: true,
	}

	repo.On("GetCategoryByID", ctx, int64(3)).Return(&model.Category{ID: 3}, nil)
	repo.On("ItemSlugExists", ctx, "grilled-ribeye", int64(0)).Return(true, nil)
	repo.On("ItemSlugExists", ctx, "grilled-ribeye-2", int64(0)).Return(false, nil)
	repo.On("CreateItem", ctx, mock.MatchedBy(func(item *model.MenuItem) bool {
		return item.Slug == "grilled-ribeye-2" && item.Name == "Grilled Ribeye" && item.Price.String() == "32.01"
	}), mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*model.MenuItem).ID = 5
	}).Return(nil)
	repo.On("GetItemByID", ctx, int64(5)).Return(&model.MenuItem{ID: 5, Slug: "grilled-ribeye-2"}, nil)

	item, err := svc.CreateItem(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, "grilled-ribeye-2", item.Slug)
	repo.AssertExpectations(t)
}

func TestMenuService_CreateItem_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		in      model.MenuItemInput
		setup   func(*MockMenuRepository)
		wantErr string
	}{
		{
			name:    "missing name",
			in:      model.MenuItemInput{CategoryID: 1},
			wantErr: "Name, price, and category are required",
		},
		{
			name:    "negative price",
			in:      model.MenuItemInput{Name: "Soup", CategoryID: 1, Price: decimal.NewFromInt(-1)},
			wantErr: "Price cannot be negative",
		},
		{
			name: "unknown category",
			in:   model.MenuItemInput{Name: "Soup", CategoryID: 99},
			setup: func(r *MockMenuRepository) {
				r.On("GetCategoryByID", ctx, int64(99)).Return(nil, nil)
			},
			wantErr: "Category not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, svc := newMenuFixture()
			if tt.setup != nil {
				tt.setup(repo)
			}

			item, err := svc.CreateItem(ctx, &tt.in)

			assert.Nil(t, item)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMenuService_UploadImage_ReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	repo, images, svc := newMenuFixture()
	body := strings.NewReader("jpeg bytes")

	repo.On("GetItemByID", ctx, int64(1)).Return(&model.MenuItem{ID: 1, ImagePublicID: "old"}, nil)
	images.On("Upload", ctx, body, "ribeye.jpg").Return("https://cdn.test/new.jpg", "new", nil)
	repo.On("SetImage", ctx, int64(1), "https://cdn.test/new.jpg", "new").Return(nil)
	images.On("Delete", ctx, "old").Return(nil)

	item, err := svc.UploadImage(ctx, 1, body, "ribeye.jpg", 1024)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/new.jpg", item.ImageURL)
	images.AssertExpectations(t)
}

func TestMenuService_UploadImage_RemovesOrphanOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	repo, images, svc := newMenuFixture()
	body := strings.NewReader("png bytes")

	repo.On("GetItemByID", ctx, int64(1)).Return(&model.MenuItem{ID: 1, ImagePublicID: "old"}, nil)
	images.On("Upload", ctx, body, "a.png").Return("https://cdn.test/new.png", "new", nil)
	repo.On("SetImage", ctx, int64(1), "https://cdn.test/new.png", "new").Return(errors.New("db down"))
	images.On("Delete", ctx, "new").Return(nil)

	item, err := svc.UploadImage(ctx, 1, body, "a.png", 2048)

	assert.Nil(t, item)
	assert.Error(t, err)
	images.AssertCalled(t, "Delete", ctx, "new")
	images.AssertNotCalled(t, "Delete", ctx, "old")
}

func TestMenuService_UploadImage_RejectsLargeFile(t *testing.T) {
	repo, images, svc := newMenuFixture()

	item, err := svc.UploadImage(context.Background(), 1, strings.NewReader(""), "huge.jpg", 11<<20)

	assert.Nil(t, item)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "GetItemByID", mock.Anything, mock.Anything)
	images.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestMenuService_DeleteCategory(t *testing.T) {
	ctx := context.Background()
	target := int64(2)

	t.Run("items need a target", func(t *testing.T) {
		repo, _, svc := newMenuFixture()
		repo.On("GetCategoryByID", ctx, int64(1)).Return(&model.Category{ID: 1, ItemCount: 3}, nil)

		err := svc.DeleteCategory(ctx, 1, nil)

		assert.ErrorIs(t, err, model.ErrCategoryHasItems)
		repo.AssertNotCalled(t, "DeleteCategory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("moves items", func(t *testing.T) {
		repo, _, svc := newMenuFixture()
		repo.On("GetCategoryByID", ctx, int64(1)).Return(&model.Category{ID: 1, ItemCount: 3}, nil)
		repo.On("GetCategoryByID", ctx, target).Return(&model.Category{ID: target}, nil)
		repo.On("DeleteCategory", ctx, int64(1), &target).Return(nil)

		require.NoError(t, svc.DeleteCategory(ctx, 1, &target))
		repo.AssertExpectations(t)
	})

	t.Run("empty category ignores target", func(t *testing.T) {
		repo, _, svc := newMenuFixture()
		repo.On("GetCategoryByID", ctx, int64(1)).Return(&model.Category{ID: 1}, nil)
		repo.On("DeleteCategory", ctx, int64(1), (*int64)(nil)).Return(nil)

		require.NoError(t, svc.DeleteCategory(ctx, 1, &target))
	})
}

func TestMenuService_ImportCSV(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newMenuFixture()

	csvData := "\ufeffname,category,price,tags,addons\n" +
		"Ribeye,Mains,32.00,bestseller,Extra Sauce:2.00\n" +
		",Mains,5,,\n" +
		"Soup,Mains,abc,,\n" +
		"Fries,Sides,4.50,unknown,\n"

	repo.On("ListTags", ctx).Return([]model.Tag{{ID: 1, Name: model.TagBestseller}}, nil)
	repo.On("GetCategoryByName", ctx, "Mains").Return(&model.Category{ID: 3, Name: "Mains"}, nil)
	repo.On("GetItemByName", ctx, "Ribeye").Return(nil, nil)
	repo.On("ItemSlugExists", ctx, "ribeye", int64(0)).Return(false, nil)
	repo.On("CreateItem", ctx, mock.MatchedBy(func(item *model.MenuItem) bool {
		return item.CategoryID == 3 && item.IsAvailable && !item.IsFeatured
	}), []int64{1}).Run(func(args mock.Arguments) {
		args.Get(1).(*model.MenuItem).ID = 10
	}).Return(nil)
	repo.On("GetAddOnByName", ctx, int64(10), "Extra Sauce").Return(nil, nil)
	repo.On("CreateAddOn", ctx, mock.MatchedBy(func(a *model.AddOn) bool {
		return a.MenuItemID == 10 && a.AdditionalPrice.String() == "2"
	})).Return(nil)

	result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, []string{
		"Row 3: name is required",
		`Row 4: invalid price "abc" for "Soup"`,
		`Row 5: unknown tag "unknown"`,
	}, result.Errors)
	repo.AssertExpectations(t)
}

func TestMenuService_ImportCSV_UpdatesExisting(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newMenuFixture()

	csvData := "name,category,price,is_available,image\n" +
		"ribeye,Mains,35,false,https://img.test/ribeye.jpg\n"

	existing := &model.MenuItem{ID: 10, Name: "Ribeye", Slug: "ribeye", CategoryID: 3}
	repo.On("ListTags", ctx).Return([]model.Tag{}, nil)
	repo.On("GetCategoryByName", ctx, "Mains").Return(&model.Category{ID: 3}, nil)
	repo.On("GetItemByName", ctx, "ribeye").Return(existing, nil)
	repo.On("UpdateItem", ctx, existing, []int64(nil)).Return(nil)
	repo.On("SetImage", ctx, int64(10), "https://img.test/ribeye.jpg", "").Return(nil)

	result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)
	assert.False(t, existing.IsAvailable)
	assert.Equal(t, "35", existing.Price.String())
	repo.AssertNotCalled(t, "ItemSlugExists", mock.Anything, mock.Anything, mock.Anything)
}

func TestMenuService_ImportCSV_StopsOnReadFailure(t *testing.T) {
	readErr := errors.New("connection reset")

	tests := []struct {
		name    string
		cancel  bool
		body    io.Reader
		wantErr error
	}{
		{
			name:    "Reader fails after header",
			body:    io.MultiReader(strings.NewReader("name,category,price\n"), iotest.ErrReader(readErr)),
			wantErr: readErr,
		},
		{
			name:    "Context cancelled",
			cancel:  true,
			body:    strings.NewReader("name,category,price\nRibeye,Mains,32\n"),
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}
			repo, _, svc := newMenuFixture()
			repo.On("ListTags", ctx).Return([]model.Tag{}, nil)

			result, err := svc.ImportCSV(ctx, tt.body)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			repo.AssertNotCalled(t, "GetCategoryByName", mock.Anything, mock.Anything)
		})
	}
}

func TestMenuService_ImportCSV_MalformedRowIsSkipped(t *testing.T) {
	ctx := context.Background()
	repo, _, svc := newMenuFixture()

	csvData := "name,category,price\n" +
		"Bad \"quote,Mains,5\n" +
		"Ribeye,Mains,32\n"

	repo.On("ListTags", ctx).Return([]model.Tag{}, nil)
	repo.On("GetCategoryByName", ctx, "Mains").Return(&model.Category{ID: 3, Name: "Mains"}, nil)
	repo.On("GetItemByName", ctx, "Ribeye").Return(nil, nil)
	repo.On("ItemSlugExists", ctx, "ribeye", int64(0)).Return(false, nil)
	repo.On("CreateItem", ctx, mock.AnythingOfType("*model.MenuItem"), []int64(nil)).Return(nil)

	result, err := svc.ImportCSV(ctx, strings.NewReader(csvData))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 2:")
	repo.AssertExpectations(t)
}

func TestMenuService_WriteCSVTemplate(t *testing.T) {
	_, _, svc := newMenuFixture()
	var buf bytes.Buffer

	require.NoError(t, svc.WriteCSVTemplate(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 7)
	assert.Equal(t, "name,category,price,description,is_available,is_featured,tags,addons,image", lines[0])
}
