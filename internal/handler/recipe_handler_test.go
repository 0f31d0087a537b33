package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"recipebox/internal/auth"
	"recipebox/internal/errors"
	"recipebox/internal/handler"
	"recipebox/internal/model"
	"recipebox/internal/service"
)

// MockRecipeService is a mock implementation of service.RecipeService.
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, ownerID uint, in service.RecipeInput) (*model.Recipe, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, ownerID uint) ([]model.Recipe, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, ownerID, id uint) (*model.Recipe, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Replace(ctx context.Context, ownerID, id uint, in service.RecipeInput) (*model.Recipe, error) {
	args := m.Called(ctx, ownerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Patch(ctx context.Context, ownerID, id uint, p service.RecipePatch) (*model.Recipe, error) {
	args := m.Called(ctx, ownerID, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, ownerID, id uint) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

func newTestContext(t *testing.T, method, target, body string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if userID != 0 {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{UserID: userID})
		c.Set("user", token)
	}
	return c, rec
}

func TestRecipeHandler_Create(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Create", mock.Anything, uint(1), mock.MatchedBy(func(in service.RecipeInput) bool {
		return in.Title == "Thai green curry" &&
			in.TimeMinutes == 30 &&
			in.Price.Equal(decimal.RequireFromString("2.50")) &&
			in.Tags != nil && len(*in.Tags) == 2
	})).Return(&model.Recipe{
		ID:          1,
		UserID:      1,
		Title:       "Thai green curry",
		TimeMinutes: 30,
		Price:       decimal.RequireFromString("2.50"),
		Tags: []model.Tag{
			{ID: 1, Name: "Thai", UserID: 1},
			{ID: 2, Name: "Dinner", UserID: 1},
		},
	}, nil)

	h := handler.NewRecipeHandler(mockSvc)
	body := `{"title":"Thai green curry","time_minutes":30,"price":"2.50","tags":[{"name":"Thai"},{"name":"Dinner"}]}`
	c, rec := newTestContext(t, http.MethodPost, "/api/recipes", body, 1)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"2.50"`)
	assert.Contains(t, rec.Body.String(), `"description":""`)
	assert.Contains(t, rec.Body.String(), `"Thai"`)
	mockSvc.AssertExpectations(t)
}

func TestRecipeHandler_Create_InvalidPrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
	}{
		{"too many fraction digits", "5.505"},
		{"too many integer digits", "1000.00"},
		{"not a number", "cheap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewRecipeHandler(new(MockRecipeService))
			body := `{"title":"Sample","time_minutes":5,"price":"` + tt.price + `"}`
			c, _ := newTestContext(t, http.MethodPost, "/api/recipes", body, 1)

			err := h.Create(c)
			httpErr, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		})
	}
}

func TestRecipeHandler_Create_MissingTitle(t *testing.T) {
	h := handler.NewRecipeHandler(new(MockRecipeService))
	c, _ := newTestContext(t, http.MethodPost, "/api/recipes", `{"time_minutes":5,"price":"2.50"}`, 1)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestRecipeHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Get", mock.Anything, uint(1), uint(99)).Return(nil, errors.ErrRecipeNotFound)

	h := handler.NewRecipeHandler(mockSvc)
	c, _ := newTestContext(t, http.MethodGet, "/api/recipes/99", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestRecipeHandler_Get_NoIdentity(t *testing.T) {
	h := handler.NewRecipeHandler(new(MockRecipeService))
	c, _ := newTestContext(t, http.MethodGet, "/api/recipes/1", "", 0)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRecipeHandler_Put_TagsKeyAbsent(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Replace", mock.Anything, uint(1), uint(3), mock.MatchedBy(func(in service.RecipeInput) bool {
		return in.Title == "New title" && in.Tags == nil
	})).Return(&model.Recipe{
		ID:     3,
		UserID: 1,
		Title:  "New title",
		Price:  decimal.RequireFromString("2.50"),
		Tags:   []model.Tag{{ID: 10, Name: "Thai", UserID: 1}},
	}, nil)

	h := handler.NewRecipeHandler(mockSvc)
	body := `{"title":"New title","time_minutes":5,"price":"2.50"}`
	c, rec := newTestContext(t, http.MethodPut, "/api/recipes/3", body, 1)
	c.SetParamNames("id")
	c.SetParamValues("3")

	assert.NoError(t, h.Put(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Thai"`)
	mockSvc.AssertExpectations(t)
}

func TestRecipeHandler_Put_EmptyTagListClears(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Replace", mock.Anything, uint(1), uint(3), mock.MatchedBy(func(in service.RecipeInput) bool {
		return in.Tags != nil && len(*in.Tags) == 0
	})).Return(&model.Recipe{
		ID:     3,
		UserID: 1,
		Title:  "New title",
		Price:  decimal.RequireFromString("2.50"),
	}, nil)

	h := handler.NewRecipeHandler(mockSvc)
	body := `{"title":"New title","time_minutes":5,"price":"2.50","tags":[]}`
	c, rec := newTestContext(t, http.MethodPut, "/api/recipes/3", body, 1)
	c.SetParamNames("id")
	c.SetParamValues("3")

	assert.NoError(t, h.Put(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestRecipeHandler_Patch_TagsKeyAbsent(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Patch", mock.Anything, uint(1), uint(3), mock.MatchedBy(func(p service.RecipePatch) bool {
		return p.Title != nil && *p.Title == "New title" && p.Tags == nil && p.Link == nil
	})).Return(&model.Recipe{ID: 3, UserID: 1, Title: "New title"}, nil)

	h := handler.NewRecipeHandler(mockSvc)
	c, rec := newTestContext(t, http.MethodPatch, "/api/recipes/3", `{"title":"New title"}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("3")

	assert.NoError(t, h.Patch(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestRecipeHandler_Patch_EmptyTagList(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Patch", mock.Anything, uint(1), uint(3), mock.MatchedBy(func(p service.RecipePatch) bool {
		return p.Tags != nil && len(*p.Tags) == 0
	})).Return(&model.Recipe{ID: 3, UserID: 1, Title: "Sample"}, nil)

	h := handler.NewRecipeHandler(mockSvc)
	c, rec := newTestContext(t, http.MethodPatch, "/api/recipes/3", `{"tags":[]}`, 1)
	c.SetParamNames("id")
	c.SetParamValues("3")

	assert.NoError(t, h.Patch(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestRecipeHandler_List(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("List", mock.Anything, uint(1)).Return([]model.Recipe{
		{ID: 2, UserID: 1, Title: "Newer", Price: decimal.RequireFromString("3.00")},
		{ID: 1, UserID: 1, Title: "Older", Price: decimal.RequireFromString("4.00")},
	}, nil)

	h := handler.NewRecipeHandler(mockSvc)
	c, rec := newTestContext(t, http.MethodGet, "/api/recipes", "", 1)

	assert.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	// Listing uses the summary shape: no description key.
	assert.NotContains(t, rec.Body.String(), "description")
	assert.Contains(t, rec.Body.String(), `"price":"3.00"`)
}

func TestRecipeHandler_Delete(t *testing.T) {
	mockSvc := new(MockRecipeService)
	mockSvc.On("Delete", mock.Anything, uint(1), uint(3)).Return(nil)

	h := handler.NewRecipeHandler(mockSvc)
	c, rec := newTestContext(t, http.MethodDelete, "/api/recipes/3", "", 1)
	c.SetParamNames("id")
	c.SetParamValues("3")

	assert.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	mockSvc.AssertExpectations(t)
}
