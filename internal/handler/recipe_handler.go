package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"recipebox/internal/errors"
	"recipebox/internal/model"
	"recipebox/internal/service"
)

// RecipeHandler handles recipe endpoints.
type RecipeHandler struct {
	recipeService service.RecipeService
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// TagInput is a nested tag reference in recipe payloads.
type TagInput struct {
	Name string `json:"name" validate:"required"`
}

// RecipeRequest carries the full field set, used for create and PUT. Tags
// is a pointer so an absent key, which leaves the tag set untouched, stays
// distinguishable from an empty list, which clears it.
type RecipeRequest struct {
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	TimeMinutes *int        `json:"time_minutes" validate:"required,gte=0"`
	Price       string      `json:"price" validate:"required"`
	Link        string      `json:"link"`
	Tags        *[]TagInput `json:"tags" validate:"omitempty,dive"`
}

// RecipePatchRequest carries a partial update; absent keys stay nil.
type RecipePatchRequest struct {
	Title       *string     `json:"title" validate:"omitempty,min=1"`
	Description *string     `json:"description"`
	TimeMinutes *int        `json:"time_minutes" validate:"omitempty,gte=0"`
	Price       *string     `json:"price"`
	Link        *string     `json:"link"`
	Tags        *[]TagInput `json:"tags" validate:"omitempty,dive"`
}

// TagResponse is the wire shape of a tag.
type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeSummary is the listing shape of a recipe.
type RecipeSummary struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	TimeMinutes int           `json:"time_minutes"`
	Price       string        `json:"price"`
	Link        string        `json:"link"`
	Tags        []TagResponse `json:"tags"`
}

// RecipeDetail is the single-record shape: summary plus description.
type RecipeDetail struct {
	RecipeSummary
	Description string `json:"description"`
}

func newTagResponses(tags []model.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name})
	}
	return out
}

func newRecipeSummary(r *model.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        newTagResponses(r.Tags),
	}
}

func newRecipeDetail(r *model.Recipe) RecipeDetail {
	return RecipeDetail{
		RecipeSummary: newRecipeSummary(r),
		Description:   r.Description,
	}
}

// parsePrice validates a decimal with at most 3 integer and 2 fraction
// digits.
func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.ErrInvalidPrice
	}
	if price.Exponent() < -2 || !price.Abs().LessThan(decimal.NewFromInt(1000)) {
		return decimal.Decimal{}, errors.ErrInvalidPrice
	}
	return price, nil
}

func tagNames(tags []TagInput) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func newRecipeInput(req RecipeRequest, price decimal.Decimal) service.RecipeInput {
	in := service.RecipeInput{
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: *req.TimeMinutes,
		Price:       price,
		Link:        req.Link,
	}
	if req.Tags != nil {
		names := tagNames(*req.Tags)
		in.Tags = &names
	}
	return in
}

func pathParamID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// List godoc
// @Summary List the caller's recipes, newest first
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RecipeSummary
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	recipes, err := h.recipeService.List(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	out := make([]RecipeSummary, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeSummary(&recipes[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get one of the caller's recipes
// @Tags recipes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeDetail
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [get]
func (h *RecipeHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathParamID(c)
	if err != nil {
		return err
	}
	recipe, err := h.recipeService.Get(c.Request().Context(), userID, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, newRecipeDetail(recipe))
}

// Create godoc
// @Summary Create a recipe owned by the caller
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RecipeRequest true "Recipe data"
// @Success 201 {object} RecipeDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	recipe, err := h.recipeService.Create(c.Request().Context(), userID, newRecipeInput(req, price))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, newRecipeDetail(recipe))
}

// Put godoc
// @Summary Fully replace one of the caller's recipes
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Complete recipe data"
// @Success 200 {object} RecipeDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [put]
func (h *RecipeHandler) Put(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathParamID(c)
	if err != nil {
		return err
	}

	var req RecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	recipe, err := h.recipeService.Replace(c.Request().Context(), userID, id, newRecipeInput(req, price))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, newRecipeDetail(recipe))
}

// Patch godoc
// @Summary Partially update one of the caller's recipes
// @Tags recipes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Param request body RecipePatchRequest true "Fields to change"
// @Success 200 {object} RecipeDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [patch]
func (h *RecipeHandler) Patch(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathParamID(c)
	if err != nil {
		return err
	}

	var req RecipePatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patch := service.RecipePatch{
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: req.TimeMinutes,
		Link:        req.Link,
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		patch.Price = &price
	}
	if req.Tags != nil {
		names := tagNames(*req.Tags)
		patch.Tags = &names
	}

	recipe, err := h.recipeService.Patch(c.Request().Context(), userID, id, patch)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, newRecipeDetail(recipe))
}

// Delete godoc
// @Summary Delete one of the caller's recipes
// @Tags recipes
// @Security BearerAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathParamID(c)
	if err != nil {
		return err
	}
	if err := h.recipeService.Delete(c.Request().Context(), userID, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}
