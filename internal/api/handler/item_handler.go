package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// ItemHandler handles HTTP requests for the item catalogue.
type ItemHandler struct {
	service ports.ItemService
}

func NewItemHandler(service ports.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

// List handles GET /api/{v1,v2}/store/items.
//
// @Summary      List items
// @Tags         items
// @Produce      json
// @Param        q      query     string  false  "Filter by name substring"  minlength(1)  maxlength(50)
// @Param        limit  query     int     false  "Max items to return"       minimum(1)    maximum(100)  default(25)
// @Success      200    {array}   domain.Item
// @Failure      400    {object}  errorResponse
// @Failure      429    {object}  errorResponse
// @Router       /api/v2/store/items [get]
func (h *ItemHandler) List(c echo.Context) error {
	var req listItemsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	items, err := h.service.List(c.Request().Context(), req.toFilter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// ListPage handles GET /api/v1/store/items/paged.
//
// @Summary      List items (paged)
// @Tags         items
// @Produce      json
// @Param        page       query     int  false  "Page number"  minimum(1)  default(1)
// @Param        page_size  query     int  false  "Page size"    minimum(1)  maximum(100)  default(10)
// @Success      200        {array}   domain.Item
// @Failure      400        {object}  errorResponse
// @Router       /api/v1/store/items/paged [get]
func (h *ItemHandler) ListPage(c echo.Context) error {
	items, _, err := h.listPage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// ListPageAudited handles GET /api/v2/store/items/paged. It also queues a
// background record of how many items were served.
//
// @Summary      List items (paged, authenticated)
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number"  minimum(1)  default(1)
// @Param        page_size  query     int  false  "Page size"    minimum(1)  maximum(100)  default(10)
// @Success      200        {array}   domain.Item
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Failure      429        {object}  errorResponse
// @Router       /api/v2/store/items/paged [get]
func (h *ItemHandler) ListPageAudited(c echo.Context) error {
	items, page, err := h.listPage(c)
	if err != nil {
		return err
	}
	h.service.RecordPageServed(page, len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *ItemHandler) listPage(c echo.Context) ([]*domain.Item, ports.PageRequest, error) {
	var req pageRequest
	if err := bind(c, &req); err != nil {
		return nil, ports.PageRequest{}, err
	}
	page := ports.PageRequest{Page: 1, PageSize: defaultPageSize}
	if req.Page != nil {
		page.Page = *req.Page
	}
	if req.PageSize != nil {
		page.PageSize = *req.PageSize
	}

	items, err := h.service.ListPage(c.Request().Context(), page)
	return items, page, err
}

// Get handles GET /api/{v1,v2}/store/items/:id.
//
// @Summary      Get an item by id
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item id"
// @Success      200  {object}  domain.Item
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v2/store/items/{id} [get]
func (h *ItemHandler) Get(c echo.Context) error {
	var req itemIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.service.Get(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /api/{v1,v2}/store/items.
//
// @Summary      Create an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createItemRequest  true  "Item data"
// @Success      201   {object}  domain.Item
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/v2/store/items [post]
func (h *ItemHandler) Create(c echo.Context) error {
	var req createItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.service.Create(c.Request().Context(), req.toDraft())
	if err != nil {
		return err
	}
	metrics.ItemsCreatedTotal.Inc()
	c.Response().Header().Set(echo.HeaderLocation, c.Request().URL.Path+"/"+strconv.FormatInt(item.ID, 10))
	return c.JSON(http.StatusCreated, item)
}

// CreateBulk handles POST /api/v2/store/items/bulk.
//
// @Summary      Create several items
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []createItemRequest  true  "Items to create"
// @Success      201   {array}   domain.Item
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/v2/store/items/bulk [post]
func (h *ItemHandler) CreateBulk(c echo.Context) error {
	var reqs []createItemRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &reqs); err != nil {
		return domain.NewValidationError("Request body must be a JSON array of items.")
	}
	if len(reqs) == 0 {
		return domain.NewValidationError("", domain.FieldError{Field: "body", Message: "at least one item is required"})
	}

	var fields []domain.FieldError
	drafts := make([]domain.ItemDraft, 0, len(reqs))
	for i := range reqs {
		if err := c.Validate(&reqs[i]); err != nil {
			var de *domain.Error
			if !errors.As(err, &de) {
				return err
			}
			for _, f := range de.Fields {
				fields = append(fields, domain.FieldError{Field: "[" + strconv.Itoa(i) + "]." + f.Field, Message: f.Message})
			}
			continue
		}
		drafts = append(drafts, reqs[i].toDraft())
	}
	if len(fields) > 0 {
		return domain.NewValidationError("", fields...)
	}

	items, err := h.service.CreateBulk(c.Request().Context(), drafts)
	if err != nil {
		return err
	}
	metrics.ItemsCreatedTotal.Add(float64(len(items)))
	return c.JSON(http.StatusCreated, items)
}

// Update handles PATCH /api/{v1,v2}/store/items/:id. Only the fields present
// in the body are changed.
//
// @Summary      Partially update an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Item id"
// @Param        body  body      updateItemRequest  true  "Fields to update"
// @Success      200   {object}  domain.Item
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v2/store/items/{id} [patch]
func (h *ItemHandler) Update(c echo.Context) error {
	var req updateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.service.Update(c.Request().Context(), req.ID, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Summary handles GET /api/v2/store/items/:id/summary.
//
// @Summary      Item with price and inventory quotes
// @Tags         items
// @Produce      json
// @Param        id   path      int  true  "Item id"
// @Success      200  {object}  domain.ItemSummary
// @Failure      404  {object}  errorResponse
// @Router       /api/v2/store/items/{id}/summary [get]
func (h *ItemHandler) Summary(c echo.Context) error {
	var req itemIDRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	summary, err := h.service.Summary(c.Request().Context(), req.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Purchase handles POST /api/v2/store/items/:id/purchase. The audit record
// is written in the background after the response.
//
// @Summary      Purchase an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int              true  "Item id"
// @Param        body  body      purchaseRequest  true  "Units to purchase"
// @Success      200   {object}  purchaseResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/v2/store/items/{id}/purchase [post]
func (h *ItemHandler) Purchase(c echo.Context) error {
	var req purchaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.service.Purchase(c.Request().Context(), req.ID, req.Amount); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, purchaseResponse{Status: "queued"})
}
