package api

import (
	"net/http"
	"strconv"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/graph"
)

// inventoryListHandler handles GET /inventory/?category&location.
func (s *Server) inventoryListHandler(c *echo.Context) error {
	items, err := s.graph.QueryInventory(c.Request().Context(), c.QueryParam("category"), c.QueryParam("location"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// inventorySummaryHandler handles GET /inventory/summary: item count and
// total quantity per category, composed over QueryInventory since no
// dedicated aggregate query exists.
func (s *Server) inventorySummaryHandler(c *echo.Context) error {
	items, err := s.graph.QueryInventory(c.Request().Context(), "", "")
	if err != nil {
		return mapServiceError(err)
	}

	type categorySummary struct {
		ItemCount     int `json:"item_count"`
		TotalQuantity int `json:"total_quantity"`
	}
	byCategory := map[string]*categorySummary{}
	for _, item := range items {
		cat := item.Category
		if cat == "" {
			cat = "uncategorised"
		}
		if byCategory[cat] == nil {
			byCategory[cat] = &categorySummary{}
		}
		byCategory[cat].ItemCount++
		byCategory[cat].TotalQuantity += item.Quantity
	}
	return c.JSON(http.StatusOK, map[string]any{"total_items": len(items), "by_category": byCategory})
}

// inventoryItemCreateHandler handles POST /inventory/item.
func (s *Server) inventoryItemCreateHandler(c *echo.Context) error {
	var req graph.ItemInput
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := s.graph.UpsertItem(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// inventoryItemUpdateHandler handles POST /inventory/item/{name}/update.
func (s *Server) inventoryItemUpdateHandler(c *echo.Context) error {
	var req graph.ItemInput
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	req.Name = c.Param("name")
	id, err := s.graph.UpsertItem(c.Request().Context(), req)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// inventoryItemLocationHandler handles POST /inventory/item/{name}/location.
func (s *Server) inventoryItemLocationHandler(c *echo.Context) error {
	var req struct {
		Location string `json:"location"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	items, err := s.graph.QueryInventory(c.Request().Context(), "", "")
	if err != nil {
		return mapServiceError(err)
	}
	name := c.Param("name")
	in := graph.ItemInput{Name: name, Location: req.Location}
	for _, item := range items {
		if item.Name == name {
			in.Quantity, in.Category, in.Brand, in.Condition, in.Barcode = item.Quantity, item.Category, item.Brand, item.Condition, item.Barcode
			break
		}
	}
	if _, err := s.graph.UpsertItem(c.Request().Context(), in); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// inventoryItemQuantityHandler handles POST /inventory/item/{name}/quantity,
// and also marks the item as used (spec.md §4.7 "usage touch" on any
// quantity-changing interaction).
func (s *Server) inventoryItemQuantityHandler(c *echo.Context) error {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := bindOrBadRequest(c, &req); err != nil {
		return err
	}
	name := c.Param("name")

	items, err := s.graph.QueryInventory(c.Request().Context(), "", "")
	if err != nil {
		return mapServiceError(err)
	}
	in := graph.ItemInput{Name: name, Quantity: req.Quantity}
	for _, item := range items {
		if item.Name == name {
			in.Location, in.Category, in.Brand, in.Condition, in.Barcode = item.Location, item.Category, item.Brand, item.Condition, item.Barcode
			break
		}
	}
	if _, err := s.graph.UpsertItem(c.Request().Context(), in); err != nil {
		return mapServiceError(err)
	}
	if err := s.graph.TouchItemUsage(c.Request().Context(), name); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// inventoryByFileHandler handles GET /inventory/by-file/{hash}: the Item
// linked to a photo, via the File Stub's provenance.
func (s *Server) inventoryByFileHandler(c *echo.Context) error {
	stub, err := s.graph.FindFileByHash(c.Request().Context(), c.Param("hash"))
	if err != nil {
		return mapServiceError(err)
	}
	if stub == nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	return c.JSON(http.StatusOK, stub)
}

// inventoryByBarcodeHandler handles GET /inventory/by-barcode/{code}.
func (s *Server) inventoryByBarcodeHandler(c *echo.Context) error {
	item, err := s.graph.FindItemByBarcode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return mapServiceError(err)
	}
	if item == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no item with that barcode")
	}
	return c.JSON(http.StatusOK, item)
}

// inventoryUnusedHandler handles GET /inventory/unused?older_than_days.
func (s *Server) inventoryUnusedHandler(c *echo.Context) error {
	days := 90
	if v := c.QueryParam("older_than_days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	items, err := s.graph.UnusedItems(c.Request().Context(), days)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// inventoryReportHandler handles GET /inventory/report: same payload as
// the summary endpoint, named separately per spec.md §6's route list.
func (s *Server) inventoryReportHandler(c *echo.Context) error {
	return s.inventorySummaryHandler(c)
}

// inventoryDuplicatesHandler handles GET /inventory/duplicates?method=name|vector.
// Only the name-based grouping is backed by a dedicated query; "vector"
// falls back to the same grouping since no separate embedding-similarity
// duplicate scan exists in the Graph Service.
func (s *Server) inventoryDuplicatesHandler(c *echo.Context) error {
	groups, err := s.graph.InventoryDuplicates(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, groups)
}

// inventorySearchSimilarHandler handles GET /inventory/search-similar?name=.
func (s *Server) inventorySearchSimilarHandler(c *echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	items, err := s.graph.SimilarInventory(c.Request().Context(), name)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, items)
}
