package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rafiq-ai/rafiq/pkg/graphstore"
)

// ItemInput is the manage_inventory create/update payload.
type ItemInput struct {
	Name       string
	Quantity   int
	Location   string
	Category   string
	Brand      string
	Condition  string
	Barcode    string
	BarcodeType string
}

// UpsertItem MERGEs an Item by name, normalising category and the location
// path.
func (s *Service) UpsertItem(ctx context.Context, in ItemInput) (string, error) {
	location := normalizeLocationPath(in.Location)
	if location != "" {
		if err := s.upsertLocation(ctx, location); err != nil {
			return "", err
		}
	}

	_, err := s.store.Query(ctx, `
		MERGE (i:Item {name: $name})
		ON CREATE SET i.created_at = datetime(), i.quantity = 0
		SET i.quantity = coalesce($quantity, i.quantity),
		    i.location = coalesce($location, i.location),
		    i.category = coalesce($category, i.category),
		    i.brand = coalesce($brand, i.brand),
		    i.condition = coalesce($condition, i.condition),
		    i.barcode = coalesce($barcode, i.barcode),
		    i.barcode_type = coalesce($barcode_type, i.barcode_type),
		    i.updated_at = datetime()`,
		map[string]any{
			"name":         in.Name,
			"quantity":     quantityOrNil(in.Quantity),
			"location":     nilIfEmpty(location),
			"category":     nilIfEmpty(normalizeCategory(in.Category)),
			"brand":        nilIfEmpty(in.Brand),
			"condition":    nilIfEmpty(in.Condition),
			"barcode":      nilIfEmpty(in.Barcode),
			"barcode_type": nilIfEmpty(in.BarcodeType),
		})
	if err != nil {
		return "", fmt.Errorf("graph: upsert item: %w", err)
	}
	return in.Name, nil
}

func quantityOrNil(q int) any {
	if q == 0 {
		return nil
	}
	return q
}

// normalizeLocationPath trims and re-joins a "A > B > C" path on a single
// canonical separator, per spec.md §3 "separator-normalised".
func normalizeLocationPath(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '>' || r == '/' || r == '\\' })
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, " > ")
}

func (s *Service) upsertLocation(ctx context.Context, path string) error {
	_, err := s.store.Query(ctx, `MERGE (l:Location {path: $path}) ON CREATE SET l.created_at = datetime()`,
		map[string]any{"path": path})
	if err != nil {
		return fmt.Errorf("graph: upsert location: %w", err)
	}
	return nil
}

// Item is one row of inventory queries.
type Item struct {
	Name      string
	Quantity  int
	Location  string
	Category  string
	Brand     string
	Condition string
	Barcode   string
}

// QueryInventory lists items, optionally filtered by category and/or
// location prefix.
func (s *Service) QueryInventory(ctx context.Context, category, locationPrefix string) ([]Item, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (i:Item)
		WHERE ($category = '' OR i.category = $category)
		  AND ($location = '' OR i.location STARTS WITH $location)
		RETURN i ORDER BY i.name LIMIT 200`,
		map[string]any{"category": category, "location": locationPrefix})
	if err != nil {
		return nil, fmt.Errorf("graph: query inventory: %w", err)
	}
	return itemsFromRows(rows), nil
}

func itemsFromRows(rows []graphstore.Record) []Item {
	out := make([]Item, 0, len(rows))
	for _, r := range rows {
		props, _ := r["i"].(map[string]any)
		out = append(out, itemFromProps(props))
	}
	return out
}

func itemFromProps(props map[string]any) Item {
	name, _ := props["name"].(string)
	location, _ := props["location"].(string)
	category, _ := props["category"].(string)
	brand, _ := props["brand"].(string)
	condition, _ := props["condition"].(string)
	barcode, _ := props["barcode"].(string)
	qty := 0
	switch v := props["quantity"].(type) {
	case int64:
		qty = int(v)
	case float64:
		qty = int(v)
	}
	return Item{Name: name, Quantity: qty, Location: location, Category: category, Brand: brand, Condition: condition, Barcode: barcode}
}

// FindItemByBarcode looks up an item by its scanned barcode.
func (s *Service) FindItemByBarcode(ctx context.Context, barcode string) (*Item, error) {
	rows, err := s.store.Query(ctx, `MATCH (i:Item {barcode: $barcode}) RETURN i LIMIT 1`, map[string]any{"barcode": barcode})
	if err != nil {
		return nil, fmt.Errorf("graph: find item by barcode: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	props, _ := rows[0]["i"].(map[string]any)
	item := itemFromProps(props)
	return &item, nil
}

// UnusedItems returns items whose last_used_at is older than olderThanDays
// (or never set), for the inventory "unused" report.
func (s *Service) UnusedItems(ctx context.Context, olderThanDays int) ([]Item, error) {
	rows, err := s.store.Query(ctx, `
		MATCH (i:Item)
		WHERE i.last_used_at IS NULL OR i.last_used_at < datetime() - duration({days: $days})
		RETURN i ORDER BY i.name`,
		map[string]any{"days": olderThanDays})
	if err != nil {
		return nil, fmt.Errorf("graph: unused items: %w", err)
	}
	return itemsFromRows(rows), nil
}

// TouchItemUsage records that an item was just used, updating
// last_used_at.
func (s *Service) TouchItemUsage(ctx context.Context, name string) error {
	if _, err := s.store.Query(ctx, `MATCH (i:Item {name: $name}) SET i.last_used_at = datetime()`,
		map[string]any{"name": name}); err != nil {
		return fmt.Errorf("graph: touch item usage: %w", err)
	}
	return nil
}

// SimilarInventory runs a vector similarity search over item-name
// embeddings indexed under the "item_name" namespace, used by the File
// Processor's auto-item warning (spec.md §4.3: "threshold 0.5, top 3").
func (s *Service) SimilarInventory(ctx context.Context, name string) ([]Item, error) {
	vec, err := s.llm.EmbedOne(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("graph: embed item name: %w", err)
	}
	matches, err := s.vec.Search(ctx, vec, 3, map[string]string{"namespace": "item_name"})
	if err != nil {
		return nil, fmt.Errorf("graph: search similar inventory: %w", err)
	}

	out := make([]Item, 0, len(matches))
	for _, m := range matches {
		if m.Score < s.thresholds.InventorySimilar {
			continue
		}
		itemName, _ := m.Payload["name"].(string)
		if itemName == "" {
			continue
		}
		item, err := s.findItemByName(ctx, itemName)
		if err == nil && item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *Service) findItemByName(ctx context.Context, name string) (*Item, error) {
	rows, err := s.store.Query(ctx, `MATCH (i:Item {name: $name}) RETURN i LIMIT 1`, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	props, _ := rows[0]["i"].(map[string]any)
	item := itemFromProps(props)
	return &item, nil
}

// LinkItemPhoto creates (Item)-[:FROM_PHOTO]->(File) provenance for an
// item auto-created from an inventory-class image (spec.md §4.3
// "Auto-item").
func (s *Service) LinkItemPhoto(ctx context.Context, itemName, fileHash string) error {
	if _, err := s.store.Query(ctx, `
		MATCH (i:Item {name: $name}), (f:File {file_hash: $hash})
		MERGE (i)-[:FROM_PHOTO]->(f)`,
		map[string]any{"name": itemName, "hash": fileHash}); err != nil {
		return fmt.Errorf("graph: link item photo: %w", err)
	}
	return nil
}

// IndexItemName embeds and indexes an item's name for future
// SimilarInventory lookups, called once on item creation.
func (s *Service) IndexItemName(ctx context.Context, name string) error {
	vec, err := s.llm.EmbedOne(ctx, name)
	if err != nil {
		return fmt.Errorf("graph: embed item name: %w", err)
	}
	if _, err := s.vec.Upsert(ctx, uuid.NewString(), vec, map[string]any{"namespace": "item_name", "name": name}); err != nil {
		return fmt.Errorf("graph: index item name: %w", err)
	}
	return nil
}

// InventoryDuplicates groups items whose normalised names collide, the
// method=name branch of inventory/duplicates.
func (s *Service) InventoryDuplicates(ctx context.Context) (map[string][]Item, error) {
	rows, err := s.store.Query(ctx, `MATCH (i:Item) RETURN i`, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: inventory duplicates: %w", err)
	}
	groups := map[string][]Item{}
	for _, r := range rows {
		props, _ := r["i"].(map[string]any)
		item := itemFromProps(props)
		key := normalize(item.Name)
		groups[key] = append(groups[key], item)
	}
	for key, items := range groups {
		if len(items) < 2 {
			delete(groups, key)
		}
	}
	return groups, nil
}
