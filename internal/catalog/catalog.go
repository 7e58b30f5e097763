package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Entry is one catalog product. The catalog is loaded once at startup and
// read-only afterwards, so it is safe for concurrent readers.
type Entry struct {
	SKU         string  `json:"sku"`
	ProductName string  `json:"product_name"`
	Stock       int     `json:"stock"`
	MOQ         int     `json:"moq"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// Catalog is an immutable in-memory product table in file order.
type Catalog struct {
	entries []Entry
}

// New wraps a fixed entry list, preserving order for match tie-breaking.
func New(entries []Entry) *Catalog {
	return &Catalog{entries: entries}
}

// Entries returns the catalog rows in load order. Callers must not mutate.
func (c *Catalog) Entries() []Entry { return c.entries }

func (c *Catalog) Len() int { return len(c.entries) }

// LoadCSV reads a product catalog with columns Product_Code, Product_Name,
// Available_in_Stock, Min_Order_Quantity, Price and optional Description.
// Any read or parse failure is fatal to startup and returned as an error.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"Product_Code", "Product_Name", "Available_in_Stock", "Min_Order_Quantity", "Price"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("catalog %s: missing column %s", path, required)
		}
	}

	var entries []Entry
	for n, row := range rows[1:] {
		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		stock, err := strconv.Atoi(get("Available_in_Stock"))
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: stock: %w", n+2, err)
		}
		moq, err := strconv.Atoi(get("Min_Order_Quantity"))
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: moq: %w", n+2, err)
		}
		price, err := strconv.ParseFloat(get("Price"), 64)
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: price: %w", n+2, err)
		}
		entries = append(entries, Entry{
			SKU:         get("Product_Code"),
			ProductName: get("Product_Name"),
			Stock:       stock,
			MOQ:         moq,
			Price:       price,
			Description: get("Description"),
		})
	}
	return New(entries), nil
}
