package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	StatusPending = "pending"

	DefaultName        = "Unnamed Product"
	DefaultDescription = "No description"
	DefaultCategory    = "Uncategorized"
	DefaultPictureURL  = "https://via.placeholder.com/300x200?text=No+Image"
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	PictureURL  string  `json:"pictureUrl"`
	Status      string  `json:"status,omitempty"`
}

// Price decodes a JSON number or numeric string. Anything else, including
// negative and non-finite values, becomes 0.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	*p = 0

	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	var raw string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(b)
	}

	*p = Price(coercePrice(raw))
	return nil
}

func coercePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ProductPatch is a partial product. Nil fields are left untouched by Apply.
// ID is accepted on the wire but never applied.
type ProductPatch struct {
	ID          *string `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *Price  `json:"price,omitempty"`
	Category    *string `json:"category,omitempty"`
	PictureURL  *string `json:"pictureUrl,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (pp ProductPatch) Apply(p Product) Product {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = float64(*pp.Price)
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.PictureURL != nil {
		p.PictureURL = *pp.PictureURL
	}
	if pp.Status != nil {
		p.Status = *pp.Status
	}
	return p
}

// Product builds a new record from the patch. The id is left empty for the
// store to assign.
func (pp ProductPatch) Product() Product {
	return pp.Apply(Product{})
}

func seedProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "Wireless Headphones",
			Description: "Noise-cancelling over-ear headphones with 30h battery life",
			Price:       199.99,
			Category:    "Electronics",
			PictureURL:  "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400",
		},
		{
			ID:          "2",
			Name:        "Smart Watch",
			Description: "Fitness tracking smart watch with heart rate monitor",
			Price:       249.99,
			Category:    "Electronics",
			PictureURL:  "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400",
		},
	}
}
