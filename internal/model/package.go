package model

import "github.com/shopspring/decimal"

// Package is a purchasable tier granting a contest-posting quota.
type Package struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	ContestLimit int             `json:"limit"`
	Description  string          `json:"description"`
}

// Catalog is the fixed set of packages on offer.
type Catalog struct {
	packages []Package
}

// NewCatalog builds a catalog over the given packages.
func NewCatalog(packages ...Package) *Catalog {
	return &Catalog{packages: append([]Package(nil), packages...)}
}

// DefaultCatalog returns the three standard tiers.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Package{
			ID:           "starter",
			Name:         "Starter",
			Price:        decimal.Zero,
			ContestLimit: 2,
			Description:  "Post up to 2 contests.",
		},
		Package{
			ID:           "pro",
			Name:         "Pro",
			Price:        decimal.NewFromInt(10),
			ContestLimit: 10,
			Description:  "Post up to 10 contests.",
		},
		Package{
			ID:           "ultimate",
			Name:         "Ultimate",
			Price:        decimal.NewFromInt(25),
			ContestLimit: 100,
			Description:  "Post up to 100 contests.",
		},
	)
}

// All returns a copy of every package, in catalog order.
func (c *Catalog) All() []Package {
	return append([]Package(nil), c.packages...)
}

// Find looks up a package by id.
func (c *Catalog) Find(id string) (Package, bool) {
	for _, p := range c.packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}
