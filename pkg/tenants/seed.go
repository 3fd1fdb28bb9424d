package tenants

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedRestaurant is one restaurant in a seed document (YAML file or TENANT_SEED_JSON).
type SeedRestaurant struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Subdomain   string         `json:"subdomain" yaml:"subdomain"`
	Description string         `json:"description" yaml:"description"`
	OwnerID     string         `json:"ownerId" yaml:"owner_id"`
	Inactive    bool           `json:"inactive" yaml:"inactive"`
	Categories  []SeedCategory `json:"categories" yaml:"categories"`
}

type SeedCategory struct {
	Name  string     `json:"name" yaml:"name"`
	Order int        `json:"order" yaml:"order"`
	Items []SeedItem `json:"items" yaml:"items"`
}

type SeedItem struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	Unavailable bool    `json:"unavailable" yaml:"unavailable"`
}

// Seeder is implemented by stores that accept seed data. Seeding is idempotent per subdomain.
type Seeder interface {
	Seed(ctx context.Context, entries []SeedRestaurant) error
}

// LoadSeedFile reads seed restaurants from a .yaml, .yml or .json file.
func LoadSeedFile(path string) ([]SeedRestaurant, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Restaurants []SeedRestaurant `json:"restaurants" yaml:"restaurants"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("json parse: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("yaml parse: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed file %q", path)
	}
	return doc.Restaurants, nil
}

// ParseSeedJSON parses the TENANT_SEED_JSON format: a JSON array of restaurants.
func ParseSeedJSON(raw string) ([]SeedRestaurant, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var entries []SeedRestaurant
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
