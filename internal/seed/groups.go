package seed

import (
	"context"
	_ "embed"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed groups.yml
var groupsYAML []byte

type groupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// LoadGroups parses a YAML list of groups. Every entry needs a title and a
// slug, and slugs must be unique.
func LoadGroups(data []byte) ([]models.Group, error) {
	var fixtures []groupFixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse groups: %w", err)
	}

	seen := make(map[string]bool, len(fixtures))
	groups := make([]models.Group, 0, len(fixtures))
	for i, f := range fixtures {
		if f.Title == "" || f.Slug == "" {
			return nil, fmt.Errorf("group %d: title and slug are required", i)
		}
		if seen[f.Slug] {
			return nil, fmt.Errorf("group %d: duplicate slug %q", i, f.Slug)
		}
		seen[f.Slug] = true
		groups = append(groups, models.Group{Title: f.Title, Slug: f.Slug, Description: f.Description})
	}
	return groups, nil
}

// BuiltInGroups returns the groups shipped with the seeder.
func BuiltInGroups() ([]models.Group, error) {
	return LoadGroups(groupsYAML)
}

// Groups upserts the built-in groups by slug and returns them with their ids.
func Groups(ctx context.Context, db *gorm.DB) ([]models.Group, error) {
	groups, err := BuiltInGroups()
	if err != nil {
		return nil, err
	}

	repo := repository.NewGroupRepository(db)
	for i := range groups {
		if err := repo.Upsert(ctx, &groups[i]); err != nil {
			return nil, fmt.Errorf("seed group %s: %w", groups[i].Slug, err)
		}
	}
	return groups, nil
}
