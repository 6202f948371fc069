package repository

import (
	"context"
	"fmt"

	"iris-api/models"
)

// DefaultCatalog is the reference data installed by cmd/migrate.
var DefaultCatalog = []struct {
	Category      string
	SubCategories []string
}{
	{"Process Improvement", []string{"Automation", "Cycle Time Reduction", "Quality"}},
	{"Cost Optimization", []string{"Infrastructure", "Licensing", "Resource Utilization"}},
	{"Customer Experience", []string{"Self Service", "Support", "Onboarding"}},
	{"Technology", []string{"Tooling", "Security", "Architecture"}},
}

var DefaultReviewParameters = []struct {
	Name        string
	Description string
}{
	{"Desirability", "Does the idea address a real need of its users?"},
	{"Feasibility", "Can it be built with the skills and time available?"},
	{"Viability", "Does it make business sense over time?"},
	{"Innovation", "How novel is the approach?"},
	{"Impact", "Expected size of the benefit once delivered."},
}

// SeedDefaults installs roles, categories and review parameters. Seeder
// implementations de-duplicate by name, so it is safe to run repeatedly.
func SeedDefaults(ctx context.Context, s Seeder) error {
	for _, role := range []string{models.RoleIBUHead, models.RoleChallengeOwner, models.RoleMentor} {
		if err := s.EnsureRole(ctx, role); err != nil {
			return fmt.Errorf("seed role %q: %w", role, err)
		}
	}
	for _, cat := range DefaultCatalog {
		c := models.ImprovementCategory{Name: cat.Category}
		if err := s.CreateCategory(ctx, &c); err != nil {
			return fmt.Errorf("seed category %q: %w", cat.Category, err)
		}
		for _, name := range cat.SubCategories {
			sc := models.ImprovementSubCategory{CategoryID: c.ID, Name: name}
			if err := s.CreateSubCategory(ctx, &sc); err != nil {
				return fmt.Errorf("seed subcategory %q: %w", name, err)
			}
		}
	}
	for _, p := range DefaultReviewParameters {
		desc := p.Description
		rp := models.ReviewParameter{ParameterName: p.Name, Description: &desc, IsActive: true}
		if err := s.CreateReviewParameter(ctx, &rp); err != nil {
			return fmt.Errorf("seed review parameter %q: %w", p.Name, err)
		}
	}
	return nil
}
