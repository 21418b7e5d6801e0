package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// referencedSubjectIDs lists the distinct subject ids across responses.
func referencedSubjectIDs(responses []models.Response) []string {
	seen := make(map[string]struct{})
	for _, r := range responses {
		for _, sr := range r.SubjectResponses {
			if sr.SubjectID != "" {
				seen[sr.SubjectID] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// loadResponsesAndCatalog fetches the filtered responses together with the
// reference data needed to resolve them. Courses and faculty load while the
// responses are fetched; subjects follow once their ids are known.
func loadResponsesAndCatalog(ctx context.Context, repo repositories.Repository, formID string, filters repositories.ResponseFilters) ([]models.Response, analytics.Catalog, error) {
	var (
		responses []models.Response
		subjects  []models.Subject
		courses   []models.Course
		faculty   []models.Faculty
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		responses, err = repo.Response().ListByForm(gctx, nil, formID, filters)
		if err != nil {
			return fmt.Errorf("failed to load responses: %w", err)
		}
		ids := referencedSubjectIDs(responses)
		if len(ids) == 0 {
			return nil
		}
		subjects, err = repo.Subject().GetByIDs(gctx, nil, ids)
		if err != nil {
			return fmt.Errorf("failed to load subjects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		courses, err = repo.Course().List(gctx, nil)
		if err != nil {
			return fmt.Errorf("failed to load courses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		faculty, err = repo.Faculty().List(gctx, nil)
		if err != nil {
			return fmt.Errorf("failed to load faculty: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, analytics.Catalog{}, err
	}
	return responses, analytics.NewCatalog(courses, subjects, faculty), nil
}
