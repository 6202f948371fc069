package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"iris-api/repository"
	"iris-api/utils"
)

const (
	ReportChallenges = "challenges"
	ReportGrassroot  = "grassroot"
)

// ReportRequest selects records created in [From, To+1 day).
type ReportRequest struct {
	Type string
	From string // YYYY-MM-DD
	To   string // YYYY-MM-DD
}

// Filename is the attachment name suggested for the export.
func (r ReportRequest) Filename() string {
	return fmt.Sprintf("%s_report_%s_to_%s.csv", r.Type, r.From, r.To)
}

type ReportService struct {
	base
}

func NewReportService(store repository.Store, opts Options) *ReportService {
	return &ReportService{base: newBase(store, opts)}
}

// Validate checks the request before any output is written.
func (s *ReportService) Validate(req ReportRequest) (time.Time, time.Time, error) {
	if req.Type == "" || req.From == "" || req.To == "" {
		return time.Time{}, time.Time{}, invalid("", "report_type, from_date and to_date are required")
	}
	if req.Type != ReportChallenges && req.Type != ReportGrassroot {
		return time.Time{}, time.Time{}, invalid("report_type", "must be challenges or grassroot")
	}
	from, err := time.ParseInLocation(utils.DateLayout, req.From, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("from_date", "must be YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(utils.DateLayout, req.To, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("to_date", "must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, invalid("to_date", "must not be before from_date")
	}
	return from, to.AddDate(0, 0, 1), nil
}

// Export writes the CSV report to w.
func (s *ReportService) Export(ctx context.Context, w io.Writer, req ReportRequest) error {
	from, to, err := s.Validate(req)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	switch req.Type {
	case ReportChallenges:
		err = s.writeChallenges(ctx, cw, from, to)
	case ReportGrassroot:
		err = s.writeGrassroot(ctx, cw, from, to)
	}
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *ReportService) writeChallenges(ctx context.Context, cw *csv.Writer, from, to time.Time) error {
	rows, err := s.store.ListChallenges(ctx, repository.ChallengeFilter{CreatedFrom: &from, CreatedTo: &to})
	if err != nil {
		return err
	}
	names := newNameCache(s.store)
	if err := cw.Write([]string{"Title", "Status", "Start Date", "End Date", "Created By", "Target Audience", "Visibility"}); err != nil {
		return err
	}
	for _, ch := range rows {
		creator, err := names.get(ctx, ch.CreatedByID)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{
			ch.Title,
			string(ch.Status),
			utils.FormatDate(ch.StartDate),
			utils.FormatDate(ch.EndDate),
			creator,
			string(ch.TargetAudience),
			string(ch.Visibility),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReportService) writeGrassroot(ctx context.Context, cw *csv.Writer, from, to time.Time) error {
	rows, err := s.store.ListIdeas(ctx, repository.IdeaFilter{CreatedFrom: &from, CreatedTo: &to})
	if err != nil {
		return err
	}
	names := newNameCache(s.store)
	if err := cw.Write([]string{"Ideator", "Category", "Subcategory", "Status", "Created At", "Proposed Idea"}); err != nil {
		return err
	}
	for _, idea := range rows {
		ideator, err := names.get(ctx, idea.IdeatorID)
		if err != nil {
			return err
		}
		category, subCategory := "N/A", "N/A"
		if c, err := s.store.GetCategory(ctx, idea.CategoryID); err == nil {
			category = c.Name
		}
		if sc, err := s.store.GetSubCategory(ctx, idea.SubCategoryID); err == nil {
			subCategory = sc.Name
		}
		if err := cw.Write([]string{
			ideator,
			category,
			subCategory,
			utils.StatusLabel(string(idea.Status)),
			utils.FormatDateTime(idea.CreatedAt),
			headRunes(strings.TrimSpace(idea.ProposedIdea), 100),
		}); err != nil {
			return err
		}
	}
	return nil
}

type nameCache struct {
	store repository.Store
	names map[string]string
}

func newNameCache(store repository.Store) *nameCache {
	return &nameCache{store: store, names: map[string]string{}}
}

func (c *nameCache) get(ctx context.Context, userID string) (string, error) {
	if name, ok := c.names[userID]; ok {
		return name, nil
	}
	name := "N/A"
	u, err := c.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		name = u.FullName
	case !errors.Is(err, repository.ErrNotFound):
		return "", err
	}
	c.names[userID] = name
	return name, nil
}

func headRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
