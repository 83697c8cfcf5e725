package writing

import (
	"context"
	"fmt"

	"github.com/inkline/writing-service/internal/dateutil"
)

type seedSession struct {
	daysAgo int
	project string
	words   int
	note    string
}

var seedProjects = []string{"The Novel", "Blog Posts", "Short Stories"}

var seedSessions = []seedSession{
	// Recent week
	{1, "The Novel", 1350, "Wrapped up chapter 12"},
	{1, "Blog Posts", 620, ""},
	{2, "The Novel", 980, ""},
	{3, "Short Stories", 2400, "Finished draft of The Lantern"},
	{4, "The Novel", 750, ""},
	{5, "Blog Posts", 1100, "Productivity tips article"},
	{6, "The Novel", 1600, ""},
	// Previous week
	{8, "The Novel", 2200, "Chapter 11 complete"},
	{9, "Blog Posts", 850, ""},
	{9, "Short Stories", 400, ""},
	{10, "The Novel", 1400, ""},
	{12, "Short Stories", 1800, "The Clockmaker rough draft"},
	{13, "The Novel", 900, ""},
	{14, "Blog Posts", 1350, "Book review post"},
	// 3 weeks ago
	{16, "The Novel", 3100, "Breakthrough on plot twist"},
	{17, "Blog Posts", 500, ""},
	{18, "Short Stories", 1200, ""},
	{19, "The Novel", 670, ""},
	{21, "The Novel", 1500, ""},
	{21, "Blog Posts", 2100, "Long-form craft essay"},
	// 4 weeks ago
	{23, "Short Stories", 950, ""},
	{25, "The Novel", 1800, ""},
	{26, "Blog Posts", 300, ""},
	{28, "The Novel", 2500, "Chapter 9 rewrite"},
	// 5-6 weeks ago
	{30, "Short Stories", 1600, "Flash fiction collection"},
	{32, "The Novel", 700, ""},
	{34, "Blog Posts", 1900, "Writing tools roundup"},
	{36, "The Novel", 1100, ""},
	{38, "Short Stories", 2800, "Entered contest submission"},
	{40, "The Novel", 450, ""},
	{42, "Blog Posts", 750, ""},
	// 7-8 weeks ago
	{44, "The Novel", 1300, ""},
	{46, "Short Stories", 600, ""},
	{48, "The Novel", 2000, "Act two opener"},
	{50, "Blog Posts", 1450, ""},
	{53, "The Novel", 850, ""},
	{56, "Short Stories", 1100, ""},
	{58, "The Novel", 1700, ""},
}

// Seed populates the store with the demo dataset for the given user: three
// projects and roughly two months of sessions ending yesterday. It is a
// no-op when the user already has sessions.
func (s *Service) Seed(ctx context.Context, userID string) error {
	existing, err := s.ListSessions(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, name := range seedProjects {
		if _, err := s.CreateProject(ctx, userID, name); err != nil {
			return fmt.Errorf("seed project %q: %w", name, err)
		}
	}

	for _, def := range seedSessions {
		date := dateutil.Format(s.clock.Now().AddDate(0, 0, -def.daysAgo))
		_, err := s.CreateSession(ctx, CreateSessionInput{
			UserID:    userID,
			Date:      date,
			Project:   def.project,
			WordCount: def.words,
			Note:      def.note,
		})
		if err != nil {
			return fmt.Errorf("seed session on %s: %w", date, err)
		}
	}
	return nil
}
