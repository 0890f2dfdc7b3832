package catalog

import (
	"time"

	"github.com/showlog-io/showlog/models"
	"github.com/showlog-io/showlog/services/tvmaze"
)

func showFromUpstream(s *tvmaze.Show) *models.Show {
	show := &models.Show{
		ShowID:  s.ID,
		Name:    s.Name,
		Summary: s.Summary,
	}
	if s.Image != nil && s.Image.Original != "" {
		img := s.Image.Original
		show.ImageURL = &img
	}
	return show
}

func episodesFromUpstream(showID int64, eps []tvmaze.Episode) []*models.Episode {
	episodes := make([]*models.Episode, 0, len(eps))
	for _, e := range eps {
		episodes = append(episodes, &models.Episode{
			EpisodeID: e.ID,
			ShowID:    showID,
			Season:    e.Season,
			Number:    e.Number,
			Title:     e.Name,
			AirDate:   parseAirDate(e.AirDate),
			Runtime:   e.Runtime,
		})
	}
	return episodes
}

// parseAirDate accepts the upstream YYYY-MM-DD format; empty or
// malformed dates read as unknown.
func parseAirDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
