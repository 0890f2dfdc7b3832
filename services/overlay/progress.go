package overlay

import (
	"math"
	"time"

	"github.com/showlog-io/showlog/models"
)

// EpisodeView is one episode with the caller's watched state.
type EpisodeView struct {
	Episode   *models.Episode
	Watched   bool
	WatchedAt *time.Time
}

// SeasonProgress groups a season's episodes with watch counts. A nil
// SeasonNumber collects unordered specials and sorts after all numbered
// seasons.
type SeasonProgress struct {
	SeasonNumber *int
	Episodes     []*EpisodeView
	Watched      int
	Total        int
	Percent      int
}

// ShowDetail is the read-side view of one show for one user.
type ShowDetail struct {
	Show    *models.Show
	Seasons []*SeasonProgress
	Watched int
	Total   int
	Percent int
}

// Percent is round(watched/total*100), 0 for an empty show.
func Percent(watched, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(watched) / float64(total) * 100))
}

// BuildShowDetail groups episodes into seasons and computes progress.
// Episodes must already be in presentation order (season, number,
// unnumbered last); grouping preserves it.
func BuildShowDetail(show *models.Show, episodes []*models.Episode, marks map[int64]*time.Time) *ShowDetail {
	detail := &ShowDetail{
		Show:  show,
		Total: len(episodes),
	}
	var current *SeasonProgress
	for _, e := range episodes {
		if current == nil || !sameSeason(current.SeasonNumber, e.Season) {
			current = &SeasonProgress{SeasonNumber: e.Season}
			detail.Seasons = append(detail.Seasons, current)
		}
		view := &EpisodeView{Episode: e}
		if at, ok := marks[e.EpisodeID]; ok && at != nil {
			view.Watched = true
			view.WatchedAt = at
		}
		current.Episodes = append(current.Episodes, view)
		current.Total++
		if view.Watched {
			current.Watched++
			detail.Watched++
		}
	}
	for _, season := range detail.Seasons {
		season.Percent = Percent(season.Watched, season.Total)
	}
	detail.Percent = Percent(detail.Watched, detail.Total)
	return detail
}

func sameSeason(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
