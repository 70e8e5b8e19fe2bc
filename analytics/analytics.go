// Package analytics tracks per-post engagement counters and aggregates
// them into the dashboard summary the content workflow consumes.
package analytics

import (
	"fmt"
	"time"
)

// PostAnalytics holds the engagement counters for one published post.
type PostAnalytics struct {
	ID             int64     `json:"-"`
	UserID         int64     `json:"-"`
	PostID         int64     `json:"post_id"`
	LikesCount     int       `json:"likes_count"`
	CommentsCount  int       `json:"comments_count"`
	SharesCount    int       `json:"shares_count"`
	ViewsCount     int       `json:"views_count"`
	ClicksCount    int       `json:"clicks_count"`
	EngagementRate string    `json:"engagement_rate"`
	Reach          int       `json:"reach"`
	Impressions    int       `json:"impressions"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PostCounts summarizes a user's posts by status over a window.
type PostCounts struct {
	Total     int `json:"total_posts"`
	Drafts    int `json:"drafts"`
	Scheduled int `json:"scheduled"`
	Published int `json:"published"`
}

// EngagementSummary aggregates engagement across published posts.
type EngagementSummary struct {
	TotalLikes    int    `json:"total_likes"`
	TotalComments int    `json:"total_comments"`
	TotalShares   int    `json:"total_shares"`
	AvgRate       string `json:"avg_engagement_rate"`
}

// Summarize computes the engagement summary for the given records.
func Summarize(records []PostAnalytics) EngagementSummary {
	var s EngagementSummary
	for _, r := range records {
		s.TotalLikes += r.LikesCount
		s.TotalComments += r.CommentsCount
		s.TotalShares += r.SharesCount
	}
	if len(records) == 0 {
		s.AvgRate = "0%"
		return s
	}
	avg := float64(s.TotalLikes+s.TotalComments+s.TotalShares) / float64(len(records))
	s.AvgRate = fmt.Sprintf("%.1f%%", avg)
	return s
}
