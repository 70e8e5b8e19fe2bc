package postpilot

import "time"

// Post statuses as stored and exposed over the wire.
const (
	StatusGenerated = "generated"
	StatusImproved  = "improved"
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
)

// MaxPostCharacters is LinkedIn's hard limit for a post body including hashtags.
const MaxPostCharacters = 3000

// Engagement is the predicted engagement attached to generated content.
type Engagement struct {
	PredictedLikes    int `json:"predicted_likes"`
	PredictedComments int `json:"predicted_comments"`
	PredictedShares   int `json:"predicted_shares"`
	EngagementScore   int `json:"engagement_score"`
}

// Post is the core content item stored in SQLite.
type Post struct {
	ID            int64
	UserID        int64
	Content       string
	Hashtags      []string
	Topic         string
	PostType      string
	Status        string
	PromptUsed    string
	Model         string
	Engagement    Engagement
	ScheduledTime *time.Time
	PublishedTime *time.Time
	LinkedInURL   string
	CreatedAt     time.Time
}

// CharacterCount returns the post length as counted against the platform
// limit: content plus the space-joined hashtag block.
func (p Post) CharacterCount() int {
	n := len(p.Content)
	for _, h := range p.Hashtags {
		n += 2 + len(h) // separator + "#" + tag
	}
	return n
}

// User is a registered account, including LinkedIn connection state.
type User struct {
	ID             int64
	Email          string
	Name           string
	HashedPassword string
	Headline       string
	Industry       string
	Role           string
	Company        string
	BrandVoice     string
	LinkedInID     string
	Connected      bool
	AccessToken    string
	TokenExpiry    *time.Time
	CreatedAt      time.Time
}
