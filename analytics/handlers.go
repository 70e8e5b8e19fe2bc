package analytics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// PostSource supplies post status counts from the content store.
type PostSource interface {
	PostCounts(userID int64, since time.Time) (PostCounts, error)
}

// Handler serves the analytics API.
type Handler struct {
	store *Store
	posts PostSource
}

// NewHandler creates a Handler over the analytics store and post source.
func NewHandler(store *Store, posts PostSource) *Handler {
	return &Handler{store: store, posts: posts}
}

// RegisterRoutes mounts the analytics endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/dashboard", h.Dashboard)
	g.GET("/post/:id", h.PostAnalytics)
	g.POST("/update/:id", h.UpdatePost)
}

// Dashboard returns the 30-day summary of post activity and engagement.
func (h *Handler) Dashboard(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	since := time.Now().AddDate(0, 0, -30)
	counts, err := h.posts.PostCounts(userID, since)
	if err != nil {
		return err
	}
	records, err := h.store.ListForUser(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_stats":         counts,
		"engagement_summary": Summarize(records),
	})
}

// PostAnalytics returns the counters for one post.
func (h *Handler) PostAnalytics(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	record, err := h.store.Get(postID, userID)
	if err == sql.ErrNoRows {
		return echo.NewHTTPError(http.StatusNotFound, "no analytics found for this post")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

// UpdatePost overwrites the counters for one post.
func (h *Handler) UpdatePost(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	var record PostAnalytics
	if err := c.Bind(&record); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	record.PostID = postID
	record.UserID = userID
	if err := h.store.Update(record); err != nil {
		if err == sql.ErrNoRows {
			return echo.NewHTTPError(http.StatusNotFound, "no analytics found for this post")
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "post_id": postID})
}
