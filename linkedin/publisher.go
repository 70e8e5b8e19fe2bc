package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// PublishResult reports the outcome of a publish attempt. Err is set
// instead of returning an error so callers can relay the structural
// success flag to their own clients.
type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	PostURL string `json:"post_url,omitempty"`
	Err     string `json:"error,omitempty"`
}

type ugcPost struct {
	Author          string                 `json:"author"`
	LifecycleState  string                 `json:"lifecycleState"`
	SpecificContent map[string]interface{} `json:"specificContent"`
	Visibility      map[string]string      `json:"visibility"`
}

// Publish posts content to the member's feed via the UGC Posts API.
// A transport error is returned as error; an upstream rejection comes back
// as a PublishResult with Success=false.
func (c *Client) Publish(ctx context.Context, accessToken, personURN, content string) (PublishResult, error) {
	payload := ugcPost{
		Author:         personURN,
		LifecycleState: "PUBLISHED",
		SpecificContent: map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": content},
				"shareMediaCategory": "NONE",
			},
		},
		Visibility: map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return PublishResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+"/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return PublishResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return PublishResult{}, fmt.Errorf("linkedin: publish: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return PublishResult{}, fmt.Errorf("linkedin: read publish response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return PublishResult{
			Success: false,
			Err:     fmt.Sprintf("LinkedIn publishing failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}, nil
	}

	var result struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(respBody, &result)
	return PublishResult{
		Success: true,
		PostID:  result.ID,
		PostURL: "https://www.linkedin.com/feed/update/" + result.ID,
	}, nil
}
