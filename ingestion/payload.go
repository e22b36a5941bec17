package ingestion

import (
	"encoding/json"
	"time"
)

// UserPayload is a user reference as found in REST payloads.
type UserPayload struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name,omitempty"`
}

// LabelPayload is a label given either as an object or as a bare name.
type LabelPayload struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

// UnmarshalJSON accepts both "bug" and {"name": "bug", "color": "d73a4a"}.
func (l *LabelPayload) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*l = LabelPayload{Name: name}
		return nil
	}
	type plain LabelPayload
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = LabelPayload(p)
	return nil
}

// ReactionsPayload is the REST reaction rollup.
type ReactionsPayload struct {
	TotalCount int `json:"total_count"`
}

// IssuePayload is the REST shape of an issue.
type IssuePayload struct {
	Number        int               `json:"number" validate:"gte=0"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	State         string            `json:"state"`
	Repository    string            `json:"repository,omitempty"`
	RepositoryURL string            `json:"repository_url,omitempty"`
	HTMLURL       string            `json:"html_url"`
	User          *UserPayload      `json:"user"`
	Labels        []LabelPayload    `json:"labels" validate:"dive"`
	Assignees     []UserPayload     `json:"assignees"`
	Comments      int               `json:"comments" validate:"gte=0"`
	Reactions     *ReactionsPayload `json:"reactions"`
	Locked        bool              `json:"locked"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// RepoRefPayload is the head or base reference of a pull request.
type RepoRefPayload struct {
	Repo struct {
		FullName string `json:"full_name"`
	} `json:"repo"`
}

// PullRequestPayload is the REST shape of a pull request. Pull requests
// carry no reaction rollup.
type PullRequestPayload struct {
	Number     int            `json:"number" validate:"gte=0"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	State      string         `json:"state"`
	Merged     bool           `json:"merged"`
	MergedAt   *time.Time     `json:"merged_at"`
	Repository string         `json:"repository,omitempty"`
	Base       RepoRefPayload `json:"base"`
	HTMLURL    string         `json:"html_url"`
	User       *UserPayload   `json:"user"`
	Labels     []LabelPayload `json:"labels" validate:"dive"`
	Assignees  []UserPayload  `json:"assignees"`
	Comments   int            `json:"comments" validate:"gte=0"`
	Locked     bool           `json:"locked"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// countPayload is a GraphQL connection reduced to its total.
type countPayload struct {
	TotalCount int `json:"totalCount" validate:"gte=0"`
}

// DiscussionPayload is the GraphQL shape of a discussion.
type DiscussionPayload struct {
	Number     int    `json:"number" validate:"gte=0"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Closed     bool   `json:"closed"`
	Locked     bool   `json:"locked"`
	Repository string `json:"repository"`
	URL        string `json:"url"`
	Author     *struct {
		Login string `json:"login"`
		Name  string `json:"name,omitempty"`
	} `json:"author"`
	Category *struct {
		Name string `json:"name"`
	} `json:"category"`
	Labels struct {
		Nodes []LabelPayload `json:"nodes" validate:"dive"`
	} `json:"labels"`
	Comments      countPayload `json:"comments"`
	ReactionCount int          `json:"reactionCount" validate:"gte=0"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
