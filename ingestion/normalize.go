package ingestion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/issuegraph/core"
)

// NormalizeIssue maps an issue payload onto the common record shape.
func NormalizeIssue(p *IssuePayload) *core.Record {
	repo := p.Repository
	if repo == "" {
		repo = repositoryFromURL(p.RepositoryURL)
	}
	r := &core.Record{
		Kind:       core.RecordKindIssue,
		Number:     p.Number,
		Title:      p.Title,
		Body:       p.Body,
		State:      core.ParseRecordState(p.State),
		Repository: repo,
		Author:     userFrom(p.User),
		Labels:     labelsFrom(p.Labels),
		URL:        p.HTMLURL,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
		Comments:   p.Comments,
		Assignees:  loginsFrom(p.Assignees),
		Locked:     p.Locked,
	}
	if p.Reactions != nil {
		r.Reactions = p.Reactions.TotalCount
	}
	return r
}

// NormalizePullRequest maps a pull request payload onto the common record
// shape. Merged pull requests are closed; reactions default to zero.
func NormalizePullRequest(p *PullRequestPayload) *core.Record {
	repo := p.Repository
	if repo == "" {
		repo = p.Base.Repo.FullName
	}
	state := core.ParseRecordState(p.State)
	if p.Merged || p.MergedAt != nil {
		state = core.RecordStateClosed
	}
	return &core.Record{
		Kind:       core.RecordKindPullRequest,
		Number:     p.Number,
		Title:      p.Title,
		Body:       p.Body,
		State:      state,
		Repository: repo,
		Author:     userFrom(p.User),
		Labels:     labelsFrom(p.Labels),
		URL:        p.HTMLURL,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
		Comments:   p.Comments,
		Assignees:  loginsFrom(p.Assignees),
		Locked:     p.Locked,
	}
}

// NormalizeDiscussion maps a discussion payload onto the common record
// shape. Discussions have no assignees.
func NormalizeDiscussion(p *DiscussionPayload) *core.Record {
	state := core.RecordStateOpen
	if p.Closed {
		state = core.RecordStateClosed
	}
	r := &core.Record{
		Kind:       core.RecordKindDiscussion,
		Number:     p.Number,
		Title:      p.Title,
		Body:       p.Body,
		State:      state,
		Repository: p.Repository,
		Labels:     labelsFrom(p.Labels.Nodes),
		URL:        p.URL,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
		Comments:   p.Comments.TotalCount,
		Reactions:  p.ReactionCount,
		Locked:     p.Locked,
	}
	if p.Author != nil {
		r.Author = core.User{Login: p.Author.Login, Name: p.Author.Name}
	}
	if p.Category != nil {
		r.Category = p.Category.Name
	}
	return r
}

// normalizer decodes, validates and normalizes raw payloads of one kind.
type normalizer struct {
	validate *validator.Validate
}

func newNormalizer() *normalizer {
	return &normalizer{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (n *normalizer) normalize(kind core.RecordKind, raw json.RawMessage) (*core.Record, error) {
	var (
		payload any
		convert func() *core.Record
	)
	switch kind {
	case core.RecordKindIssue:
		p := &IssuePayload{}
		payload, convert = p, func() *core.Record { return NormalizeIssue(p) }
	case core.RecordKindPullRequest:
		p := &PullRequestPayload{}
		payload, convert = p, func() *core.Record { return NormalizePullRequest(p) }
	case core.RecordKindDiscussion:
		p := &DiscussionPayload{}
		payload, convert = p, func() *core.Record { return NormalizeDiscussion(p) }
	default:
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidRecordKind, kind)
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := n.validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	record := convert()
	if err := core.ValidateRecord(record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return record, nil
}

func userFrom(u *UserPayload) core.User {
	if u == nil {
		return core.User{}
	}
	return core.User{ID: u.ID, Login: u.Login, Name: u.Name}
}

func labelsFrom(labels []LabelPayload) []core.Label {
	if len(labels) == 0 {
		return nil
	}
	out := make([]core.Label, len(labels))
	for i, l := range labels {
		out[i] = core.Label{Name: l.Name, Color: l.Color}
	}
	return out
}

func loginsFrom(users []UserPayload) []string {
	if len(users) == 0 {
		return nil
	}
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u.Login != "" {
			out = append(out, u.Login)
		}
	}
	return out
}

// repositoryFromURL extracts "owner/name" from a REST repository URL such as
// https://api.github.com/repos/owner/name.
func repositoryFromURL(url string) string {
	_, rest, ok := strings.Cut(url, "/repos/")
	if !ok {
		return ""
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[0] + "/" + parts[1]
}
