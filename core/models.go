package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// RecordID derives the stable ID of a record from its kind, repository and number.
// Re-ingesting the same record always yields the same ID.
func RecordID(kind RecordKind, repository string, number int) ID {
	return IDFromContent(kind.String() + "|" + repository + "|" + strconv.Itoa(number))
}

// RecordKind identifies the sub-collection a record belongs to.
type RecordKind int

const (
	// RecordKindIssue is a repository issue.
	RecordKindIssue RecordKind = iota + 1
	// RecordKindPullRequest is a pull request.
	RecordKindPullRequest
	// RecordKindDiscussion is a discussion thread.
	RecordKindDiscussion
)

// RecordKinds lists every kind in scan order.
var RecordKinds = []RecordKind{RecordKindIssue, RecordKindPullRequest, RecordKindDiscussion}

func (k RecordKind) String() string {
	switch k {
	case RecordKindIssue:
		return "issue"
	case RecordKindPullRequest:
		return "pull_request"
	case RecordKindDiscussion:
		return "discussion"
	default:
		return "unknown"
	}
}

// ParseRecordKind maps the string form produced by String back to a RecordKind.
// Plural and hyphenated forms are accepted for command-line convenience.
func ParseRecordKind(s string) (RecordKind, error) {
	switch s {
	case "issue", "issues":
		return RecordKindIssue, nil
	case "pull_request", "pull-request", "pull_requests", "pr", "prs":
		return RecordKindPullRequest, nil
	case "discussion", "discussions":
		return RecordKindDiscussion, nil
	default:
		return 0, ErrInvalidRecordKind
	}
}

// RecordState is the lifecycle state of a record.
type RecordState int

const (
	// RecordStateOpen marks an open record.
	RecordStateOpen RecordState = iota + 1
	// RecordStateClosed marks a closed (or merged) record.
	RecordStateClosed
	// RecordStateOther covers any source state that is neither open nor closed.
	RecordStateOther
)

func (s RecordState) String() string {
	switch s {
	case RecordStateOpen:
		return "open"
	case RecordStateClosed:
		return "closed"
	case RecordStateOther:
		return "other"
	default:
		return "unknown"
	}
}

// ParseRecordState maps a source state string to a RecordState.
// Unrecognised values, including the empty string, map to RecordStateOther.
func ParseRecordState(s string) RecordState {
	switch s {
	case "open", "OPEN":
		return RecordStateOpen
	case "closed", "CLOSED", "merged", "MERGED":
		return RecordStateClosed
	default:
		return RecordStateOther
	}
}

// User is the author of a record.
type User struct {
	ID    int64
	Login string
	Name  string
}

// Label is a tag attached to a record.
type Label struct {
	Name  string
	Color string
}

// Record is the normalized shape shared by issues, pull requests and discussions.
// Records are produced at the ingestion boundary and never mutated by search or graph code.
type Record struct {
	Id         ID
	Kind       RecordKind
	Number     int
	Title      string
	Body       string // Optional
	State      RecordState
	Repository string // Optional, "owner/name"
	Author     User
	Labels     []Label
	URL        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Comments   int
	Reactions  int      // Zero when the source does not report reactions
	Assignees  []string // Empty when the source has no assignees
	Locked     bool
	Category   string // Discussions only
}

// LabelNames returns the label names in their original order.
func (r *Record) LabelNames() []string {
	names := make([]string, len(r.Labels))
	for i, l := range r.Labels {
		names[i] = l.Name
	}
	return names
}

// MatchType records which record fields matched a query.
type MatchType int

const (
	// MatchTypeTitle means only the title matched.
	MatchTypeTitle MatchType = iota + 1
	// MatchTypeBody means only the body matched.
	MatchTypeBody
	// MatchTypeLabels means only labels matched.
	MatchTypeLabels
	// MatchTypeCombined means more than one field matched, or none did.
	MatchTypeCombined
)

func (m MatchType) String() string {
	switch m {
	case MatchTypeTitle:
		return "title"
	case MatchTypeBody:
		return "body"
	case MatchTypeLabels:
		return "labels"
	case MatchTypeCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so results render with readable match types.
func (m MatchType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ScoredResult is a record paired with its relevance to a query.
type ScoredResult struct {
	Record         *Record
	RelevanceScore float64 // In [0, 1]
	MatchType      MatchType
}
