package graph

import "errors"

// Graph invariant violations reported by Validate.
var (
	ErrNilGraph             = errors.New("graph is nil")
	ErrDuplicateNode        = errors.New("duplicate node id")
	ErrDanglingEdge         = errors.New("edge references missing node")
	ErrSelfLoop             = errors.New("edge connects node to itself")
	ErrDuplicateEdge        = errors.New("duplicate edge")
	ErrWeakSimilarityEdge   = errors.New("similarity edge at or below threshold")
	ErrUnknownClusterMember = errors.New("cluster member is not a node")
)
