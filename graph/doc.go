// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph turns ranked search results into a relationship graph.
//
// A Builder emits one node per record plus deduplicated repository, user and
// shared-label nodes. Records connect to their repository, author and labels,
// and to each other through similarity edges when their pairwise similarity
// exceeds SimilarityThreshold. Nodes that share a repository form a cluster,
// and a Layout places everything on a 2D canvas.
//
// Example:
//
//	results := searcher.Search(ctx, "login bug", nil)
//	builder, _ := graph.NewBuilder(graph.WithLayout(graph.NewLayout(graph.WithSeed(7))))
//	data := builder.Build(results)
//	dot := graph.ExportDOT(data)
package graph
