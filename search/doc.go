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

// Package search provides lexical relevance search over issues, pull requests
// and discussions.
//
// A search runs in three stages:
//   - ExtractTerms normalizes the query into at most ten search terms
//   - Score rates each record against the terms using title, body and label matches
//   - Searcher.Search scans the enabled record kinds, filters by minimum
//     relevance, ranks by score and truncates to the result limit
//
// Search never fails: a corpus read error is logged and reported to the
// SearchMonitor, and the search returns an empty result set.
package search
