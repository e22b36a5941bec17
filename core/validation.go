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

package core

import (
	"fmt"
	"time"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Kind must be valid (issue, pull request or discussion)
//   - State must be valid
//   - Number must not be negative
//   - CreatedAt must not be in the future
//
// NOT validated (optional in every source):
//   - Title, Body, Repository, Author, Labels (empty text never matches)
//   - ID (derived from kind, repository and number at ingestion)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if err := ValidateRecordKind(record.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if record.State < RecordStateOpen || record.State > RecordStateOther {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidRecord, ErrInvalidRecordState, record.State)
	}

	if record.Number < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidNumber)
	}

	if !IsValidTimestamp(record.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateRecordKind validates that a RecordKind has a valid value.
func ValidateRecordKind(kind RecordKind) error {
	switch kind {
	case RecordKindIssue, RecordKindPullRequest, RecordKindDiscussion:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidRecordKind, kind)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
