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

package match

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a missing, blank or overlong request field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates that the embedding or reasoning
	// provider failed and no result could be produced.
	ErrProviderUnavailable = errors.New("matching provider unavailable")

	// ErrTimeout indicates that a provider call ran out of time.
	// It wraps ErrProviderUnavailable.
	ErrTimeout = fmt.Errorf("%w: timed out", ErrProviderUnavailable)

	// ErrCorpusNotLoaded is returned when matching is attempted before the
	// signal corpus has been loaded.
	ErrCorpusNotLoaded = errors.New("signal corpus not loaded")

	// ErrStoreRequired is returned when a corpus store is not provided.
	ErrStoreRequired = errors.New("corpus store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
