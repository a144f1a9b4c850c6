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

package corpus

import "errors"

var (
	// ErrInvalidCorpus indicates that the corpus could not be loaded as a whole.
	ErrInvalidCorpus = errors.New("invalid corpus")

	// ErrAlreadyLoaded indicates that Load was called on a loaded store.
	ErrAlreadyLoaded = errors.New("corpus already loaded")

	// ErrUnsupportedFormat indicates a corpus file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported corpus file format")

	// ErrInvalidMaxAttempts indicates that the max attempts parameter is invalid.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
