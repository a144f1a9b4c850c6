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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSignal indicates a Signal failed validation.
	ErrInvalidSignal = errors.New("invalid signal")

	// ErrInvalidID indicates the signal identifier is not a positive integer.
	ErrInvalidID = errors.New("signal id must be positive")

	// ErrLatitudeOutOfRange indicates a latitude outside [-90, 90].
	ErrLatitudeOutOfRange = errors.New("latitude out of range")

	// ErrLongitudeOutOfRange indicates a longitude outside [-180, 180].
	ErrLongitudeOutOfRange = errors.New("longitude out of range")

	// ErrMissingField indicates a required signal field is blank.
	ErrMissingField = errors.New("required field missing")

	// ErrNegativeBudget indicates a budget below zero.
	ErrNegativeBudget = errors.New("budget cannot be negative")
)
