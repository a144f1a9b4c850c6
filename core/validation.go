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
	"math"
	"strings"
)

// ValidateSignal validates a Signal according to domain rules.
//
// Validation rules:
//   - ID must be positive
//   - Lat must be within [-90, 90] and Lng within [-180, 180]
//   - Title, Description and Category must not be blank
//   - Budget, when present, must not be negative
//
// NOT validated (free text, may be empty):
//   - City, State, Country, Region, Timeline
//   - Stakeholders, SourceURL, Keywords
func ValidateSignal(signal *Signal) error {
	if signal == nil {
		return fmt.Errorf("%w: signal is nil", ErrInvalidSignal)
	}

	if signal.ID <= 0 {
		return fmt.Errorf("%w: %w: got %d", ErrInvalidSignal, ErrInvalidID, signal.ID)
	}

	if !IsValidLatitude(signal.Lat) {
		return fmt.Errorf("%w: id %d: %w: %v", ErrInvalidSignal, signal.ID, ErrLatitudeOutOfRange, signal.Lat)
	}

	if !IsValidLongitude(signal.Lng) {
		return fmt.Errorf("%w: id %d: %w: %v", ErrInvalidSignal, signal.ID, ErrLongitudeOutOfRange, signal.Lng)
	}

	required := []struct {
		name  string
		value string
	}{
		{"title", signal.Title},
		{"description", signal.Description},
		{"category", signal.Category},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%w: id %d: %w: %s", ErrInvalidSignal, signal.ID, ErrMissingField, field.name)
		}
	}

	if signal.Budget != nil && (*signal.Budget < 0 || math.IsNaN(*signal.Budget)) {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidSignal, signal.ID, ErrNegativeBudget)
	}

	return nil
}

// IsValidLatitude checks that lat is a number within [-90, 90].
func IsValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// IsValidLongitude checks that lng is a number within [-180, 180].
func IsValidLongitude(lng float64) bool {
	return !math.IsNaN(lng) && lng >= -180 && lng <= 180
}
