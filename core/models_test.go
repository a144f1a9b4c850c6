package core

import (
	"testing"
)

func TestHashContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same hash",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h1 := HashContent(tt.content)
			h2 := HashContent(tt.content)

			if tt.wantSame && h1 != h2 {
				t.Errorf("HashContent() produced different hashes for same content: %d vs %d", h1, h2)
			}
		})
	}
}

func TestHashContent_Different(t *testing.T) {
	h1 := HashContent("content1")
	h2 := HashContent("content2")

	if h1 == h2 {
		t.Errorf("HashContent() produced same hash for different content")
	}
}

func TestSignal_CanonicalText(t *testing.T) {
	tests := []struct {
		name   string
		signal Signal
		want   string
	}{
		{
			name: "all fields",
			signal: Signal{
				Category:    "Transportation",
				Title:       "Smart traffic lights",
				Description: "Adaptive signal timing pilot",
			},
			want: "Transportation Smart traffic lights Adaptive signal timing pilot",
		},
		{
			name: "missing category",
			signal: Signal{
				Title:       "Smart traffic lights",
				Description: "Pilot",
			},
			want: "Smart traffic lights Pilot",
		},
		{
			name:   "empty signal",
			signal: Signal{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.signal.CanonicalText()
			if got != tt.want {
				t.Errorf("Signal.CanonicalText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignal_ContentHashTracksText(t *testing.T) {
	s := Signal{Category: "Water", Title: "Leak detection", Description: "Acoustic sensors"}
	before := s.ContentHash()

	// Location changes do not affect the embedding text
	s.City = "Austin"
	if s.ContentHash() != before {
		t.Errorf("ContentHash() changed after non-text field update")
	}

	s.Description = "Acoustic sensors and satellite imagery"
	if s.ContentHash() == before {
		t.Errorf("ContentHash() did not change after description update")
	}
}

func TestSignal_PrimaryStakeholder(t *testing.T) {
	tests := []struct {
		name         string
		stakeholders []string
		want         string
	}{
		{"first listed", []string{"Jane Doe, CIO", "Bob Roe"}, "Jane Doe, CIO"},
		{"skips blanks", []string{"  ", "Bob Roe"}, "Bob Roe"},
		{"none listed", nil, "City Official"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Signal{Stakeholders: tt.stakeholders}
			if got := s.PrimaryStakeholder(); got != tt.want {
				t.Errorf("Signal.PrimaryStakeholder() = %q, want %q", got, tt.want)
			}
		})
	}
}
