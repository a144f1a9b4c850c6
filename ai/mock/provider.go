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

package mock

import "github.com/poiesic/dealflow/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock embedder and reasoner instances.
type MockProvider struct {
	embedder *MockEmbedder
	reasoner *MockReasoner
	closed   bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockReasoner() to access concrete types for test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		reasoner: NewMockReasoner(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
// Nil arguments are replaced with default mocks.
func NewMockProviderWithServices(embedder *MockEmbedder, reasoner *MockReasoner) ai.AIProvider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if reasoner == nil {
		reasoner = NewMockReasoner()
	}
	return &MockProvider{
		embedder: embedder,
		reasoner: reasoner,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Reasoner returns the mock reasoner.
func (p *MockProvider) Reasoner() ai.Reasoner {
	return p.reasoner
}

// Close marks the provider closed. It never fails.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockReasoner returns the underlying mock reasoner for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockReasoner() *MockReasoner {
	return p.reasoner
}
