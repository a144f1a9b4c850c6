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

// Package ai provides abstractions for the AI services used by dealflow.
//
// The matching engine depends on two external capabilities, both modeled as
// interfaces so the engine never couples to one vendor's client library:
//
//   - Embedder: converts text into a fixed-length vector
//   - Reasoner: explains a match and drafts outreach text
//   - AIProvider: aggregates both for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public production constructors (openai.NewProvider, openai.NewEmbedder, ...)
// return interface types. Mock constructors return concrete types so tests can
// inject behavior and inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "Computer vision for road maintenance")
//	explanation, err := provider.Reasoner().Explain(ctx, description, signal, 0.82)
package ai
