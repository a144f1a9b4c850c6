// Package mock holds in-process stand-ins for the AI services, so matching,
// corpus loading and the HTTP layer can be tested without a model server.
//
// Vectors from MockEmbedder are derived from an FNV hash of the text: the same
// text always embeds to the same unit vector, and different texts land at
// varying cosine distances. Tests that need exact scores inject a lookup:
//
//	vectors := map[string][]float32{"query": {1, 0}, "Water Leak Detection ...": {0.8, 0.6}}
//	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(
//	    func(ctx context.Context, text string) ([]float32, error) {
//	        return vectors[text], nil
//	    })
//
// MockReasoner answers Explain with "<query> fits \"<title>\" at NN%." and
// DraftOutreach with a one-line body addressed to the primary stakeholder.
// Setting ExplainFunc or DraftOutreachFunc replaces either, which is how tests
// simulate slow, failing or blank reasoning.
//
// All counters are atomic; the mocks are safe to share across the matcher's
// worker pool.
package mock
