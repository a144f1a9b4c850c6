// Package dealflow matches startup descriptions against a corpus of
// government procurement signals.
//
// An Engine bundles the pieces: an AI provider for embeddings and reasoning,
// an optional on-disk embedding cache, the signal store and the matcher.
//
//	engine, err := dealflow.NewEngine(
//	    dealflow.WithAIConfig(ai.NewConfig(ai.WithHost("http://localhost:11434"))),
//	    dealflow.WithCacheDir(".dealflow/cache"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	if err := engine.LoadCorpus(ctx, "data/signals.json"); err != nil {
//	    return err
//	}
//	resp, err := engine.Match(ctx, "We build AI traffic analytics for mid-size cities")
package dealflow
