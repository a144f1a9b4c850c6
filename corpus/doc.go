// Package corpus holds the signal corpus: the fixed set of government signals
// that startup descriptions are matched against.
//
// A Store is filled once at startup. Load validates every signal, embeds the
// canonical text of each one in parallel batches with retry, and publishes an
// immutable snapshot ordered by signal id. Vectors can be persisted in a
// storage.EmbeddingCache so an unchanged corpus is not re-embedded on restart;
// a cached vector is reused only while the signal's content hash is unchanged.
//
//	store, err := corpus.NewStore(provider.Embedder(),
//	    corpus.WithCache(cache),
//	    corpus.WithModel("embeddinggemma"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.LoadFile(ctx, "data/signals.json"); err != nil {
//	    log.Fatal(err)
//	}
package corpus
