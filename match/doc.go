// Package match implements startup-to-signal matching.
//
// A Matcher embeds the startup description, ranks the loaded corpus by
// similarity, and asks the reasoning provider to justify each of the top
// candidates. Reasoning runs on a worker pool shared by all requests and is
// bounded by a per-request deadline. Candidates whose reasoning fails or is
// late keep their rank and score and receive a fixed fallback sentence, so a
// reasoning outage degrades answers without failing them. Embedding failures
// do fail the request with ErrProviderUnavailable.
//
//	matcher, err := match.NewMatcher(store, provider, match.WithConfig(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer matcher.Release()
//
//	response, err := matcher.Match(ctx, "We build AI traffic analytics for cities")
package match
