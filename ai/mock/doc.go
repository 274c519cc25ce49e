// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Tagger, ai.BatchTagService,
// ai.Embedder, and ai.ImageEmbedder for use in unit tests. The mocks allow
// tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Jobs complete immediately with a fixed payload per item
//	svc := mock.NewMockBatchService()
//
//	// Script the status sequence a poller will observe
//	svc.StatusSequence = []ai.BatchStatus{
//	    ai.BatchStatusInProgress,
//	    ai.BatchStatusInProgress,
//	    ai.BatchStatusEnded,
//	}
//
//	// Custom behavior injection
//	svc.BatchResultsFunc = func(ctx context.Context, handle string, fn func(ai.BatchResultItem) error) error {
//	    return fn(ai.BatchResultItem{ID: "a", Payload: `{"subject":"x"}`})
//	}
//
// # Default Behavior
//
//   - MockBatchService: records submissions, reports Ended, succeeds every item
//   - MockTagger: returns a fixed JSON payload
//   - MockEmbedder / MockImageEmbedder: deterministic vectors from content hash
package mock
