// Package anthropic provides production implementations of the ai service
// interfaces against the Anthropic API.
//
// The single-image Tagger goes through langchaingo's anthropic client. The
// BatchService speaks the Message Batches JSON format directly, since
// langchaingo does not cover the batch endpoints: create a job with
// SubmitBatch, watch it with BatchStatus, and stream its per-item outcomes
// with BatchResults once the status is ended.
//
// No exact wire compatibility beyond these three operations is guaranteed;
// the rest of the pipeline treats the service purely through the
// ai.BatchTagService abstraction.
package anthropic
