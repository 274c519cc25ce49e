// Package openai provides the production text embedder over OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM). It is consumed by the index builder
// and the keyword search path.
package openai
