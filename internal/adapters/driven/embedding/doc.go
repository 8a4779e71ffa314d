// Package embedding holds helpers shared by the embedding provider adapters.
//
// Providers live in sub-packages:
//
//   - openai: OpenAI-compatible /embeddings endpoint
//   - ollama: Ollama /api/embed batch endpoint
//   - hashing: offline feature-hashing embedder
//   - ratelimit: throttling decorator for any provider
package embedding
