// Package llm provides language model clients used to write recommendation
// summaries. It supports OpenAI and Anthropic, with retry logic, rate limiting,
// and response caching.
package llm
