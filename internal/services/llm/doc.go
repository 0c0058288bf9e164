// Package llm provides the chat completion client used for datasheet
// analysis. It speaks the OpenAI-compatible wire format, supports vision
// payloads built from page data URLs, and retries transient failures with
// exponential backoff.
package llm
