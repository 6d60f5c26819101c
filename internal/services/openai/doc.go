// Package openai adapts an OpenAI-compatible API to the recognition,
// translation, and speech synthesis contracts used by the workflow.
//
// Errors are tagged with services markers: rejected credentials become
// ErrConfiguration, rejected requests ErrValidation, and everything else
// ErrTransient so the call site retries once.
package openai
