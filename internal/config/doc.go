// Package config reads dubby's TOML configuration, fills defaults and
// validates the result.
//
// Paths are tilde-expanded and made absolute. The OpenAI key, base URL and the
// ffmpeg/ffprobe binaries may come from the environment (OPENAI_API_KEY,
// OPENAI_BASE_URL, DUBBY_FFMPEG, DUBBY_FFPROBE) when the file leaves them
// empty. CreateSample writes the commented starter file used by
// `dubby config init`.
package config
