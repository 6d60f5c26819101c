// Package language provides language code normalization and the supported
// target-language gate.
//
// Conversions between ISO 639-1, ISO 639-2, BCP-47 regional tags, and display
// names live here so the recognizer, translator, synthesizer, and caption
// writer agree on a single spelling for every language.
package language
