// Package textutil provides text cleanup helpers shared by the caption and
// dubbing pipelines.
//
// Normalizer prepares recognized speech for downstream use: it composes
// Unicode to NFC, strips per-language hesitation fillers, and collapses
// whitespace. The filename helpers build safe output names from source
// media names and language tags.
package textutil
