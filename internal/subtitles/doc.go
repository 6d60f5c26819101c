// Package subtitles renders recognized speech segments as caption files.
//
// The Formatter turns an ordered segment list into WebVTT or SRT cues,
// optionally translating each cue's text through a caller-supplied function.
// A failed translation keeps the source text for that cue and is counted on
// the Document; it never aborts the file. ValidateContent performs the cheap
// post-write checks used before a caption path is reported to the user.
package subtitles
