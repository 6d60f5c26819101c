// Package dubbing assembles a time-aligned speech track from translated,
// synthesized segments.
//
// Translation and synthesis for all segments run concurrently through a
// bounded worker pool. Placement is strictly sequential in input order: each
// clip has its playback rate changed to fill its [start, end) slot, is fitted
// to exactly the slot's sample count, and lands after silence that brings the
// timeline up to the slot start. A segment that fails to synthesize leaves
// silence in its slot, so later segments keep their absolute positions.
package dubbing
