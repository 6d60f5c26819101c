// Package workflow runs caption and dub jobs end to end.
//
// A Service owns the collaborators of one process: recognizer, translator,
// synthesizer, assembler, compositor, media probe, and job store. Run takes a
// Request through the stages
//
//	validate -> probe -> asr -> normalize -> captions
//	validate -> probe -> asr -> normalize -> assemble -> mux
//
// recording each transition on the job row and stamping job_id and stage on
// every log line. Requests with an unsupported target language or a missing
// source are rejected before any external call. Each job gets its own scratch
// directory under paths.work_dir, removed on every exit path. A failed job
// never reports artifact paths.
package workflow
