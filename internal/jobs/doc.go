// Package jobs persists caption and dub job history in SQLite.
//
// Every workflow run creates a Job row before any external call, updates its
// status and stage as it progresses, and records either the produced artifact
// paths or the error that stopped it. The database is a history log, not a
// work queue: nothing resumes jobs from it. Schema changes bump schemaVersion
// and an older database must be deleted before it can be reopened.
package jobs
