// Package preflight provides readiness checks for the directories and
// services dubby depends on.
//
// RunAll is used by "dubby status" and, with the API check skipped, by the
// job commands before a job is created so an unwritable work directory is
// reported up front instead of after recognition.
package preflight
