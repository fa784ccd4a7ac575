/*
Package log provides structured logging for the StreamFlow engine using zerolog.

It wraps a single global zerolog.Logger, initialized once via Init, with
helper constructors that attach domain fields (task_name, job_name,
connector, location) so call sites don't repeat field names. Console
(human-readable) output is the default; JSON output is selected with
Config.JSONOutput (the CLI's --log-json flag).

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	jobLog := log.WithJobName(job.Name)
	jobLog.Info().Str("location", loc.String()).Msg("job scheduled")

Never log secrets (environment values, tokens) — use typed fields for
anything that needs to be queried later, not string concatenation.
*/
package log
