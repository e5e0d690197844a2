// Package remind turns free-text messages into scheduled reminders.
//
// It is split into three layers:
//   - lexer: extracts date/time and lead-time fragments from raw text
//     using an ordered pattern table (first match wins)
//   - compiler: resolves fragments into a validated Reminder against an
//     explicit "now" and reference timezone
//   - service: the submit entrypoint the inbound layer calls; owns the
//     job store and translates reminders into scheduled jobs
package remind
