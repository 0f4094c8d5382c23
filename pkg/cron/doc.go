// Package cron provides in-process periodic job scheduling.
//
// A Schedule computes the next run time from a reference time; a Runner
// ticks, fires due jobs, and guards each job against overlapping runs so
// that a scheduled fire and a manual trigger never execute concurrently.
package cron
