package cron

import "errors"

var (
	ErrUnknownFrequency     = errors.New("unknown frequency")
	ErrJobAlreadyRegistered = errors.New("job already registered")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobRunning           = errors.New("job is already running")
	ErrNoJobs               = errors.New("no jobs registered")
)
