// Package jobs provides scheduled background tasks for the order service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// with second-resolution schedules.
//
// # Available Jobs
//
// StaleCustomInvoiceJob deletes PENDING custom invoices older than a TTL
// (72h by default). It runs every 30 minutes unless configured otherwise.
//
// # Usage
//
//	purge := jobs.NewStaleCustomInvoiceJob(handler, ttl, schedule, jobMetrics, log)
//	jobManager := jobs.NewJobManager(purge)
//
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed run is logged and counted in the job metrics; the job keeps its
// schedule.
package jobs
