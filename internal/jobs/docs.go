// Package jobs provides scheduled background tasks for the procurement service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Schedules carry a seconds field.
//
// # Available Jobs
//
// 1. OutboxRelayJob - publishes pending thread notifications to the messaging store
// 2. CacheSweepJob - evicts expired entries of the order cache and exports its size
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewOutboxRelayJob(relayHandler, relayCommand, "*/5 * * * * *", logger),
//		jobs.NewCacheSweepJob(orderCache, metrics.OrderCacheItems, "0 * * * * *", logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed relay run is logged and retried on the next tick; messages that
// could not be published stay in the outbox until they run out of attempts.
// A failed job start stops the jobs already running.
package jobs
