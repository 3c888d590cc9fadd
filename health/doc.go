// Package health checks that the directories the optimizer depends on are usable.
//
// A Checker reports a Status (Healthy, Degraded or Unhealthy). StoreChecker
// probes the bundle directories for writability and WebrootChecker confirms
// the source root is a readable directory. Aggregator runs several checkers
// and combines them:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewWebrootChecker(cfg.Webroot))
//	agg.Register(health.NewStoreChecker(store))
//
//	report := agg.CheckAll(ctx)
//	if report.Status != health.StatusHealthy {
//	    ...
//	}
package health
