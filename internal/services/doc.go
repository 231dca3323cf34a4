// Package services binds the ridership pipeline to the dashboard's request
// handling. It sits between the HTTP and WebSocket handlers and the pure
// dataprocessing, presentation and exporter packages.
//
// # Dashboard Service
//
// DashboardService resolves raw filter requests into normalized filter states,
// runs the pipeline and memoizes results per filter:
//
//	svc, err := services.NewDashboardService(dataset, services.DashboardOptions{
//	    CacheEnabled: true,
//	    CacheSize:    256,
//	    CacheTTL:     10 * time.Minute,
//	}, logger)
//
//	state, err := svc.ResolveFilter(services.FilterRequest{Granularity: "ME"})
//	view, err := svc.View(ctx, state)
//
// Concurrent requests for the same filter share one computation. Results held in
// the cache are shared between callers and must not be modified.
//
// # Errors
//
// Filter problems wrap ErrInvalidFilter and unknown chart names wrap
// ErrChartNotFound. Handlers map both through the errors package.
//
// # Health Service
//
// HealthService reports liveness, readiness (dataset loaded, hub running) and
// version information for the /api/health endpoints.
package services
