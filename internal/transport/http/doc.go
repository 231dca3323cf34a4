// Package http implements the dashboard's HTTP handlers. Handlers stay thin: they
// parse the request, call the dashboard service and format the response.
//
// # Endpoints
//
//	GET  /                         dashboard page (server rendered, then live over /ws)
//	GET  /static/*                 page assets
//	GET  /api/dashboard            cards and chart specs for a filter
//	GET  /api/charts/{chart}       one chart spec (area or percentage)
//	GET  /api/charts/{chart}/png   the chart rendered as PNG
//	GET  /api/export               csv or xlsx download of the resampled tables
//	GET  /api/dataset              coverage and selector choices
//	POST /api/client-log           browser errors into the server log
//	GET  /api/health[/ready|/live|/detailed] probes
//	GET  /api/version              build information
//
// Filter parameters are modes (repeatable or comma separated), granularity
// (D, W, ME, QE, YE), start_date and end_date (YYYY-MM-DD). Omitted parameters take
// the dashboard defaults.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/filter/invalid",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "invalid filter: unknown granularity: \"H\"",
//	    "instance": "/api/dashboard"
//	}
package http
