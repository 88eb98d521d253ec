// Package api wires the HTTP router, middleware and handlers of the tracker.
package api

// @title Time Tracker API
// @version v0.1.0
// @description Records tags, tasks and timed events linking a task to tags.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /
// @schemes http
