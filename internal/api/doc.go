// Package api exposes subjects, decks, cards, ratings and CSV transfer over
// HTTP. Handlers decode and validate requests, call the services and map
// service errors to status codes with safe messages. RegisterRoutes mounts
// the whole API under /api.
package api
