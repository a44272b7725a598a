// Package api handles incoming HTTP requests: routing targets, request
// decoding and validation, and response formatting. Handlers translate store
// and auth errors through MapErrorToStatusCode and GetSafeErrorMessage so no
// internal detail reaches clients, and publish domain events for every
// persisted change so the realtime hub can notify connected users.
package api
