// Package auth issues and validates the HMAC-signed access tokens carried by
// API requests and websocket connections, and verifies bcrypt password hashes.
package auth
