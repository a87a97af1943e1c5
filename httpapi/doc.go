// Package httpapi exposes the tokengate engine over HTTP with a chi
// router:
//
//	POST /login    — exchange credentials for a token pair
//	POST /refresh  — rotate a refresh token
//	POST /logout   — revoke the presented access token
//	GET  /me       — protected; returns the authorized subject
//
// Every failure response carries a JSON body with a stable
// machine-readable "code" field; response bodies never distinguish an
// unknown identifier from a wrong password.
//
// # Architecture boundaries
//
// This package translates HTTP requests into Engine calls and Engine
// errors into status codes. It holds no authentication state.
package httpapi
