// Package middleware provides HTTP middleware for the rtsp-bridge server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path label cardinality
//   - Response compression (gzip) for the JSON control plane
package middleware
