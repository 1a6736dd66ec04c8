// Package httpclient builds the HTTP client used to talk to the wiki hosts.
//
// The client identifies itself with a User-Agent that follows the Wikimedia
// User-Agent policy, can be throttled with a token bucket limiter and can be
// routed through a SOCKS5 proxy. It has no timeout unless one is configured.
package httpclient
