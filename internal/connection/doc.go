// Package connection implements the blackjack Connection Manager.
//
// The Connection Manager:
//   - Keeps one WebSocket connection open to the game endpoint
//   - Reconnects after every close with a fixed delay (1s by default)
//   - Decodes incoming text frames as JSON and passes them to a Handler
//   - Never sends data frames; server pings are answered with pongs
//
// Connections are strictly sequential: a new one is dialed only after the
// previous one has ended.
package connection
