// Package server implements the server side of the step validation protocol.
//
// The server performs the following steps:
// 	1. Opens a TCP listener on the configured host and port.
// 	2. Accepts client connections and runs each session in its own goroutine,
// 	   with its own validation state.
// 	3. Reads newline-delimited JSON step records from the connection.
// 	4. Validates each record: after the first record the step id must increase
// 	   by exactly one, and every record's wait_seconds must meet the timeout
// 	   threshold. The sequence check runs first, so a record failing both is
// 	   reported as out of order.
// 	5. Answers every record with a response echoing its step id and carrying
// 	   the verdict code.
// 	6. On the first violation, writes the rejecting response and closes the
// 	   connection; the session is over.
// 	7. When a session stays idle past the read timeout, reports ERR_TIMEOUT
// 	   against the last accepted step and closes the connection.
//
// An instance of Server keeps per-connection state only. Nothing is shared
// between sessions, so a misbehaving client cannot poison another client's
// sequence. A bound on concurrent sessions can be set with WithMaxSessions;
// connections beyond the bound wait in the listen backlog until a slot frees.
package server
