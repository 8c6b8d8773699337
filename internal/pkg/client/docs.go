// Package client implements the client side of the step validation protocol.
//
// The client performs the following steps:
//	1. Connects to the server over a single TCP connection, reused for the
//	   whole run.
// 	2. Pauses for each step's think time: the scripted interval when the
// 	   fixture provides one, otherwise the step's own wait_seconds.
// 	3. Sends the step record and waits for the server's verdict before
// 	   moving on; at most one record is ever in flight.
// 	4. Stops at the first non-OK verdict, surfacing it as a RejectionError.
// 	   Steps after the rejected one are never sent.
// 	5. After the final acknowledgment, logs the result and disconnects.
//
// An instance of Client plays its steps exactly as loaded; it never reorders
// or retries. A server that closes the connection without a verdict is
// reported as ErrServerClosed.
//
// A killswitch can be armed with WithKillswitch: once it fires, the client
// goes silent and holds the connection open, surfacing the server's idle
// verdict. It takes effect between steps, never mid-exchange.
package client
