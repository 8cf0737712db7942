package model

// PendingSession describes a client waiting for a session worker. The
// acceptor fills it in from a setup request and places it on the dispatch
// queue; exactly one worker consumes it, opens the two named channels and
// drives the session to completion.
//
// Fields:
//
//	ReqPipePath  – path of the client's request pipe (worker reads from it).
//	RespPipePath – path of the client's response pipe (worker writes to it).
type PendingSession struct {
	ReqPipePath  string
	RespPipePath string
}
