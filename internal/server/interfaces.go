package server

// Server is the lifecycle contract the app wiring expects from a transport.
// RunServer blocks until the server stops; Shutdown drains in-flight
// requests and releases resources.
type Server interface {
	RunServer()
	Shutdown()
}
