package configs

// HTTP defines configuration for the CRUD/statistics HTTP server.
type HTTP struct {
	// Port is the TCP port the server binds to.
	Port uint16 `env:"PORT" envDefault:"8080"`
}
