package remote

// Endpoint and WebBase are fixed properties of the remote service itself,
// not something an operator would ever point at a different host, so they
// are baked-in constants rather than config.Settings entries.
const (
	Endpoint = "https://app.mixcloud.com/graphql"
	WebBase  = "https://www.mixcloud.com"
)
