package client

import "time"

// ConnectionOptions configures transport selection (see
// transport.Options, whose fields this mirrors one-to-one) and
// connect-time behavior.
type ConnectionOptions struct {
	SocketPath   string
	TCPAddress   string
	TCPPort      int
	SpawnProcess bool
	UseStdio     bool

	// NvimPath is the editor binary to spawn when SpawnProcess is
	// set. Defaults to "nvim".
	NvimPath string

	// TimeoutMs bounds the initial connect and each Request's wait for
	// its response when the caller's context carries no deadline. The
	// read loop applies no per-read deadline. Defaults to 5000.
	TimeoutMs uint32

	// SkipAPIInfo, if true, skips the synchronous nvim_get_api_info
	// handshake on Connect.
	SkipAPIInfo bool
}

func (o ConnectionOptions) timeout() time.Duration {
	ms := o.TimeoutMs
	if ms == 0 {
		ms = 5000
	}
	return time.Duration(ms) * time.Millisecond
}

func (o ConnectionOptions) nvimPath() string {
	if o.NvimPath == "" {
		return "nvim"
	}
	return o.NvimPath
}
