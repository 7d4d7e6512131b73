package config

import "time"

var (
	AccessTokenRequestTimeout    = 5 * time.Second
	NowPlayingRequestTimeout     = 5 * time.Second
	TopItemsRequestTimeout       = 5 * time.Second
	PlaylistPageRequestTimeout   = 10 * time.Second
	AccessTokenReuseExpiryLeeway = 30 * time.Second
	ServerReadHeaderTimeout      = 10 * time.Second
	ServerReadTimeout            = 30 * time.Second
	ServerWriteTimeout           = 90 * time.Second
	ServerIdleTimeout            = 120 * time.Second
	ServerShutdownGracePeriod    = 5 * time.Second
)
