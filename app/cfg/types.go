package cfg

import "time"

type Cfg struct {
	// HTTP configuration
	Port           string
	MaxSessions    int
	ResponseMaxAge int

	// Upstream configuration
	FeedURL       string
	SecretariaURL string
	FetchTimeout  int
	UserAgent     string
	SchemaFile    string

	// Snapshot cache configuration
	CacheBackend string
	CacheTTL     int
	CacheFile    string
	DBPath       string
	S3Bucket     string
	S3Key        string
	AWSRegion    string

	// Cache warmer configuration
	WarmInterval int
	WorkerCount  int

	// Application metadata
	Timezone string
	Location *time.Location
	Debug    bool
	Version  string
}

func (c *Cfg) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *Cfg) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

func (c *Cfg) WarmIntervalDuration() time.Duration {
	return time.Duration(c.WarmInterval) * time.Second
}
