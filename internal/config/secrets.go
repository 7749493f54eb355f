package config

// redacted is the placeholder shown in place of secret values.
const redacted = "***"

// Redacted returns a deep copy of the Config with every credential field
// masked, safe for logging at startup.
func (c *Config) Redacted() Config {
	out := *c

	if out.Cex.ApiKey != "" {
		out.Cex.ApiKey = redacted
	}
	if out.Cex.ApiSecret != "" {
		out.Cex.ApiSecret = redacted
	}
	if out.Cex.SecretPassword != "" {
		out.Cex.SecretPassword = redacted
	}
	if out.Dex.ApiKey != "" {
		out.Dex.ApiKey = redacted
	}
	if out.Redis.Password != "" {
		out.Redis.Password = redacted
	}
	if out.Server.ApiKey != "" {
		out.Server.ApiKey = redacted
	}

	// Copy slices so the redacted view never aliases the live config.
	out.Feed.Symbols = append([]string(nil), c.Feed.Symbols...)
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)

	return out
}
