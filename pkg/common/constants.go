package common

const (
	// RedisKeySnapshot caches a marshalled market snapshot per Yahoo ticker.
	RedisKeySnapshot = "market_intel:snapshot:%s"

	// RedisKeyReportSent marks a delivered daily report, keyed by run date,
	// so a restarted service does not notify twice.
	RedisKeyReportSent = "market_intel:report_sent:%s"
)
