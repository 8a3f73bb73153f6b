package common

const (
	KEY_STOCK_BARS = "stock_bars:%s:%s:%s"
)

const (
	SOURCE_YAHOO     = "yahoo"
	SOURCE_SYNTHETIC = "synthetic"
)

const (
	SOURCE_MODE_AUTO      = "auto"
	SOURCE_MODE_LIVE      = "live"
	SOURCE_MODE_SYNTHETIC = "synthetic"
)

func GetSourceModes() []string {
	return []string{
		SOURCE_MODE_AUTO,
		SOURCE_MODE_LIVE,
		SOURCE_MODE_SYNTHETIC,
	}
}

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
