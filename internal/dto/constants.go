package dto

const (
	Interval1Day string = "1d"

	Range1Month  string = "1m"
	Range3Month  string = "3m"
	Range6Month  string = "6m"
	Range1Year   string = "1y"
	Range2Years  string = "2y"
	Range5Years  string = "5y"
	DefaultRange string = Range1Year

	DefaultSMAPeriod = 20
	DefaultEMAPeriod = 50
	DefaultRSIPeriod = 14

	DefaultRunsLimit = 20
	MaxRunsLimit     = 100
)
