package metrics

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Build editor metric names
const (
	MetricNameShareCodes       = "buildforge_share_codes_total"
	MetricNameTreeCacheLookups = "buildforge_tree_cache_lookups_total"
	MetricNameCatalogItems     = "buildforge_catalog_items"
)

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"
)

// Build editor metric help text
const (
	HelpTextShareCodes       = "Share code operations by direction and result"
	HelpTextTreeCacheLookups = "Component tree cache lookups by outcome"
	HelpTextCatalogItems     = "Number of items in the loaded catalog"
)

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelDirection = "direction"
	LabelResult    = "result"
	LabelOutcome   = "outcome"
)

// Label values
const (
	DirectionEncode = "encode"
	DirectionDecode = "decode"

	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"

	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// HTTPLatencyBuckets are the histogram buckets for request latency
var HTTPLatencyBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
