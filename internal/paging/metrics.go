package paging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// tokenDecodeFailures counts rejected page tokens
var tokenDecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vitals_page_token_decode_failures_total",
	Help: "Total page tokens rejected as corrupt",
})
