package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ordintake/internal/model"
)

type Registry struct {
	reg            *prometheus.Registry
	EmailsParsed   prometheus.Counter
	ItemsExtracted prometheus.Counter
	ItemsValidated prometheus.Counter
	ItemsNotFound  prometheus.Counter
	ItemsAmbiguous prometheus.Counter
	StockIssues    prometheus.Counter
	MOQIssues      prometheus.Counter
	OrdersMerged   prometheus.Counter
	MatchScore     prometheus.Histogram
	ParseLatency   prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	emailsParsed := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_emails_parsed_total"})
	itemsExtracted := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_items_extracted_total"})
	itemsValidated := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_items_validated_total"})
	itemsNotFound := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_items_not_found_total"})
	itemsAmbiguous := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_items_ambiguous_total"})
	stockIssues := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_stock_issues_total"})
	moqIssues := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_moq_issues_total"})
	ordersMerged := prometheus.NewCounter(prometheus.CounterOpts{Name: "intake_orders_merged_total"})
	matchScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "intake_match_score",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	parseLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "intake_parse_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(emailsParsed, itemsExtracted, itemsValidated, itemsNotFound,
		itemsAmbiguous, stockIssues, moqIssues, ordersMerged, matchScore, parseLatency)
	return &Registry{
		reg:            r,
		EmailsParsed:   emailsParsed,
		ItemsExtracted: itemsExtracted,
		ItemsValidated: itemsValidated,
		ItemsNotFound:  itemsNotFound,
		ItemsAmbiguous: itemsAmbiguous,
		StockIssues:    stockIssues,
		MOQIssues:      moqIssues,
		OrdersMerged:   ordersMerged,
		MatchScore:     matchScore,
		ParseLatency:   parseLatency,
	}
}

// ObserveSummary updates per-status counters and the score histogram for
// one validation pass.
func (r *Registry) ObserveSummary(s model.ValidationSummary) {
	for _, item := range s.Items {
		switch item.Status {
		case model.StatusValid:
			r.ItemsValidated.Inc()
		case model.StatusNotFound:
			r.ItemsNotFound.Inc()
		case model.StatusAmbiguous:
			r.ItemsAmbiguous.Inc()
		case model.StatusStockIssue:
			r.StockIssues.Inc()
		case model.StatusMOQIssue:
			r.MOQIssues.Inc()
		}
		r.MatchScore.Observe(float64(item.MatchScore))
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
