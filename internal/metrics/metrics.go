// Package metrics holds Prometheus instruments that are used across the
// storefront.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() in main.go is enough to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CatalogProducts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Number of products in the current catalog snapshot.",
		})

	CatalogArticles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_articles",
			Help: "Number of articles in the current catalog snapshot.",
		})

	CatalogLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_load_total",
			Help: "Cumulative number of successful catalog loads.",
		})

	CatalogLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_load_errors_total",
			Help: "Cumulative number of failed catalog loads.",
		})

	RouteResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_resolutions_total",
			Help: "Path resolutions by intent and outcome (found, not_found, static, unmatched).",
		}, []string{"intent", "outcome"})

	AffiliateClicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_clicks_total",
			Help: "Affiliate redirects by link source (stored, generated).",
		}, []string{"source"})

	AffiliateAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_api_requests_total",
			Help: "Calls to the partner API by operation and outcome.",
		}, []string{"op", "outcome"})
)

func init() {
	prometheus.MustRegister(
		CatalogProducts,
		CatalogArticles,
		CatalogLoadTotal,
		CatalogLoadErrorsTotal,
		RouteResolutionsTotal,
		AffiliateClicksTotal,
		AffiliateAPIRequestsTotal,
	)
}
