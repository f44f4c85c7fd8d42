// Package metrics defines the custom Prometheus metrics of the recipe API.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics register with the default registry on import; HTTP request metrics
// are collected separately by the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "umai"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "rejected" (validation or duplicate), "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "email_not_registered", "password_invalid", "rejected", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRejectionsTotal counts requests stopped by the authentication gate.
// Label:
//   - reason: "missing_header", "bad_scheme", "token_invalid", "no_user_id", "user_not_found", "lookup_failed"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// ── Ledger metrics ────────────────────────────────────────────────────────────

// LedgerOperationsTotal counts balance operations.
// Labels:
//   - op: "topup" or "donate"
//   - result: "applied", "replayed", "rejected", "error"
var LedgerOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_operations_total",
		Help:      "Total number of ledger operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// LedgerAmountTotal sums the balance units moved by applied operations.
var LedgerAmountTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_amount_total",
		Help:      "Total balance units moved by applied ledger operations.",
	},
	[]string{"op"},
)

// ── Content metrics ───────────────────────────────────────────────────────────

// ImageUploadsTotal counts uploads to object storage.
// Labels:
//   - folder: storage folder (e.g. "umai-post-img")
//   - result: "ok" or "error"
var ImageUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_uploads_total",
		Help:      "Total number of image uploads, by folder and result.",
	},
	[]string{"folder", "result"},
)

// ImageUploadDuration measures a single upload to object storage.
var ImageUploadDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_upload_duration_seconds",
		Help:      "Duration of image uploads to object storage.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"folder"},
)

// ContentCreatedTotal counts recipes and posts created.
// Label:
//   - kind: "recipe" or "post"
var ContentCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_created_total",
		Help:      "Total number of recipes and posts created.",
	},
	[]string{"kind"},
)

// RankingCacheTotal counts ranking cache lookups.
// Label:
//   - result: "hit", "miss", "error"
var RankingCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ranking_cache_total",
		Help:      "Total number of ranking cache lookups, by result.",
	},
	[]string{"result"},
)
