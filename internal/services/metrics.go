package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	friendRequestsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "butterfly_friend_requests_created_total",
			Help: "Friend requests admitted and stored",
		},
	)

	friendRequestsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "butterfly_friend_requests_throttled_total",
			Help: "Friend requests rejected by the creation throttle",
		},
	)

	friendStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "butterfly_friend_status_updates_total",
			Help: "Friend relationship status updates by resulting status",
		},
		[]string{"status"},
	)
)
