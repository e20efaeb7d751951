package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation operation labels.
const (
	opAdd      = "add"
	opLike     = "like"
	opDislike  = "dislike"
	opReport   = "report"
	opDelete   = "delete"
	opEdit     = "edit"
	opRegister = "register"
	opLogout   = "logout"
)

var reviewMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "review_mutations_total",
		Help: "Total number of successful review and user mutations by operation",
	},
	[]string{"operation"},
)
