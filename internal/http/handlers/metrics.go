package handlers

import "github.com/prometheus/client_golang/prometheus"

var (
	RoomsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rooms_created_total",
		Help: "Total rooms created",
	})
	GamesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "games_started_total",
		Help: "Total games started",
	})
	GamesFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "games_finished_total",
		Help: "Total games reaching a terminal phase",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(RoomsCreated, GamesStarted, GamesFinished)
}
