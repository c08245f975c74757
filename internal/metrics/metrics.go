package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LessonsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_lessons_sent_total",
		Help: "Lessons successfully delivered over WhatsApp.",
	})

	LessonsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coach_lessons_failed_total",
		Help: "Lesson deliveries that failed.",
	})

	PaymentsReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_payments_reconciled_total",
		Help: "Payment callbacks applied, by result.",
	}, []string{"result"})
)
