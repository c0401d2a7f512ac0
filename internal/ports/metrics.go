package ports

type FlowMetricsPort interface {
	IncFlowStarted(kind string)
	IncFlowCompleted(kind string, state string)
	ObservePhaseDuration(phase string, seconds float64)
}
