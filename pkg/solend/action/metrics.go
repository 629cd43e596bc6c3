package action

const (
	metricsStructName = "solend.action.planner"

	planBuiltEventName            = "SolendActionPlanBuilt"
	transactionSubmittedEventName = "SolendActionTransactionSubmitted"
	submitDurationMetricName      = "Solend/Action/SubmitDuration"
	positionCountMetricName       = "Solend/Action/Positions"
)
