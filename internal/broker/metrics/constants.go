package metrics

const (
	// Prometheus Labels
	outcomeLabel    = "outcome"
	priorStateLabel = "priorState"
	stateLabel      = "state"
	operationLabel  = "operation"
	kindLabel       = "kind"
	errorKindLabel  = "category"
)

// Relationship operations.
const (
	OperationSetApplication    = "set_application"
	OperationAddCommands       = "add_commands"
	OperationSetCommands       = "set_commands"
	OperationRemoveCommand     = "remove_command"
	OperationRemoveAllCommands = "remove_all_commands"
)
