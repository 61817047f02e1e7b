package client

// Method name constants for every MCP method this client speaks, per
// spec §4.H and §6.
const (
	methodInitialize             = "initialize"
	methodInitialized            = "notifications/initialized"
	methodPing                   = "ping"
	methodListPrompts            = "prompts/list"
	methodGetPrompt              = "prompts/get"
	methodListResources          = "resources/list"
	methodReadResource           = "resources/read"
	methodSubscribeResource      = "resources/subscribe"
	methodUnsubscribeResource    = "resources/unsubscribe"
	methodListResourceTemplates  = "resources/templates/list"
	methodListTools              = "tools/list"
	methodCallTool                = "tools/call"
	methodComplete                = "completion/complete"
	methodSetLevel                = "logging/setLevel"
	methodRootsList                = "roots/list"
	methodSamplingCreateMessage    = "sampling/createMessage"

	notificationCancelled            = "notifications/cancelled"
	notificationProgress             = "notifications/progress"
	notificationMessage              = "notifications/message"
	notificationStderr               = "notifications/stderr"
	notificationRootsListChanged     = "notifications/roots/list_changed"
	notificationToolsListChanged     = "notifications/tools/list_changed"
	notificationPromptsListChanged   = "notifications/prompts/list_changed"
	notificationResourcesListChanged = "notifications/resources/list_changed"
	notificationResourceUpdated      = "notifications/resources/updated"
)
