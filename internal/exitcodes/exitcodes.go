package exitcodes

// Exit codes for md5-dedupe
// These codes form the operational contract with scripts and operators
const (
	Success         = 0 // Successful execution
	InvalidConfig   = 2 // Bad root directory, keep policy, or configuration file
	SafetyViolation = 3 // Safety validator blocked an operation
	RuntimeError    = 4 // Runtime error during execution
)
