package commands

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorChecksFailed       = "one or more doctor checks failed"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrTextRequired             = "post text is required (--text or arguments)"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgPosted                   = "Posted."
	MsgCancelled                = "Cancelled. The post was not sent."
)

// DefaultCheckHost is the page host the check command simulates.
const DefaultCheckHost = "x.com"
