package config

// Values bound to persistent cobra flags. Zero values mean "use Settings".
var (
	Network    string
	MirrorURL  string
	ConfigFile string
	LogLevel   string
	LogFormat  string
	JSONOutput bool

	// list commands
	ListKind  string
	NoCache   bool
	ShowLimit int
)
