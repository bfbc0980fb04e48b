package cfg

type Cfg struct {
	// Storage configuration
	DBPath   string
	MediaDir string

	// Application configuration
	Port         string
	BaseUrl      string
	APIAccessKey string
	SettingsFile string

	// Image import configuration
	ImageOrigin  string
	BatchSize    int
	TickDelay    int
	FetchTimeout int
	WorkerCount  int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
