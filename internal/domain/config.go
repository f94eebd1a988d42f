package domain

type Config struct {
	Version          string
	ConfigPath       string
	DownloadLocation string `yaml:"downloadLocation"`
	NamingTemplate   string `yaml:"namingTemplate"`
	OutputFormat     string `yaml:"outputFormat"`
	ImageQuality     string `yaml:"imageQuality"`
	DeviceSecret     string `yaml:"deviceSecret"`
	MaxWorkers       int    `yaml:"maxWorkers"`
	LogPath          string `yaml:"logPath"`
	LogLevel         string `yaml:"logLevel"`
	LogMaxSize       int    `yaml:"logMaxSize"` // in megabytes
	LogMaxBackups    int    `yaml:"logMaxBackups"`
}
