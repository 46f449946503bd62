package config

// Bakefile represents the structure of the bake.yaml configuration file.
type Bakefile struct {
	Listen    string       `yaml:"listen"`
	TmpDir    string       `yaml:"tmpDir"`
	Converter ConverterDTO `yaml:"converter"`
	Database  DatabaseDTO  `yaml:"database"`
}

// ConverterDTO configures the external converter.
type ConverterDTO struct {
	Command string `yaml:"command"`
	Timeout string `yaml:"timeout"`
}

// DatabaseDTO holds the connection defaults for export queries.
type DatabaseDTO struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}
