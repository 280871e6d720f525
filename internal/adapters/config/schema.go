package config

// File represents the structure of the imgopt.yaml configuration file.
type File struct {
	Root            string    `yaml:"root"`
	BuildDir        string    `yaml:"build_dir"`
	Manifest        *bool     `yaml:"manifest"`
	ImageExtensions []string  `yaml:"image_extensions"`
	Sitemap         string    `yaml:"sitemap"`
	Status          string    `yaml:"status"`
	Engine          EngineDTO `yaml:"engine"`
}

// EngineDTO represents the engine section of the configuration.
type EngineDTO struct {
	Threads int       `yaml:"threads"`
	Timeout string    `yaml:"timeout"`
	Tools   []ToolDTO `yaml:"tools"`
}

// ToolDTO represents a single optimizer in the engine chain.
type ToolDTO struct {
	Name       string   `yaml:"name"`
	Builtin    string   `yaml:"builtin"`
	Cmd        []string `yaml:"cmd"`
	Extensions []string `yaml:"extensions"`
}
