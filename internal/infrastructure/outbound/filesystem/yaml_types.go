package filesystem

// yamlSignature is the YAML deserialization target for signature definition
// files. Matcher string fields (file, key, mutex, ip, domain, url, api.name,
// argument.value) use a "=" prefix for literal matching; anything else is
// treated as a regex.
type yamlSignature struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Severity    int        `yaml:"severity"`
	Categories  []string   `yaml:"categories,omitempty"`
	Families    []string   `yaml:"families,omitempty"`
	Authors     []string   `yaml:"authors,omitempty"`
	References  []string   `yaml:"references,omitempty"`
	Enabled     *bool      `yaml:"enabled,omitempty"` // default true
	Alert       bool       `yaml:"alert,omitempty"`
	Minimum     string     `yaml:"minimum,omitempty"`
	Maximum     string     `yaml:"maximum,omitempty"`
	Detect      yamlDetect `yaml:"detect"`
}

type yamlDetect struct {
	All []yamlDetect `yaml:"all,omitempty"`
	Any []yamlDetect `yaml:"any,omitempty"`
	Not *yamlDetect  `yaml:"not,omitempty"`

	File   string `yaml:"file,omitempty"`
	Key    string `yaml:"key,omitempty"`
	Mutex  string `yaml:"mutex,omitempty"`
	IP     string `yaml:"ip,omitempty"`
	Domain string `yaml:"domain,omitempty"`
	URL    string `yaml:"url,omitempty"`

	API      *yamlAPI      `yaml:"api,omitempty"`
	Argument *yamlArgument `yaml:"argument,omitempty"`
}

type yamlAPI struct {
	Name    string `yaml:"name"`
	Process string `yaml:"process,omitempty"`
}

type yamlArgument struct {
	Value    string `yaml:"value"`
	Name     string `yaml:"name,omitempty"`
	API      string `yaml:"api,omitempty"`
	Category string `yaml:"category,omitempty"`
	Process  string `yaml:"process,omitempty"`
}
