package notices

const (
	CliComponent       = "cli"
	FrameworkComponent = "framework"
	BootstrapComponent = "bootstrap"
)

type (
	// Notice is an advisory about a known issue affecting some component versions.
	Notice struct {
		Title         string      `json:"title"`
		IssueNumber   int         `json:"issueNumber"`
		Overview      string      `json:"overview"`
		Components    []Component `json:"components"`
		SchemaVersion string      `json:"schemaVersion"`
	}

	// Component names what a notice applies to (cli, framework, bootstrap, a module or a construct fqn) and the range
	// of affected versions.
	Component struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
)

// frameworkAliases are the module names the "framework" component stands for: v1 core and the v2 monolith.
var frameworkAliases = []string{"@aws-cdk/core.", "aws-cdk-lib."}

func (c Component) names() []string {
	if c.Name == FrameworkComponent {
		return append([]string{c.Name}, frameworkAliases...)
	}
	return []string{c.Name}
}
