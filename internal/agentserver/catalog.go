package agentserver

// AgentInfo describes an agent the server can run
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

// Agents is the agent catalog of a personal deployment
var Agents = []AgentInfo{
	{Name: "CodeActAgent", Description: "Complete coding assistant"},
	{Name: "BrowsingAgent", Description: "Web research"},
	{Name: "ReadOnlyAgent", Description: "Safe code review"},
	{Name: "LocAgent", Description: "Targeted code generation"},
}

// FileOperations are the file editing commands the agents understand
var FileOperations = []struct {
	Command     string
	Description string
}{
	{"view", "Display files"},
	{"create", "Create new files"},
	{"str_replace", "Edit content"},
	{"insert", "Add content"},
}

// Catalog returns the agents with defaultAgent flagged.
func Catalog(defaultAgent string) []AgentInfo {
	agents := make([]AgentInfo, len(Agents))
	copy(agents, Agents)
	for i := range agents {
		agents[i].Default = agents[i].Name == defaultAgent
	}
	return agents
}
