// Package capability holds the static registry of actions the persona
// runtime may perform. The table is process-wide, immutable, and shared
// read-only by the intent resolver and the policy guard.
package capability

import "github.com/kagami-ai/kagami/internal/model"

// Definition is the metadata for one named capability.
type Definition struct {
	Name                 string     `json:"name"`
	Risk                 model.Risk `json:"risk"`
	OwnerOnly            bool       `json:"owner_only"`
	RequiresConfirmation bool       `json:"requires_confirmation"`
	Description          string     `json:"description"`
}

// definitions is ordered for stable discovery output.
var definitions = []Definition{
	{Name: "session.capabilities", Risk: model.RiskLow, Description: "List what the persona can do"},
	{Name: "session.show_modes", Risk: model.RiskLow, Description: "Show current safety mode flags"},
	{Name: "session.proactive_status", Risk: model.RiskLow, Description: "Report proactive scheduler status"},
	{Name: "session.proactive_tune", Risk: model.RiskLow, Description: "Enable, disable, or retune proactive check-ins"},
	{Name: "session.exit", Risk: model.RiskMedium, RequiresConfirmation: true, Description: "End the current session"},
	{Name: "persona.list", Risk: model.RiskLow, Description: "List available personas"},
	{Name: "persona.connect", Risk: model.RiskMedium, Description: "Switch the session to another persona"},
	{Name: "persona.create", Risk: model.RiskMedium, RequiresConfirmation: true, Description: "Create a new persona"},
	{Name: "session.fetch_url", Risk: model.RiskMedium, RequiresConfirmation: true, Description: "Fetch a web page on the user's behalf"},
	{Name: "session.read_file", Risk: model.RiskMedium, RequiresConfirmation: true, Description: "Read a local file on the user's behalf"},
	{Name: "session.set_mode", Risk: model.RiskHigh, OwnerOnly: true, RequiresConfirmation: true, Description: "Change a safety mode flag"},
	{Name: "session.owner_auth", Risk: model.RiskHigh, OwnerOnly: true, Description: "Authorize this session with the owner token"},
	{Name: "session.shared_space_setup", Risk: model.RiskMedium, RequiresConfirmation: true, Description: "Configure the shared folder root"},
	{Name: "session.shared_space_list", Risk: model.RiskLow, Description: "List files in the shared folder"},
	{Name: "session.shared_space_read", Risk: model.RiskLow, Description: "Read a file inside the shared folder"},
	{Name: "session.shared_space_write", Risk: model.RiskMedium, Description: "Write a file inside the shared folder"},
	{Name: "session.shared_space_delete", Risk: model.RiskHigh, RequiresConfirmation: true, Description: "Delete a file inside the shared folder"},
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Name] = d
	}
	return m
}()

// Lookup returns the definition for a capability name.
func Lookup(name string) (Definition, bool) {
	d, ok := byName[name]
	return d, ok
}

// List returns all capability definitions in registry order.
// The returned slice is a copy; callers may not mutate the registry.
func List() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}
