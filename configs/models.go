// models.go - Per-model generation parameters

package configs

// ReasoningEffort is the optional reasoning_effort parameter of a chat completion.
// The zero value means the model does not accept the parameter at all.
type ReasoningEffort string

const (
	ReasoningNone   ReasoningEffort = ""
	ReasoningLow    ReasoningEffort = "low"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningHigh   ReasoningEffort = "high"
)

// DefaultModelID is used whenever a request names a model that is not configured.
const DefaultModelID = "solar-pro2"

// ModelConfig holds the completion parameters for one model
type ModelConfig struct {
	Temperature     float64
	MaxTokens       int64
	ReasoningEffort ReasoningEffort
}

// SupportsReasoning reports whether reasoning_effort must be sent for this model.
func (m ModelConfig) SupportsReasoning() bool {
	return m.ReasoningEffort != ReasoningNone
}

// ModelTable is a read-only, ordered mapping from model identifier to ModelConfig.
type ModelTable struct {
	order   []string
	configs map[string]ModelConfig
}

// ModelEntry is one row used to build a ModelTable.
type ModelEntry struct {
	ID     string
	Config ModelConfig
}

// NewModelTable builds a table keeping the first occurrence of each identifier.
func NewModelTable(entries ...ModelEntry) *ModelTable {
	t := &ModelTable{configs: make(map[string]ModelConfig, len(entries))}
	for _, e := range entries {
		if _, dup := t.configs[e.ID]; dup {
			continue
		}
		t.order = append(t.order, e.ID)
		t.configs[e.ID] = e.Config
	}
	return t
}

// DefaultModels returns the Upstage Solar model table.
func DefaultModels() *ModelTable {
	return NewModelTable(
		ModelEntry{ID: "solar-pro3", Config: ModelConfig{Temperature: 0.8, MaxTokens: 65536, ReasoningEffort: ReasoningMedium}},
		ModelEntry{ID: "solar-pro2", Config: ModelConfig{Temperature: 0.7, MaxTokens: 16384, ReasoningEffort: ReasoningHigh}},
		// Mini does not support reasoning_effort
		ModelEntry{ID: "upstage/solar-1-mini-chat", Config: ModelConfig{Temperature: 0.7, MaxTokens: 16384}},
	)
}

// IDs returns the configured identifiers in table order.
func (t *ModelTable) IDs() []string {
	ids := make([]string, len(t.order))
	copy(ids, t.order)
	return ids
}

// Has reports whether id is configured.
func (t *ModelTable) Has(id string) bool {
	_, ok := t.configs[id]
	return ok
}

// Get returns the configuration for id.
func (t *ModelTable) Get(id string) (ModelConfig, bool) {
	cfg, ok := t.configs[id]
	return cfg, ok
}

// Resolve returns id and its configuration when configured, otherwise the
// fallback identifier and its configuration.
func (t *ModelTable) Resolve(id, fallback string) (string, ModelConfig) {
	if cfg, ok := t.configs[id]; ok {
		return id, cfg
	}
	return fallback, t.configs[fallback]
}
