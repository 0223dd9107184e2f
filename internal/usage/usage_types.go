package usage

import "time"

// Data is the persisted usage record.
type Data struct {
	Version   string    `json:"version"`
	Since     time.Time `json:"since"`
	Aggregate Stats     `json:"aggregate"`
}

// Stats holds counters broken down by model and operation.
type Stats struct {
	Total       Counts            `json:"total"`
	ByModel     map[string]Counts `json:"by_model"`
	ByOperation map[string]Counts `json:"by_operation"` // core_report, conversation_turn, ...
}

// Counts holds call and token sums.
type Counts struct {
	Calls  int64 `json:"calls"`
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

func (c *Counts) Add(input, output int) {
	c.Calls++
	c.Input += int64(input)
	c.Output += int64(output)
	c.Total += int64(input + output)
}
