package models

import "time"

type RemoteEntry struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"modified_time"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
}

// SelectionCriteria is static per deployment. DatePrefixFormat is a Go
// time layout.
type SelectionCriteria struct {
	DatePrefixFormat    string   `json:"date_prefix_format" toml:"date_prefix_format"`
	NamePatterns        []string `json:"name_patterns" toml:"name_patterns"`
	RequiredSuffix      string   `json:"required_suffix" toml:"required_suffix"`
	ExclusionSubstrings []string `json:"exclusion_substrings" toml:"exclusion_substrings"`
}

type Selection struct {
	RequestedDate string        `json:"requested_date"`
	EffectiveDate string        `json:"effective_date"`
	FellBack      bool          `json:"fell_back"`
	Files         []RemoteEntry `json:"files"`
}

type RenamedFile struct {
	FinalPath      string         `json:"final_path"`
	OriginalName   string         `json:"original_name"`
	Classification Classification `json:"classification"`
	Size           int64          `json:"size"`
}

type FetchResult struct {
	RunID          string        `json:"run_id"`
	Transport      string        `json:"transport"`
	RemoteDir      string        `json:"remote_dir"`
	TargetDate     string        `json:"target_date"`
	FellBack       bool          `json:"fell_back"`
	Files          []RenamedFile `json:"files"`
	TotalFiles     int           `json:"total_files"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	TotalSizeHuman string        `json:"total_size_human"`
	OperationTime  string        `json:"operation_time"`
	Duration       string        `json:"duration"`
	Message        string        `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type TargetDateInfo struct {
	Today        string `json:"today"`
	Weekday      string `json:"weekday"`
	TargetDate   string `json:"target_date"`
	FallbackDate string `json:"fallback_date"`
}
