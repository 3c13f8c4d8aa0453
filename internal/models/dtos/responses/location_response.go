package responses

type ResolveCodeResponse struct {
	Query string `json:"query"`
	Code  string `json:"code"`
}

type CanResolveResponse struct {
	Query      string `json:"query"`
	Resolvable bool   `json:"resolvable"`
}

type CacheClearResponse struct {
	Tier          string `json:"tier"`
	Removed       int64  `json:"removed"`
	OlderThanDays int    `json:"olderThanDays,omitempty"`
}

type DatasetSyncResponse struct {
	Source   string           `json:"source"`
	Metros   int              `json:"metros"`
	Airports int              `json:"airports"`
	Aliases  int              `json:"aliases"`
	Skipped  int              `json:"skipped"`
	Stats    map[string]int64 `json:"stats"`
}
