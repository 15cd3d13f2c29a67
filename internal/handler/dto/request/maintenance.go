package request

type PurgeDuplicatesRequest struct {
	DryRun bool `json:"dry_run"`
}
