package entities

// BranchTip is the head of a branch: its commit and that commit's tree.
type BranchTip struct {
	CommitSHA string
	TreeSHA   string
}

// TreeEntry layers a blob at a path on top of a base tree.
type TreeEntry struct {
	Path    string
	BlobSHA string
}

// PullRequestInput contains the data needed to open a pull request.
type PullRequestInput struct {
	Head                string // "<fork-owner>:<branch>"
	Base                string
	Title               string
	Body                string
	MaintainerCanModify bool
}

// PullRequest is the host's live view of a pull request.
type PullRequest struct {
	Number int
	URL    string
	State  string // "open" or "closed"
	Merged bool
}
