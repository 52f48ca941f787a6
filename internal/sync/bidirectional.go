package sync

import "context"

// BidirectionalResult bundles the outcome of a pull followed by a push.
type BidirectionalResult struct {
	Pull *PullResult
	Push *PushResult
}

// Bidirectional pulls remote changes into claudeDir first, then pushes
// claudeDir's (now-merged) local state back out. Pulling first means a push
// immediately after a bidirectional sync never conflicts with changes that
// arrived during the pull.
func (o *Orchestrator) Bidirectional(ctx context.Context, claudeDir string, pullOpts PullOptions, pushOpts PushOptions) (*BidirectionalResult, error) {
	pullOpts.FetchRemote = true

	pullResult, err := o.Pull(ctx, claudeDir, pullOpts)
	if err != nil {
		return nil, err
	}

	pushResult, err := o.Push(ctx, claudeDir, pushOpts)
	if err != nil {
		return &BidirectionalResult{Pull: pullResult}, err
	}

	return &BidirectionalResult{Pull: pullResult, Push: pushResult}, nil
}
