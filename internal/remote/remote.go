// Package remote implements the ssh and transfer commands on top of the
// selector and the dispatcher.
package remote

import (
	"context"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/dispatch"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/ui"
	"github.com/stool-cli/stool/internal/util"
)

// Mode is the transfer direction.
type Mode int

const (
	Upload Mode = iota
	Download
)

var modeItems = []string{"Upload", "Download", ui.CancelEntry}

// Connect picks a server and opens an interactive session to it.
// Cancelling any prompt returns nil.
func Connect(ctx context.Context, p ui.Prompter, d *dispatch.Dispatcher, reg model.Registry) error {
	target, err := ui.SelectTarget(p, reg)
	if err != nil {
		return ignoreCancel(err)
	}
	cred, err := ui.ResolveCredential(p, target)
	if err != nil {
		return ignoreCancel(err)
	}
	return d.Connect(ctx, target, cred)
}

// Transfer asks for a direction, a server and both paths, then copies with
// scp. Cancelling any prompt returns nil.
func Transfer(ctx context.Context, p ui.Prompter, d *dispatch.Dispatcher, reg model.Registry) error {
	idx, err := p.Select("Select transfer mode:", modeItems)
	if err != nil {
		return ignoreCancel(err)
	}
	if idx >= len(modeItems)-1 {
		return nil
	}
	target, err := ui.SelectTarget(p, reg)
	if err != nil {
		return ignoreCancel(err)
	}
	cred, err := ui.ResolveCredential(p, target)
	if err != nil {
		return ignoreCancel(err)
	}
	defer cred.Wipe()

	req, err := transferPaths(p, Mode(idx), target)
	if err != nil {
		return ignoreCancel(err)
	}
	return d.Transfer(ctx, req, cred)
}

func transferPaths(p ui.Prompter, mode Mode, target model.Target) (dispatch.TransferRequest, error) {
	req := dispatch.TransferRequest{Port: target.Port}
	switch mode {
	case Upload:
		local, err := ui.InputRequired(p, "Enter local path:")
		if err != nil {
			return req, err
		}
		remotePath, err := ui.InputDefault(p, "Enter remote path", util.DefaultRemoteDir)
		if err != nil {
			return req, err
		}
		if req.Source, err = localPath(local); err != nil {
			return req, err
		}
		req.Destination = target.RemotePath(remotePath)
	case Download:
		remotePath, err := ui.InputRequired(p, "Enter remote path:")
		if err != nil {
			return req, err
		}
		local, err := ui.InputDefault(p, "Enter local path", util.DefaultLocalDir)
		if err != nil {
			return req, err
		}
		req.Source = target.RemotePath(remotePath)
		if req.Destination, err = localPath(local); err != nil {
			return req, err
		}
	}
	return req, nil
}

// localPath expands "~" since scp receives the path without a shell.
func localPath(p string) (string, error) {
	expanded, err := util.ExpandHome(p)
	if err != nil {
		return "", apperr.Wrap(apperr.InvalidInput, err, "")
	}
	return expanded, nil
}

func ignoreCancel(err error) error {
	if apperr.IsCancelled(err) {
		return nil
	}
	return err
}
