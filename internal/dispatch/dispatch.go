// Package dispatch runs ssh and scp with the authentication a Credential
// selects.
//
// Nothing here implements the SSH protocol. A key credential becomes "-i",
// the default credential leaves everything to ssh, and a password credential
// runs the command under expect. The expect script carrying the password is
// fed to the child over an extra pipe (fd 3) so the password never appears in
// any process's argv, and the child's stdin stays attached to the terminal.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/stool-cli/stool/internal/apperr"
	"github.com/stool-cli/stool/internal/model"
	"github.com/stool-cli/stool/internal/runner"
	"github.com/stool-cli/stool/internal/secret"
)

// Dispatcher spawns one authenticated ssh or scp process per call and blocks
// until it exits.
type Dispatcher struct {
	run runner.Runner
	out io.Writer
}

// New creates a Dispatcher. Progress lines go to out.
func New(r runner.Runner, out io.Writer) *Dispatcher {
	if out == nil {
		out = os.Stdout
	}
	return &Dispatcher{run: r, out: out}
}

// TransferRequest names the two ends of an scp copy. Either side may be a
// remote "user@host:path" string; neither is validated.
type TransferRequest struct {
	Source      string
	Destination string
	Port        int
}

// SSHArgs builds the ssh argv (without the program name) for t.
//
//	key:      [-p port] -i <key> -- user@host
//	otherwise [-p port] -- user@host
//
// Operands follow "--" so a user or host starting with "-" is never parsed
// as an option.
func SSHArgs(t model.Target, cred Credential) []string {
	var args []string
	if t.Port > 0 {
		args = append(args, "-p", strconv.Itoa(t.Port))
	}
	if cred.Method == MethodKey {
		args = append(args, "-i", cred.keyArg())
	}
	return append(args, "--", t.Destination())
}

// SCPArgs builds the scp argv (without the program name) for req.
func SCPArgs(req TransferRequest, cred Credential) []string {
	var args []string
	if req.Port > 0 {
		args = append(args, "-P", strconv.Itoa(req.Port))
	}
	if cred.Method == MethodKey {
		args = append(args, "-i", cred.keyArg())
	}
	return append(args, "--", req.Source, req.Destination)
}

// Connect opens an interactive ssh session to t. The credential's password,
// if any, is wiped before Connect returns.
func (d *Dispatcher) Connect(ctx context.Context, t model.Target, cred Credential) error {
	defer cred.Wipe()

	args := SSHArgs(t, cred)
	switch cred.Method {
	case MethodKey:
		fmt.Fprintln(d.out, "Connecting with key authentication")
	case MethodPassword:
		fmt.Fprintln(d.out, "Connecting with password authentication")
		err := d.runExpect(ctx, append([]string{"ssh"}, args...), cred.Password, FinishInteract)
		return classify(err, apperr.SshConnectionFailed, "ssh "+t.Destination())
	default:
		fmt.Fprintln(d.out, "Connecting with default SSH authentication")
	}
	err := d.run.Run(ctx, runner.Cmd{Name: "ssh", Args: args})
	return classify(err, apperr.SshConnectionFailed, "ssh "+t.Destination())
}

// Transfer copies one file or directory with scp. The credential's password,
// if any, is wiped before Transfer returns.
func (d *Dispatcher) Transfer(ctx context.Context, req TransferRequest, cred Credential) error {
	defer cred.Wipe()

	args := SCPArgs(req, cred)
	var err error
	if cred.Method == MethodPassword {
		err = d.runExpect(ctx, append([]string{"scp"}, args...), cred.Password, FinishEOF)
	} else {
		err = d.run.Run(ctx, runner.Cmd{Name: "scp", Args: args})
	}
	if err := classify(err, apperr.FileTransferFailed, "scp "+req.Source+" "+req.Destination); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "Transfer completed successfully")
	return nil
}

// EnsureBinary checks that name is on PATH.
func (d *Dispatcher) EnsureBinary(name string) error {
	kind := apperr.CommandExecutionFailed
	if name == "expect" {
		kind = apperr.ExpectCommandFailed
	}
	return runner.Require(d.run, name, kind)
}

func (d *Dispatcher) runExpect(ctx context.Context, spawn []string, pw *secret.Secret, finish Finish) error {
	if err := d.EnsureBinary("expect"); err != nil {
		return err
	}
	return pw.Use(func(b []byte) error {
		script := ExpectScript(spawn, b, finish)
		defer secret.Zero(script)

		rd, wr, err := os.Pipe()
		if err != nil {
			return apperr.Wrap(apperr.ExpectCommandFailed, err, "create script pipe")
		}
		written := make(chan struct{})
		go func() {
			defer close(written)
			_, _ = wr.Write(script)
			_ = wr.Close()
		}()

		err = d.run.Run(ctx, runner.Cmd{Name: "expect", Args: ExpectArgs(), ExtraFiles: []*os.File{rd}})
		// Closing the read end unblocks the writer if the child never read.
		_ = rd.Close()
		<-written
		if runner.IsStartError(err) {
			return apperr.Wrap(apperr.ExpectCommandFailed, err, "start expect")
		}
		return err
	})
}

// classify maps a run error onto kind. Errors that are already classified
// pass through.
func classify(err error, kind apperr.Kind, what string) error {
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.Unknown {
		return err
	}
	if runner.IsStartError(err) {
		return apperr.Wrap(kind, err, "failed to start "+what)
	}
	return apperr.Wrap(kind, err, runner.Describe(what, err))
}
