package runner

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Call is one command observed by Fake.
type Call struct {
	Name  string
	Args  []string
	Stdin string
	// Extra holds what the child could read from each ExtraFiles entry.
	Extra []string
}

// Line renders the call as a space-joined command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Fake records commands instead of running them.
type Fake struct {
	mu    sync.Mutex
	Calls []Call

	// Missing lists programs LookPath should not find.
	Missing map[string]bool
	// Handle, when set, decides the outcome of each call. The returned bytes
	// are written to the command's stdout.
	Handle func(c Call) ([]byte, error)
}

func (f *Fake) Run(_ context.Context, c Cmd) error {
	call := Call{Name: c.Name, Args: append([]string(nil), c.Args...)}
	if c.Stdin != nil {
		b, _ := io.ReadAll(c.Stdin)
		call.Stdin = string(b)
	}
	for _, ef := range c.ExtraFiles {
		b, _ := io.ReadAll(ef)
		call.Extra = append(call.Extra, string(b))
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, call)
	handle := f.Handle
	f.mu.Unlock()

	if handle == nil {
		return nil
	}
	out, err := handle(call)
	if len(out) > 0 && c.Stdout != nil {
		_, _ = c.Stdout.Write(out)
	}
	return err
}

func (f *Fake) Output(ctx context.Context, c Cmd) ([]byte, error) {
	var out strings.Builder
	c.Stdout = &out
	err := f.Run(ctx, c)
	return []byte(out.String()), err
}

func (f *Fake) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", fmt.Errorf("exec: %q: %w", name, exec.ErrNotFound)
	}
	return "/usr/bin/" + name, nil
}

// Lines returns every recorded call rendered with Line.
func (f *Fake) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Line()
	}
	return out
}

// FailWhen returns a Handle that fails calls whose line has the given prefix
// and lets the rest succeed.
func FailWhen(prefix string, err error) func(Call) ([]byte, error) {
	return func(c Call) ([]byte, error) {
		if strings.HasPrefix(c.Line(), prefix) {
			return nil, err
		}
		return nil, nil
	}
}
