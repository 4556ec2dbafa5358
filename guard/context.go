// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"plugin"

	"github.com/matthewdeanmartin/hermetic/lib/process"
	"github.com/matthewdeanmartin/hermetic/trace"
)

// Context is the capability surface handed to in-process targets.
// Every operation consults its guard before touching the real
// implementation; a nil guard means that surface is unrestricted.
//
// A Context is immutable after construction and safe for concurrent
// use: decisions are pure functions of the frozen policy snapshot and
// the call arguments.
type Context struct {
	network    *NetworkGuard
	subprocess *SubprocessGuard
	filesystem *FilesystemGuard
	nativeload *NativeLoadGuard

	tracer *trace.Tracer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Stdin returns the reader wired as the target's standard input.
func (c *Context) Stdin() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// Stdout returns the writer wired as the target's standard output.
func (c *Context) Stdout() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}

// Stderr returns the writer wired as the target's standard error.
func (c *Context) Stderr() io.Writer {
	if c.stderr != nil {
		return c.stderr
	}
	return os.Stderr
}

// deny records one blocked operation and returns the Violation that
// aborts the call. The detail is redacted before it reaches the
// tracer, the audit sink, or the error message.
func (c *Context) deny(guardName, op, detail, rule string) error {
	detail = trace.Redact(detail)
	if c.tracer != nil {
		c.tracer.Blocked(guardName, op, detail, rule)
	}
	return &Violation{Guard: guardName, Op: op, Detail: detail, Rule: rule}
}

func (c *Context) checkNetwork(op, host string) error {
	if c.network == nil {
		return nil
	}
	if d := c.network.Check(op, host); !d.Allowed {
		return c.deny(GuardNetwork, op, "host="+host, d.Rule)
	}
	return nil
}

func (c *Context) checkSubprocess(op, argv0 string) error {
	if c.subprocess == nil {
		return nil
	}
	if d := c.subprocess.Check(op, argv0); !d.Allowed {
		return c.deny(GuardSubprocess, op, "argv0="+argv0, d.Rule)
	}
	return nil
}

func (c *Context) checkFS(op, path string) error {
	if c.filesystem == nil {
		return nil
	}
	if d := c.filesystem.Check(op, path); !d.Allowed {
		return c.deny(GuardFilesystem, op, "path="+path, d.Rule)
	}
	return nil
}

// DialContext dials address after checking its host against the
// network guard. The signature matches http.Transport.DialContext so
// HTTP clients route through the same decision.
func (c *Context) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
	}
	if err := c.checkNetwork(OpNetConnect, host); err != nil {
		return nil, err
	}
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

// LookupHost resolves host after checking it against the network
// guard. Name resolution is guarded separately from connecting so a
// blocked target cannot probe DNS for exfiltration.
func (c *Context) LookupHost(ctx context.Context, host string) ([]string, error) {
	if err := c.checkNetwork(OpNetResolve, host); err != nil {
		return nil, err
	}
	return net.DefaultResolver.LookupHost(ctx, host)
}

// HTTPClient returns a client whose dials route through DialContext.
// No proxy is consulted: the decision always sees the target host,
// not an intermediary.
func (c *Context) HTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: c.DialContext,
		},
	}
}

// Run executes name with args, wiring the Context's stdio through.
// A non-zero exit from the child comes back as *process.ExitError so
// the launcher can propagate the code unchanged.
func (c *Context) Run(ctx context.Context, name string, args ...string) error {
	if err := c.checkSubprocess(OpSubExec, name); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = c.Stdin()
	cmd.Stdout = c.Stdout()
	cmd.Stderr = c.Stderr()
	return mapExitError(cmd.Run())
}

// Output executes name with args and returns its standard output.
func (c *Context) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := c.checkSubprocess(OpSubExec, name); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = c.Stdin()
	out, err := cmd.Output()
	return out, mapExitError(err)
}

// Shell runs command through /bin/sh -c. Only the shell path appears
// in decision details; the command text never reaches the trace.
func (c *Context) Shell(ctx context.Context, command string) error {
	if err := c.checkSubprocess(OpSubShell, "/bin/sh"); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Stdin = c.Stdin()
	cmd.Stdout = c.Stdout()
	cmd.Stderr = c.Stderr()
	return mapExitError(cmd.Run())
}

func mapExitError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &process.ExitError{Code: exitErr.ExitCode()}
	}
	return err
}

// Open opens name for reading.
func (c *Context) Open(name string) (*os.File, error) {
	if err := c.checkFS(OpFSRead, name); err != nil {
		return nil, err
	}
	return os.Open(name)
}

// OpenFile opens name with flag and perm. Any write intent in flag
// classifies the operation as a write.
func (c *Context) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	op := OpFSRead
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		op = OpFSWrite
	}
	if err := c.checkFS(op, name); err != nil {
		return nil, err
	}
	return os.OpenFile(name, flag, perm)
}

// ReadFile reads the named file.
func (c *Context) ReadFile(name string) ([]byte, error) {
	if err := c.checkFS(OpFSRead, name); err != nil {
		return nil, err
	}
	return os.ReadFile(name)
}

// Create creates or truncates the named file.
func (c *Context) Create(name string) (*os.File, error) {
	if err := c.checkFS(OpFSCreate, name); err != nil {
		return nil, err
	}
	return os.Create(name)
}

// WriteFile writes data to the named file.
func (c *Context) WriteFile(name string, data []byte, perm os.FileMode) error {
	if err := c.checkFS(OpFSWrite, name); err != nil {
		return err
	}
	return os.WriteFile(name, data, perm)
}

// Remove removes the named file or empty directory.
func (c *Context) Remove(name string) error {
	if err := c.checkFS(OpFSRemove, name); err != nil {
		return err
	}
	return os.Remove(name)
}

// RemoveAll removes path and everything under it.
func (c *Context) RemoveAll(path string) error {
	if err := c.checkFS(OpFSRemove, path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

// Rename renames oldpath to newpath.
func (c *Context) Rename(oldpath, newpath string) error {
	if c.filesystem != nil {
		if d := c.filesystem.Check(OpFSRename, oldpath); !d.Allowed {
			return c.deny(GuardFilesystem, OpFSRename, "from="+oldpath+",to="+newpath, d.Rule)
		}
	}
	return os.Rename(oldpath, newpath)
}

// Mkdir creates the named directory.
func (c *Context) Mkdir(name string, perm os.FileMode) error {
	if err := c.checkFS(OpFSMkdir, name); err != nil {
		return err
	}
	return os.Mkdir(name, perm)
}

// MkdirAll creates the named directory and any missing parents.
func (c *Context) MkdirAll(path string, perm os.FileMode) error {
	if err := c.checkFS(OpFSMkdir, path); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

// Stat reports metadata for the named file. Metadata reveals layout,
// so it is classified as a read.
func (c *Context) Stat(name string) (os.FileInfo, error) {
	if err := c.checkFS(OpFSRead, name); err != nil {
		return nil, err
	}
	return os.Stat(name)
}

// ReadDir lists the named directory.
func (c *Context) ReadDir(name string) ([]os.DirEntry, error) {
	if err := c.checkFS(OpFSRead, name); err != nil {
		return nil, err
	}
	return os.ReadDir(name)
}

// OpenPlugin loads the compiled plugin at path.
func (c *Context) OpenPlugin(path string) (*plugin.Plugin, error) {
	if c.nativeload != nil {
		if d := c.nativeload.CheckOpen(path); !d.Allowed {
			return nil, c.deny(GuardImports, OpNativeOpen, "path="+path, d.Rule)
		}
	}
	return plugin.Open(path)
}

// CheckImport decides an import by name without performing any load.
// The injected interpreter hook enforces the same classification on
// its side of the process boundary.
func (c *Context) CheckImport(name string) error {
	if c.nativeload == nil {
		return nil
	}
	if d := c.nativeload.CheckImport(name); !d.Allowed {
		return c.deny(GuardImports, OpNativeImport, "name="+name, d.Rule)
	}
	return nil
}
