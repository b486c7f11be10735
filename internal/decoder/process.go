package decoder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"rtsp-bridge/internal/logging"
)

// readBufferSize is the stdout read granularity. Chunks handed to the
// sink are at most this large.
const readBufferSize = 32 * 1024

// SpawnError reports a failure to launch the subprocess. It carries
// the underlying OS error plus guidance about where the binary was
// expected, so the operator can fix the deployment.
type SpawnError struct {
	Binary   string
	Guidance string
	Err      error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %s: %v (%s)", e.Binary, e.Err, e.Guidance)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Sink receives subprocess output and its exit notification. Chunk is
// called from a single goroutine in production order. Exited is called
// exactly once, after the final Chunk, whatever the cause of death.
type Sink interface {
	Chunk(data []byte)
	Exited(code int, err error)
}

// Process is a handle to a running decoder subprocess.
type Process struct {
	cmd      *exec.Cmd
	done     chan struct{}
	killOnce sync.Once
}

// Spawn launches cmd and wires its stdout to sink. The tag prefixes
// forwarded stderr lines, typically the owning session id. A non-nil
// error is always a *SpawnError; once Spawn returns successfully the
// process is running and sink.Exited will eventually fire.
func Spawn(cmd Command, tag string, sink Sink) (*Process, error) {
	path, err := exec.LookPath(cmd.Binary)
	if err != nil {
		return nil, &SpawnError{
			Binary:   cmd.Binary,
			Guidance: fmt.Sprintf("%q not found in PATH; install FFmpeg or set FFMPEG_PATH to the binary's location", cmd.Binary),
			Err:      err,
		}
	}

	c := exec.Command(path, cmd.Args...)
	stdout, err := c.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Binary: path, Guidance: "could not create stdout pipe", Err: err}
	}
	stderr, err := c.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Binary: path, Guidance: "could not create stderr pipe", Err: err}
	}

	if err := c.Start(); err != nil {
		return nil, &SpawnError{
			Binary:   path,
			Guidance: fmt.Sprintf("the OS refused to start %q; check permissions and executable format", path),
			Err:      err,
		}
	}

	p := &Process{cmd: c, done: make(chan struct{})}

	// Diagnostics are not data: they go to the log, never the sink.
	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			logging.Debug("decoder [%s]: %s", tag, scanner.Text())
		}
	}()

	go p.readLoop(stdout, stderrDone, sink)
	return p, nil
}

// readLoop drains stdout into the sink, then reaps the process and
// delivers the single exit notification.
func (p *Process) readLoop(stdout io.Reader, stderrDone <-chan struct{}, sink Sink) {
	defer close(p.done)

	buf := make([]byte, readBufferSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			sink.Chunk(chunk)
		}
		if err != nil {
			break
		}
	}

	// Both pipes must be fully drained before Wait.
	<-stderrDone
	waitErr := p.cmd.Wait()
	sink.Exited(exitCode(waitErr), waitErr)
}

// Terminate kills the subprocess immediately, no grace period. It is
// idempotent and safe to call after the process has already exited;
// the exit notification still arrives through the sink exactly once.
func (p *Process) Terminate() {
	p.killOnce.Do(func() {
		if p.cmd.Process != nil {
			if err := p.cmd.Process.Kill(); err != nil {
				logging.Debug("decoder kill: %v", err)
			}
		}
	})
}

// Done is closed after the exit notification has been delivered.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// PID returns the subprocess id, or 0 when unavailable.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
