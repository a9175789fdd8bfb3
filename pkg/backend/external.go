package backend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrBackendUnavailable is the sentinel for an external binary that cannot
// be run at all. Probe reports availability as a bool and does not return it.
var ErrBackendUnavailable = errors.New("backend: binary unavailable")

// childTimeout is the ceiling per spec §5: child processes are killed as if
// cancelled after this long.
const childTimeout = 10 * time.Second

// External is a search backend that shells out to ripgrep or ag. A
// supervisor goroutine kills the child as soon as the token is cancelled and
// stderr is drained on its own goroutine, so a cancelled child's stdout
// reaches EOF promptly. Stdout is parsed on the calling goroutine, which
// then calls Wait() once stdout is exhausted; exit waiting does not run on a
// goroutine of its own.
type External struct {
	descriptor Descriptor
	binaryPath string
}

// NewRipgrep constructs an External backend driving ripgrep. binaryPath
// overrides the command name ("" uses "rg").
func NewRipgrep(binaryPath string) *External {
	if binaryPath == "" {
		binaryPath = "rg"
	}
	return &External{descriptor: Ripgrep, binaryPath: binaryPath}
}

// NewAg constructs an External backend driving ag (the silver searcher).
// binaryPath overrides the command name ("" uses "ag").
func NewAg(binaryPath string) *External {
	if binaryPath == "" {
		binaryPath = "ag"
	}
	return &External{descriptor: Ag, binaryPath: binaryPath}
}

// Descriptor implements Backend.
func (e *External) Descriptor() Descriptor { return e.descriptor }

// Probe runs "<binary> --version" and treats exit success as availability,
// per spec §4.3.
func (e *External) Probe(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, e.binaryPath, "--version")
	return cmd.Run() == nil
}

// SearchLiteral runs the backend in fixed-string mode.
func (e *External) SearchLiteral(ctx context.Context, query, root string, token *Token, onMatch OnMatch) (int, error) {
	return e.search(ctx, query, root, ModeLiteral, token, onMatch)
}

// SearchRegex runs the backend in regular-expression mode.
func (e *External) SearchRegex(ctx context.Context, query, root string, token *Token, onMatch OnMatch) (int, error) {
	return e.search(ctx, query, root, ModeRegex, token, onMatch)
}

func (e *External) args(query, root string, mode Mode) []string {
	switch e.descriptor {
	case Ripgrep:
		args := []string{"--line-number", "--byte-offset", "--no-heading", "--color=never"}
		if mode == ModeLiteral {
			args = append(args, "--fixed-strings")
		}
		return append(args, "--", query, root)
	case Ag:
		args := []string{"--numbers-with-columns", "--nocolor", "--nogroup", "--filename"}
		if mode == ModeLiteral {
			args = append(args, "--literal")
		}
		return append(args, "--", query, root)
	default:
		return nil
	}
}

func (e *External) parse(line string) (SearchResult, bool) {
	if e.descriptor == Ripgrep {
		return parseRipgrepLine(line)
	}
	return parseAgLine(line)
}

// search spawns the child, streams stdout line-by-line, and returns the
// number of matches forwarded. Cancellation (token) and the ceiling timeout
// both terminate the child promptly (spec §4.3, §5, §8).
func (e *External) search(ctx context.Context, query, root string, mode Mode, token *Token, onMatch OnMatch) (int, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, childTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, e.binaryPath, e.args(query, root, mode)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("backend: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, fmt.Errorf("backend: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("backend: spawn %s: %w", e.binaryPath, err)
	}

	// Supervisor: kill the child promptly when the token is cancelled,
	// without ever blocking the stdout-parsing goroutine on Wait().
	killed := make(chan struct{})
	go func() {
		select {
		case <-token.Done():
			_ = cmd.Process.Kill()
		case <-killed:
		}
	}()

	var stderrBuf []byte
	var drain errgroup.Group
	drain.Go(func() error {
		stderrBuf, _ = io.ReadAll(stderr)
		return nil
	})

	count := 0
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if token.IsCancelled() {
			break
		}
		line := scanner.Text()
		result, ok := e.parse(line)
		if !ok {
			log.WithField("backend", e.descriptor.String()).Warnf("malformed line, skipping: %q", line)
			continue
		}
		onMatch(result)
		count++
		if count%yieldEvery == 0 {
			// explicit scheduling point between chunks of matches.
			runtime.Gosched()
		}
	}

	_ = drain.Wait()
	close(killed)
	waitErr := cmd.Wait()

	cancelled := token.IsCancelled() || cmdCtx.Err() != nil
	if cancelled {
		// Cancellation is not an error; the partial count is kept.
		return count, nil
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			// rg/ag exit 1 to mean "no matches", which is expected, not an
			// error. Anything else is logged as a real failure.
			if exitErr.ExitCode() == 1 {
				return count, nil
			}
		}
		log.WithField("backend", e.descriptor.String()).
			WithField("stderr", string(stderrBuf)).
			Warnf("child exited with error: %v", waitErr)
	}
	return count, nil
}
